package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gosterim-cli/config"
	"gosterim-cli/service"
	"gosterim-cli/ticket"
	"gosterim-cli/tui"
)

const appName = "gosterim"

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version string
	Commit  string
}

func (b BuildInfo) String() string {
	version := b.Version
	if version == "" {
		version = "dev"
	}
	if b.Commit != "" && b.Commit != "none" {
		return fmt.Sprintf("%s (%s)", version, b.Commit)
	}
	return version
}

type rootFlags struct {
	catalogURL   string
	paymentDelay time.Duration
	logFile      string
	debug        bool
	ticketDir    string
	envFile      string
}

// Execute runs the CLI with os.Args.
func Execute(info BuildInfo) error {
	return NewRootCommand(info).Execute()
}

// NewRootCommand builds the command tree. Without a subcommand it starts the
// booking TUI.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Book cinema seats from the terminal",
		Long:          `Pick a film and showtime, choose your seats, pay and get a ticket, all from the terminal.`,
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cmd.OutOrStdout(), cfg)
		},
	}
	root.SetVersionTemplate(appName + " {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&flags.catalogURL, "catalog-url", "", "remote catalog JSON endpoint (default: built-in catalog)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "optional dotenv file")
	pf.StringVar(&flags.ticketDir, "ticket-dir", "", "directory for exported ticket images")
	root.Flags().DurationVar(&flags.paymentDelay, "payment-delay", config.DefaultPaymentDelay, "simulated payment latency")
	root.Flags().StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	root.Flags().BoolVar(&flags.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newCatalogCommand(flags),
		newHistoryCommand(),
		newReprintCommand(flags),
		newVersionCommand(info),
	)
	return root
}

// load reads the environment and lets explicitly set flags win.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return config.Config{}, err
	}
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed("catalog-url") {
		cfg.CatalogURL = f.catalogURL
	}
	if changed("ticket-dir") {
		cfg.TicketDir = f.ticketDir
	}
	if changed("payment-delay") {
		cfg.PaymentDelay = f.paymentDelay
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}
	return cfg, nil
}

// newLogger opens the log file through Bubble Tea so the TUI keeps the
// terminal. The returned closer is never nil.
func newLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if cfg.LogFile == "" {
		return slog.New(slog.DiscardHandler), noop, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, appName)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f.Close, nil
}

func runTUI(out io.Writer, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	client := service.NewClient(nil, logger)
	opts := tui.Options{
		Catalog:   service.NewCatalogProvider(cfg.CatalogURL, cfg.CatalogTTL, client, logger),
		Processor: service.NewSimulatedProcessor(cfg.PaymentDelay, logger),
		Client:    client,
		TicketDir: cfg.TicketDir,
		Logger:    logger,
	}
	logger.Info("starting", "catalog", cfg.CatalogURL, "payment_delay", cfg.PaymentDelay)

	final, err := tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if issued, ok := tui.IssuedBooking(final); ok {
		return ticket.Receipt(out, issued)
	}
	return nil
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, info.String())
		},
	}
}
