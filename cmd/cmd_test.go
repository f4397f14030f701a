package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gosterim-cli/config"
	"gosterim-cli/store"
)

func setTestEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
	for _, key := range []string{config.EnvCatalogURL, config.EnvCatalogTTL, config.EnvPaymentDelay, config.EnvLogFile, config.EnvDebug, config.EnvTicketDir} {
		t.Setenv(key, "")
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc123"})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if strings.TrimSpace(out) != "gosterim 1.2.3 (abc123)" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestCatalog_BuiltIn(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "catalog")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	for _, want := range []string{"Oppenheimer", "Dune: Part Two", "The Batman", "15:45", "$12.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected catalog to contain %q:\n%s", want, out)
		}
	}
}

func TestCatalog_RemoteFromFlag(t *testing.T) {
	setTestEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"x1","title":"Solaris","genre":"Sci-Fi","sessions":[{"id":1,"time":"21:00","price":9.5}]}]`))
	}))
	defer server.Close()

	out, err := run(t, "catalog", "--catalog-url", server.URL)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out, "Solaris") || !strings.Contains(out, "$9.50") {
		t.Fatalf("unexpected catalog output:\n%s", out)
	}
	if strings.Contains(out, "Oppenheimer") {
		t.Fatalf("expected remote catalog only:\n%s", out)
	}
}

func TestHistory_Empty(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "history")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out, "no tickets issued yet") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHistoryAndReprint(t *testing.T) {
	setTestEnv(t)
	ticketDir := t.TempDir()

	recent := store.RecentTicket{
		TransactionID: "k3j9x0a1b",
		Movie:         "Oppenheimer",
		Session:       "15:45",
		Seats:         []string{"A3", "A4"},
		Total:         "24.00",
		CardSuffix:    "4242",
		IssuedAt:      time.Date(2026, 2, 3, 19, 30, 0, 0, time.UTC),
	}
	if err := store.RememberTicket(recent); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	out, err := run(t, "history")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out, "k3j9x0a1b") || !strings.Contains(out, "A3, A4") {
		t.Fatalf("unexpected history output:\n%s", out)
	}

	out, err = run(t, "reprint", "k3j9x0a1b", "--ticket-dir", ticketDir)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	path := strings.TrimSpace(out)
	if path != filepath.Join(ticketDir, "ticket-k3j9x0a1b.png") {
		t.Fatalf("unexpected path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected ticket image: %v", err)
	}

	if _, err := run(t, "reprint", "unknown00"); err == nil {
		t.Fatal("expected error for unknown transaction id")
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	setTestEnv(t)
	t.Setenv(config.EnvPaymentDelay, "5s")
	t.Setenv(config.EnvCatalogURL, "https://env.example/catalog.json")

	flags := &rootFlags{envFile: filepath.Join(t.TempDir(), "missing.env")}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().DurationVar(&flags.paymentDelay, "payment-delay", config.DefaultPaymentDelay, "")
	cmd.Flags().StringVar(&flags.catalogURL, "catalog-url", "", "")
	if err := cmd.Flags().Parse([]string{"--payment-delay", "1s"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	cfg, err := flags.load(cmd)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.PaymentDelay != time.Second {
		t.Fatalf("expected flag to win, got %s", cfg.PaymentDelay)
	}
	if cfg.CatalogURL != "https://env.example/catalog.json" {
		t.Fatalf("expected environment value for unset flag, got %q", cfg.CatalogURL)
	}
}

func TestNewLogger_DiscardsWithoutFile(t *testing.T) {
	logger, closeLog, err := newLogger(config.Config{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer closeLog()
	logger.Info("dropped")
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gosterim.log")
	logger, closeLog, err := newLogger(config.Config{LogFile: path, Debug: true})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	logger.Debug("catalog cache hit", "films", 5)
	if err := closeLog(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(raw), "catalog cache hit") || !strings.Contains(string(raw), "films=5") {
		t.Fatalf("unexpected log contents %q", raw)
	}
}
