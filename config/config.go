package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvCatalogURL   = "GOSTERIM_CATALOG_URL"
	EnvCatalogTTL   = "GOSTERIM_CATALOG_TTL"
	EnvPaymentDelay = "GOSTERIM_PAYMENT_DELAY"
	EnvLogFile      = "GOSTERIM_LOG_FILE"
	EnvDebug        = "GOSTERIM_DEBUG"
	EnvTicketDir    = "GOSTERIM_TICKET_DIR"

	DefaultCatalogTTL   = 10 * time.Minute
	DefaultPaymentDelay = 2 * time.Second
)

// Config holds runtime settings. Flags override what Load returns.
type Config struct {
	CatalogURL   string
	CatalogTTL   time.Duration
	PaymentDelay time.Duration
	LogFile      string
	Debug        bool
	TicketDir    string
}

// Load reads the optional env files (".env" when none are given) and then
// the environment. Variables already set in the environment win over the
// files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Config{
		CatalogURL: strings.TrimSpace(os.Getenv(EnvCatalogURL)),
		LogFile:    strings.TrimSpace(os.Getenv(EnvLogFile)),
		TicketDir:  strings.TrimSpace(os.Getenv(EnvTicketDir)),
	}

	var err error
	if cfg.CatalogTTL, err = durationEnv(EnvCatalogTTL, DefaultCatalogTTL); err != nil {
		return Config{}, err
	}
	if cfg.PaymentDelay, err = durationEnv(EnvPaymentDelay, DefaultPaymentDelay); err != nil {
		return Config{}, err
	}
	if cfg.Debug, err = boolEnv(EnvDebug); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration for %s: %q", key, raw)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q", key, raw)
	}
	return v, nil
}
