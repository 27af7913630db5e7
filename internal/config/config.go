// Package config consolidates the scraper settings from defaults, an optional
// .env file, the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account/rmi401k"
)

// DefaultEnvFile is read when no other file is given. It may be missing.
const DefaultEnvFile = ".env"

// Config holds the run settings. A field is Valid once some source set it.
type Config struct {
	LoginURL        null.String `envconfig:"RMI_LOGIN_URL"`
	TransactionsURL null.String `envconfig:"RMI_TRANSACTIONS_URL"`
	Username        null.String `envconfig:"RMI_USERNAME"`
	Months          null.Int    `envconfig:"RMI_MONTHS"`
	Headless        null.Bool   `envconfig:"RMI_HEADLESS"`
	Stealth         null.Bool   `envconfig:"RMI_STEALTH"`
	BrowserBin      null.String `envconfig:"RMI_BROWSER_BIN"`
	Timeout         null.String `envconfig:"RMI_TIMEOUT"`
}

// NewConfig returns the defaults. None of them count as set.
func NewConfig() Config {
	return Config{
		LoginURL:        null.NewString(rmi401k.LoginURL, false),
		TransactionsURL: null.NewString(rmi401k.TransactionsURL, false),
		Months:          null.NewInt(1, false),
		Headless:        null.NewBool(true, false),
		Stealth:         null.NewBool(true, false),
		Timeout:         null.NewString(rmi401k.DefaultTimeout.String(), false),
	}
}

// Apply copies every set value of cfg over the receiver.
func (c Config) Apply(cfg Config) Config {
	if cfg.LoginURL.Valid && cfg.LoginURL.String != "" {
		c.LoginURL = cfg.LoginURL
	}
	if cfg.TransactionsURL.Valid && cfg.TransactionsURL.String != "" {
		c.TransactionsURL = cfg.TransactionsURL
	}
	if cfg.Username.Valid {
		c.Username = cfg.Username
	}
	if cfg.Months.Valid {
		c.Months = cfg.Months
	}
	if cfg.Headless.Valid {
		c.Headless = cfg.Headless
	}
	if cfg.Stealth.Valid {
		c.Stealth = cfg.Stealth
	}
	if cfg.BrowserBin.Valid {
		c.BrowserBin = cfg.BrowserBin
	}
	if cfg.Timeout.Valid && cfg.Timeout.String != "" {
		c.Timeout = cfg.Timeout
	}
	return c
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Months.Int64 < 1 {
		return fmt.Errorf("months must be at least 1, got %d", c.Months.Int64)
	}
	d, err := time.ParseDuration(c.Timeout.String)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout.String, err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", d)
	}
	return nil
}

// TimeoutDuration is the parsed Timeout, or the scraper default when it does
// not parse. Call Validate first to surface the error.
func (c Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout.String)
	if err != nil || d <= 0 {
		return rmi401k.DefaultTimeout
	}
	return d
}

// ReadEnv returns the process environment merged over the variables of
// envFile. A missing file is not an error, so a plain checkout runs without
// one.
func ReadEnv(envFile string, environ []string) (map[string]string, error) {
	env := map[string]string{}

	if envFile != "" {
		fromFile, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		default:
			env = fromFile
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	return env, nil
}

// FromEnv decodes the RMI_* variables of env.
func FromEnv(env map[string]string) (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults with envFile and the process environment applied.
// Flags are applied by the caller on top of the result.
func Load(envFile string) (Config, error) {
	env, err := ReadEnv(envFile, os.Environ())
	if err != nil {
		return Config{}, err
	}
	fromEnv, err := FromEnv(env)
	if err != nil {
		return Config{}, err
	}
	return NewConfig().Apply(fromEnv), nil
}
