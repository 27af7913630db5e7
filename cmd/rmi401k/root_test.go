package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "rmi401k", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	for _, name := range []string{"no-color", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	for _, name := range []string{"months", "username", "headless", "stealth", "browser-bin", "timeout", "login-url", "transactions-url"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"prompt canceled", account.ErrCanceled, 0},
		{"interrupted", fmt.Errorf("logging in: %w", context.Canceled), 0},
		{"timeout", &account.ScraperError{Operation: "Login", Cause: account.ErrTimeout}, 1},
		{"other", errors.New("boom"), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RMI_MONTHS=4\nRMI_TIMEOUT=12s\nRMI_USERNAME=Jane Doe\n"), 0o600))
	unsetEnv(t, "RMI_MONTHS", "RMI_TIMEOUT", "RMI_USERNAME")
	t.Setenv("RMI_HEADLESS", "false")

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", envFile, "--timeout", "20s"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.TimeoutDuration(), "flag over file")
	assert.False(t, cfg.Headless.Bool, "environment over default")
	assert.True(t, cfg.Stealth.Bool, "default")
}

func TestLoadConfig_FileValues(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RMI_MONTHS=4\nRMI_USERNAME=Jane Doe\n"), 0o600))
	unsetEnv(t, "RMI_MONTHS", "RMI_USERNAME")

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", envFile}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, int64(4), cfg.Months.Int64)
	assert.Equal(t, "Jane Doe", cfg.Username.String)
}

func TestLoadConfig_Invalid(t *testing.T) {
	unsetEnv(t, "RMI_MONTHS")

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file=", "--months", "0"}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCmd_InvalidConfigFailsBeforeBrowser(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--env-file=", "--timeout=never"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
	assert.Empty(t, out.String(), "nothing is printed before the configuration is valid")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, false)
	logger.Debug("hidden")
	logger.Info("Opening browser...")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Opening browser...")

	buf.Reset()
	logger = newLogger(&buf, true)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "rmi401k version "))
	assert.Contains(t, out, "commit:")
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
