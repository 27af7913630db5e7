package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account/rmi401k"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, rmi401k.LoginURL, cfg.LoginURL.String)
	assert.Equal(t, rmi401k.TransactionsURL, cfg.TransactionsURL.String)
	assert.Equal(t, int64(1), cfg.Months.Int64)
	assert.True(t, cfg.Headless.Bool)
	assert.True(t, cfg.Stealth.Bool)
	assert.Equal(t, rmi401k.DefaultTimeout, cfg.TimeoutDuration())
	assert.False(t, cfg.Months.Valid, "defaults are not marked as set")
	require.NoError(t, cfg.Validate())
}

func TestApply_OnlySetValues(t *testing.T) {
	base := NewConfig()

	got := base.Apply(Config{
		Months:   nullInt(6),
		Headless: nullBool(false),
	})

	assert.Equal(t, int64(6), got.Months.Int64)
	assert.False(t, got.Headless.Bool)
	assert.True(t, got.Stealth.Bool, "unset values keep the base")
	assert.Equal(t, rmi401k.LoginURL, got.LoginURL.String)
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(map[string]string{
		"RMI_USERNAME":    "Jane Doe",
		"RMI_MONTHS":      "3",
		"RMI_HEADLESS":    "false",
		"RMI_TIMEOUT":     "45s",
		"RMI_BROWSER_BIN": "/usr/bin/chromium",
		"UNRELATED":       "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cfg.Username.String)
	assert.Equal(t, int64(3), cfg.Months.Int64)
	assert.True(t, cfg.Headless.Valid)
	assert.False(t, cfg.Headless.Bool)
	assert.Equal(t, "/usr/bin/chromium", cfg.BrowserBin.String)
	assert.False(t, cfg.Stealth.Valid)
	assert.False(t, cfg.LoginURL.Valid)

	merged := NewConfig().Apply(cfg)
	assert.Equal(t, 45*time.Second, merged.TimeoutDuration())
	assert.True(t, merged.Stealth.Bool)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(map[string]string{"RMI_MONTHS": "many"})
	assert.Error(t, err)
}

func TestReadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RMI_MONTHS=2\nRMI_USERNAME=From File\n"), 0o600))

	env, err := ReadEnv(path, []string{"RMI_MONTHS=5", "PATH=/bin"})
	require.NoError(t, err)

	assert.Equal(t, "5", env["RMI_MONTHS"], "the process environment wins over the file")
	assert.Equal(t, "From File", env["RMI_USERNAME"])
	assert.Equal(t, "/bin", env["PATH"])
}

func TestReadEnv_MissingFile(t *testing.T) {
	env, err := ReadEnv(filepath.Join(t.TempDir(), "absent.env"), []string{"RMI_MONTHS=4"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"RMI_MONTHS": "4"}, env)
}

func TestReadEnv_NoFile(t *testing.T) {
	env, err := ReadEnv("", nil)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestFromFlags_OnlyChanged(t *testing.T) {
	flags := FlagSet()
	require.NoError(t, flags.Parse([]string{"--months", "12", "--headless=false"}))

	cfg := FromFlags(flags)

	assert.True(t, cfg.Months.Valid)
	assert.Equal(t, int64(12), cfg.Months.Int64)
	assert.True(t, cfg.Headless.Valid)
	assert.False(t, cfg.Headless.Bool)
	assert.False(t, cfg.Timeout.Valid)
	assert.False(t, cfg.Stealth.Valid)
	assert.False(t, cfg.LoginURL.Valid)
}

func TestLayering(t *testing.T) {
	fromEnv, err := FromEnv(map[string]string{
		"RMI_MONTHS":  "3",
		"RMI_TIMEOUT": "10s",
	})
	require.NoError(t, err)

	flags := FlagSet()
	require.NoError(t, flags.Parse([]string{"-m", "9"}))

	cfg := NewConfig().Apply(fromEnv).Apply(FromFlags(flags))

	assert.Equal(t, int64(9), cfg.Months.Int64, "flags win over the environment")
	assert.Equal(t, 10*time.Second, cfg.TimeoutDuration(), "environment wins over defaults")
	assert.True(t, cfg.Headless.Bool, "defaults fill the rest")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", NewConfig(), ""},
		{"zero months", NewConfig().Apply(Config{Months: nullInt(0)}), "months must be at least 1"},
		{"negative months", NewConfig().Apply(Config{Months: nullInt(-2)}), "months must be at least 1"},
		{"bad timeout", NewConfig().Apply(Config{Timeout: nullString("soon")}), "invalid timeout"},
		{"negative timeout", NewConfig().Apply(Config{Timeout: nullString("-1s")}), "timeout must be positive"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTimeoutDuration_FallsBack(t *testing.T) {
	cfg := NewConfig().Apply(Config{Timeout: nullString("later")})
	assert.Equal(t, rmi401k.DefaultTimeout, cfg.TimeoutDuration())
}

func nullInt(v int64) null.Int { return null.IntFrom(v) }

func nullBool(v bool) null.Bool { return null.BoolFrom(v) }

func nullString(v string) null.String { return null.StringFrom(v) }
