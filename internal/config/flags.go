package config

import (
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"
)

// FlagSet returns the flags that override the environment. Their defaults
// mirror NewConfig, but only flags set on the command line are applied.
func FlagSet() *pflag.FlagSet {
	defaults := NewConfig()

	flags := pflag.NewFlagSet("", 0)
	flags.SortFlags = false
	flags.String("login-url", defaults.LoginURL.String, "portal login page")
	flags.String("transactions-url", defaults.TransactionsURL.String, "portal transaction history page")
	flags.StringP("username", "u", "", "pre-filled username for the prompt")
	flags.Int64P("months", "m", defaults.Months.Int64, "months of transaction history to show")
	flags.Bool("headless", defaults.Headless.Bool, "run the browser without a window")
	flags.Bool("stealth", defaults.Stealth.Bool, "hide browser automation markers")
	flags.String("browser-bin", "", "path to a Chromium binary (downloaded when empty)")
	flags.String("timeout", defaults.Timeout.String, "timeout for each page wait")
	return flags
}

// FromFlags returns a Config holding only the flags that were changed.
func FromFlags(flags *pflag.FlagSet) Config {
	return Config{
		LoginURL:        getNullString(flags, "login-url"),
		TransactionsURL: getNullString(flags, "transactions-url"),
		Username:        getNullString(flags, "username"),
		Months:          getNullInt64(flags, "months"),
		Headless:        getNullBool(flags, "headless"),
		Stealth:         getNullBool(flags, "stealth"),
		BrowserBin:      getNullString(flags, "browser-bin"),
		Timeout:         getNullString(flags, "timeout"),
	}
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}

func getNullInt64(flags *pflag.FlagSet, key string) null.Int {
	v, err := flags.GetInt64(key)
	if err != nil {
		panic(err)
	}
	return null.NewInt(v, flags.Changed(key))
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}
