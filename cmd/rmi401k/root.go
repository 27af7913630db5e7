package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/grez-lucas/rmi401k-scraper/internal/config"
	"github.com/grez-lucas/rmi401k-scraper/internal/prompt"
	"github.com/grez-lucas/rmi401k-scraper/internal/report"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account/rmi401k"
	"github.com/grez-lucas/rmi401k-scraper/internal/workflow"
)

const bannerTitle = "Elevate 401k Retirement Status Scraper"

// NewRootCmd creates the root command. Running it without a subcommand
// starts an interactive session.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rmi401k",
		Short: "Show the balance and recent transactions of an RMI 401k account",
		Long: `rmi401k drives a headless Chromium through the RMI 401k retirement portal.
It asks for the account username and password, then prints the balance and
the transactions of the last months.

Settings are read from a .env file, RMI_* environment variables and flags,
in increasing order of precedence.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSession,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "File with RMI_* variables, ignored when missing")
	cmd.Flags().AddFlagSet(config.FlagSet())

	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if code := exitCode(err); code != 0 {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}

// exitCode maps the session outcome to the process status. Leaving the
// prompt is not a failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, account.ErrCanceled), errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

func runSession(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := cmd.OutOrStdout()
	printer := report.NewPrinter(out, noColor || !isTerminal(out))

	printer.Banner(bannerTitle)
	logger.WithFields(logrus.Fields{
		"months":   cfg.Months.Int64,
		"headless": cfg.Headless.Bool,
		"timeout":  cfg.TimeoutDuration(),
	}).Debug("Configuration loaded")

	w := workflow.New(
		newLaunchFunc(cfg, logger),
		prompt.NewCredentialPrompt(cmd.InOrStdin(), out, cfg.Username.String),
		printer,
		int(cfg.Months.Int64),
		logger,
	)

	return w.Run(cmd.Context())
}

// loadConfig layers the defaults, the env file, the environment and the
// changed flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Apply(config.FromFlags(cmd.Flags()))

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLaunchFunc(cfg config.Config, logger logrus.FieldLogger) workflow.LaunchFunc {
	site := rmi401k.DefaultSite()
	site.LoginURL = cfg.LoginURL.String
	site.TransactionsURL = cfg.TransactionsURL.String

	return func(ctx context.Context) (account.Scraper, error) {
		return rmi401k.NewScraper(ctx,
			rmi401k.WithSite(site),
			rmi401k.WithTimeout(cfg.TimeoutDuration()),
			rmi401k.WithHeadless(cfg.Headless.Bool),
			rmi401k.WithStealth(cfg.Stealth.Bool),
			rmi401k.WithBrowserBin(cfg.BrowserBin.String),
			rmi401k.WithHumanTyping(!cfg.Headless.Bool),
			rmi401k.WithLogger(logger),
		)
	}
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: !verbose,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
