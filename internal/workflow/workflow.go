// Package workflow runs one scraping session: prompt for credentials until
// the portal accepts them, then fetch and print the balance and the recent
// transactions.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
)

// LaunchFunc opens a scraper positioned on the login page. ctx stays alive
// for as long as the scraper is in use.
type LaunchFunc func(ctx context.Context) (account.Scraper, error)

type Prompter interface {
	Credentials(ctx context.Context) (account.Credentials, error)
}

// Reporter receives everything the user gets to see.
type Reporter interface {
	LoginRetry(err error)
	LoggedIn()
	Balance(b account.Balance)
	Transactions(records []account.TransactionRecord)
}

type Workflow struct {
	launch     LaunchFunc
	prompter   Prompter
	reporter   Reporter
	monthsBack int
	log        logrus.FieldLogger
}

func New(launch LaunchFunc, prompter Prompter, reporter Reporter, monthsBack int, log logrus.FieldLogger) *Workflow {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Workflow{
		launch:     launch,
		prompter:   prompter,
		reporter:   reporter,
		monthsBack: monthsBack,
		log:        log,
	}
}

// Run blocks until the results are printed or the session fails. The browser
// starts while the first prompt is answered. It is closed on every return
// path, including one where it was still starting.
func (w *Workflow) Run(ctx context.Context) (err error) {
	launchCtx, cancelLaunch := context.WithCancel(ctx)
	defer cancelLaunch()

	pending := w.startLaunch(launchCtx)
	defer func() {
		cancelLaunch()
		if closeErr := pending.close(); closeErr != nil {
			w.log.WithError(closeErr).Warn("Closing browser failed")
			if err == nil {
				err = fmt.Errorf("closing browser: %w", closeErr)
			}
		}
	}()

	scraper, err := w.login(ctx, pending)
	if err != nil {
		return err
	}
	w.reporter.LoggedIn()

	balance, records, err := w.fetch(ctx, scraper)
	if err != nil {
		return err
	}

	w.reporter.Balance(balance)
	w.reporter.Transactions(records)
	return nil
}

// login asks for credentials until the portal accepts them. Rejected
// credentials and malformed usernames are reported and asked again without
// limit; anything else ends the session.
func (w *Workflow) login(ctx context.Context, pending *launch) (account.Scraper, error) {
	for attempt := 1; ; attempt++ {
		creds, err := w.prompter.Credentials(ctx)
		if err != nil {
			return nil, err
		}

		scraper, err := pending.wait(ctx)
		if err != nil {
			return nil, err
		}

		session, err := scraper.Login(ctx, creds)
		switch {
		case err == nil:
			w.log.WithFields(logrus.Fields{
				"session": session.ID,
				"attempt": attempt,
			}).Debug("Login accepted")
			return scraper, nil
		case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, account.ErrInvalidUsername):
			w.log.WithField("attempt", attempt).Debug("Login rejected")
			w.reporter.LoginRetry(err)
		default:
			return nil, fmt.Errorf("logging in: %w", err)
		}
	}
}

// fetch reads the balance and the transactions concurrently. Either failure
// fails both, nothing is reported partially.
func (w *Workflow) fetch(ctx context.Context, scraper account.Scraper) (account.Balance, []account.TransactionRecord, error) {
	var (
		balance account.Balance
		records []account.TransactionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = scraper.FetchBalance(gctx)
		if err != nil {
			return fmt.Errorf("fetching balance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = scraper.FetchTransactions(gctx, w.monthsBack)
		if err != nil {
			return fmt.Errorf("fetching transactions: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return account.Balance{}, nil, err
	}
	return balance, records, nil
}

// launch is the result of a LaunchFunc running in the background.
type launch struct {
	done    chan struct{}
	scraper account.Scraper
	err     error
}

func (w *Workflow) startLaunch(ctx context.Context) *launch {
	l := &launch{done: make(chan struct{})}
	go func() {
		defer close(l.done)
		l.scraper, l.err = w.launch(ctx)
	}()
	return l
}

func (l *launch) wait(ctx context.Context) (account.Scraper, error) {
	select {
	case <-l.done:
		if l.err != nil {
			return nil, fmt.Errorf("opening browser: %w", l.err)
		}
		return l.scraper, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// close waits for the launch to settle and closes whatever it produced.
// The launch context must be cancelled first, or this blocks until the
// browser is up.
func (l *launch) close() error {
	<-l.done
	if l.scraper == nil {
		return nil
	}
	return l.scraper.Close()
}
