// Package rmi401k defines the scraper and parsing logic to process the RMI
// 401k retirement portal.
package rmi401k

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
	browserutil "github.com/grez-lucas/rmi401k-scraper/internal/scraper/browser"
	"github.com/sirupsen/logrus"
)

var _ account.Scraper = (*Scraper)(nil)

type Scraper struct {
	opts   options
	parser Parser
	log    logrus.FieldLogger

	launcher *launcher.Launcher
	browser  *rod.Browser
	router   *rod.HijackRouter

	// page is the login page; after login it shows the account overview.
	page *rod.Page

	closeOnce sync.Once
	closeErr  error
}

// NewScraper launches a browser, opens a page and navigates it to the login
// page. The returned scraper must be closed.
func NewScraper(ctx context.Context, opts ...Option) (*Scraper, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scraper{
		opts:   o,
		parser: NewParser(o.site),
		log:    o.logger,
	}

	s.log.Info("Opening browser...")

	s.launcher = launcher.New().Context(ctx).Headless(o.headless)
	if o.browserBin != "" {
		s.launcher = s.launcher.Bin(o.browserBin)
	}

	controlURL, err := s.launcher.Launch()
	if err != nil {
		return nil, s.fail("Launch", err, "starting browser")
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.launcher.Kill()
		return nil, s.fail("Launch", err, "connecting to browser")
	}

	if o.hijacker != nil {
		s.router = s.browser.HijackRequests()
		s.router.MustAdd("*", o.hijacker)
		go s.router.Run()
	}

	page, err := s.newPage()
	if err != nil {
		_ = s.Close()
		return nil, s.fail("Launch", err, "opening page")
	}
	s.page = page

	p := s.page.Context(ctx).Timeout(o.timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(o.site.LoginURL); err != nil {
		_ = s.Close()
		return nil, s.fail("Launch", err, "navigating to "+o.site.LoginURL)
	}
	if err := p.WaitLoad(); err != nil {
		_ = s.Close()
		return nil, s.fail("Launch", err, "loading "+o.site.LoginURL)
	}

	return s, nil
}

// Login fills the login form and submits it. The portal only signals a
// rejected login by staying on the login URL and showing a message; leaving
// the login URL counts as success.
func (s *Scraper) Login(ctx context.Context, creds account.Credentials) (*account.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	site := s.opts.site
	page := s.page.Context(ctx).Timeout(s.opts.timeout)
	defer page.CancelTimeout()

	if err := s.typeInto(ctx, page, site.UserInput, creds.Username); err != nil {
		return nil, s.fail("Login", err, "username field "+site.UserInput)
	}
	if err := s.typeInto(ctx, page, site.PasswordInput, creds.Password); err != nil {
		return nil, s.fail("Login", err, "password field "+site.PasswordInput)
	}

	s.log.Info("Logging in...")
	if err := s.clickAndWait(page, site.LoginButton); err != nil {
		return nil, s.fail("Login", err, "submitting "+site.LoginButton)
	}

	info, err := page.Info()
	if err != nil {
		return nil, s.fail("Login", err, "reading page URL")
	}

	if info.URL == site.LoginURL {
		html, err := browserutil.Snapshot(page)
		if err != nil {
			return nil, s.fail("Login", err, "reading login page")
		}
		if loginErr := s.parser.DetectLoginError(html); loginErr != nil {
			return nil, loginErr
		}
	}

	session := account.NewSession(site.LoginURL)
	s.log = s.log.WithField("session", session.ID)
	s.log.Debugf("Landed on %s", info.URL)

	return session, nil
}

// FetchBalance waits for the balance on the page reached after login.
func (s *Scraper) FetchBalance(ctx context.Context) (account.Balance, error) {
	site := s.opts.site
	page := s.page.Context(ctx).Timeout(s.opts.timeout)
	defer page.CancelTimeout()

	s.log.Info("Waiting for balance...")
	if _, err := page.Element(site.Balance); err != nil {
		return account.Balance{}, s.fail("FetchBalance", err, "waiting for "+site.Balance)
	}

	html, err := browserutil.Snapshot(page)
	if err != nil {
		return account.Balance{}, s.fail("FetchBalance", err, "reading overview page")
	}

	amount, found := s.parser.ParseBalance(html)
	if !found {
		return account.Balance{}, s.fail("FetchBalance", account.ErrBalanceNotFound, "empty "+site.Balance)
	}

	return account.Balance{Amount: amount, FetchedAt: s.opts.now()}, nil
}

// FetchTransactions opens the transaction history on its own page, filters
// it to the last monthsBack months and parses the resulting report.
func (s *Scraper) FetchTransactions(ctx context.Context, monthsBack int) ([]account.TransactionRecord, error) {
	site := s.opts.site

	tab, err := s.newPage()
	if err != nil {
		return nil, s.fail("FetchTransactions", err, "opening page")
	}
	defer func() { _ = tab.Close() }()

	page := tab.Context(ctx).Timeout(s.opts.timeout)
	defer page.CancelTimeout()

	s.log.Info("Opening transactions page...")
	if err := page.Navigate(site.TransactionsURL); err != nil {
		return nil, s.fail("FetchTransactions", err, "navigating to "+site.TransactionsURL)
	}
	if _, err := page.Element(site.FilterForm); err != nil {
		return nil, s.fail("FetchTransactions", err, "waiting for "+site.FilterForm)
	}

	dateRange := account.NewDateRange(s.opts.now(), monthsBack)
	if err := setValue(page, site.FromDateInput, dateRange.FromString()); err != nil {
		return nil, s.fail("FetchTransactions", err, "setting "+site.FromDateInput)
	}
	if err := setValue(page, site.ToDateInput, dateRange.ToString()); err != nil {
		return nil, s.fail("FetchTransactions", err, "setting "+site.ToDateInput)
	}

	s.log.Infof("Loading %s...", dateRange)
	if err := s.clickAndWait(page, site.ReportButton); err != nil {
		return nil, s.fail("FetchTransactions", err, "submitting "+site.ReportButton)
	}

	html, err := browserutil.Snapshot(page)
	if err != nil {
		return nil, s.fail("FetchTransactions", err, "reading transactions page")
	}

	records, err := s.parser.ParseTransactions(html)
	if err != nil {
		return nil, s.fail("FetchTransactions", err, "")
	}

	s.log.Debugf("Parsed %d transactions", len(records))
	return records, nil
}

// Close closes every page, the browser and the hijack router. It is safe to
// call more than once.
func (s *Scraper) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Cleanup()
		}
	})
	return s.closeErr
}

// --- PRIVATE ---

func (s *Scraper) newPage() (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if s.opts.stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, err
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	})
	if err != nil {
		_ = page.Close()
		return nil, err
	}

	return page, nil
}

// typeInto clicks the field, selects any leftover text and types over it.
func (s *Scraper) typeInto(ctx context.Context, page *rod.Page, selector, text string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}

	if s.opts.humanTyping {
		return browserutil.TypeHuman(ctx, el, text)
	}
	return browserutil.TypeFast(el, text)
}

// clickAndWait clicks the element and blocks until the navigation it
// triggers has loaded.
func (s *Scraper) clickAndWait(page *rod.Page, selector string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	wait()

	// wait() gives up silently when the page context ends.
	return page.GetContext().Err()
}

func setValue(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	_, err = el.Eval(`(v) => { this.value = v }`, value)
	return err
}

func (s *Scraper) fail(op string, err error, details string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", account.ErrTimeout, err)
	}
	return &account.ScraperError{Operation: op, Cause: err, Details: details}
}
