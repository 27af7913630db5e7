package rmi401k

import (
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 30 * time.Second

	viewportWidth  = 1200
	viewportHeight = 1200
)

type options struct {
	site        Site
	timeout     time.Duration
	headless    bool
	browserBin  string
	stealth     bool
	humanTyping bool
	hijacker    func(*rod.Hijack)
	logger      logrus.FieldLogger
	now         func() time.Time
}

func defaultOptions() options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return options{
		site:     DefaultSite(),
		timeout:  DefaultTimeout,
		headless: true,
		stealth:  true,
		logger:   logger,
		now:      time.Now,
	}
}

// Option configures a Scraper.
type Option func(*options)

// WithSite replaces the portal URLs and selectors.
func WithSite(site Site) Option {
	return func(o *options) {
		o.site = site
	}
}

// WithTimeout bounds every wait for navigation or for an element.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithHeadless(enabled bool) Option {
	return func(o *options) {
		o.headless = enabled
	}
}

// WithBrowserBin uses the given Chromium binary instead of the one the
// launcher finds or downloads.
func WithBrowserBin(path string) Option {
	return func(o *options) {
		o.browserBin = path
	}
}

// WithStealth opens pages through go-rod/stealth to hide automation markers.
func WithStealth(enabled bool) Option {
	return func(o *options) {
		o.stealth = enabled
	}
}

// WithHumanTyping types credentials with random delays between keystrokes.
func WithHumanTyping(enabled bool) Option {
	return func(o *options) {
		o.humanTyping = enabled
	}
}

// WithHijacker routes every browser request through handler. Used to serve
// recorded sessions in tests.
func WithHijacker(handler func(*rod.Hijack)) Option {
	return func(o *options) {
		o.hijacker = handler
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the source of "today" for the transaction date range.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
