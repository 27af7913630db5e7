// capture-fixtures walks through the portal in a visible browser and saves
// one DOM snapshot per step as a parser fixture.
//
// Usage:
//
//	go run ./scripts/capture-fixtures
//	go run ./scripts/capture-fixtures --output=/tmp/fixtures --bin=/usr/bin/chromium
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/spf13/pflag"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account/rmi401k"
	browserutil "github.com/grez-lucas/rmi401k-scraper/internal/scraper/browser"
)

// capturePages are the steps the parser tests have fixtures for.
var capturePages = []pageCapture{
	{Name: "login_page", Instructions: "Wait for the login page (don't log in yet)"},
	{Name: "login_error", Instructions: "Submit an INVALID username/password"},
	{Name: "overview", Instructions: "Log in with VALID credentials and wait for the balance"},
	{Name: "transactions_form", Instructions: "Open the transaction history page, leave the filter as is"},
	{Name: "transactions", Instructions: "Set a date range with transactions and press the report button"},
	{Name: "transactions_empty", Instructions: "Pick a date range without transactions (or skip)"},
}

type pageCapture struct {
	Name         string
	Instructions string
}

func main() {
	defaultDir := filepath.Join("internal", "scraper", "account", "rmi401k", "testdata", "fixtures")

	flags := pflag.NewFlagSet("capture-fixtures", pflag.ExitOnError)
	outDir := flags.String("output", defaultDir, "directory for the .html fixtures")
	bin := flags.String("bin", "", "Chromium binary (looked up when empty)")
	useStealth := flags.Bool("stealth", true, "hide browser automation markers")
	_ = flags.Parse(os.Args[1:])

	if err := run(*outDir, *bin, *useStealth); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir, bin string, useStealth bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("RMI 401k fixture capture")
	cyan.Printf("Output: %s\n\n", outDir)

	if bin == "" {
		if path, found := launcher.LookPath(); found {
			bin = path
		}
	}

	l := launcher.New().
		Headless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check")
	if bin != "" {
		l = l.Bin(bin)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}
	defer browser.Close()

	page, err := openPage(browser, useStealth)
	if err != nil {
		return err
	}
	if err := page.Navigate(rmi401k.LoginURL); err != nil {
		return fmt.Errorf("opening %s: %w", rmi401k.LoginURL, err)
	}

	fmt.Println("Follow the steps in the browser window.")
	fmt.Println("Press ENTER after each one, type 'skip' to skip it or 'quit' to stop.")
	fmt.Println()

	captured := captureAll(page, bufio.NewReader(os.Stdin), outDir)

	if err := writeReadme(outDir, captured, time.Now()); err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgGreen).Printf("Captured %d page(s).\n", len(captured))
	color.New(color.FgYellow).Println("Replace names, balances and account numbers before committing!")
	return nil
}

func openPage(browser *rod.Browser, useStealth bool) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if useStealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	// Same viewport as the scraper, so the portal renders the same layout.
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1200, Height: 1200}); err != nil {
		return nil, fmt.Errorf("setting viewport: %w", err)
	}
	return page, nil
}

// captureAll prompts for every step and returns the names it saved.
func captureAll(page *rod.Page, in *bufio.Reader, outDir string) []string {
	var captured []string

	for _, capture := range capturePages {
		fmt.Printf("[%s] %s\n", capture.Name, capture.Instructions)
		fmt.Print("  ENTER / skip / quit: ")

		input, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			break
		}
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "quit":
			return captured
		case "skip":
			fmt.Println("  skipped")
			continue
		}
		if err == io.EOF {
			return captured
		}

		path, err := capturePage(page, outDir, capture.Name)
		if err != nil {
			color.New(color.FgRed).Printf("  %v\n", err)
			continue
		}
		captured = append(captured, capture.Name)
		fmt.Printf("  saved %s\n", path)
	}

	return captured
}

func capturePage(page *rod.Page, outDir, name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p := page.Context(ctx)
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for page: %w", err)
	}

	if shot, err := p.Screenshot(false, nil); err == nil {
		_ = os.WriteFile(filepath.Join(outDir, name+".png"), shot, 0o644)
	}

	html, frames, err := browserutil.SnapshotWithFrames(p)
	if err != nil {
		return "", fmt.Errorf("reading DOM: %w", err)
	}
	if frames > 0 {
		fmt.Printf("  inlined %d iframe(s)\n", frames)
	}

	path := filepath.Join(outDir, name+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

func writeReadme(outDir string, captured []string, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fixtures\n\ncaptured_at: %s\nportal: %s\n\n", now.Format(time.RFC3339), rmi401k.LoginURL)
	b.WriteString("## Files\n\n")
	for _, name := range captured {
		fmt.Fprintf(&b, "- %s.html\n", name)
	}
	b.WriteString(`
Same-origin iframes are inlined as <div data-captured-iframe="true">, so the
parser sees one document. Screenshots (.png) are for reference only and are
not committed.
`)
	return os.WriteFile(filepath.Join(outDir, "README.md"), []byte(b.String()), 0o644)
}
