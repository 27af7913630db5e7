// probe-selectors reports which of the portal selectors match, either in a
// saved fixture or live in every frame of a browser page. Run it when the
// parser tests break after the portal changed.
//
// Usage:
//
//	go run ./scripts/probe-selectors --file=internal/scraper/account/rmi401k/testdata/fixtures/overview.html
//	go run ./scripts/probe-selectors --live
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/spf13/pflag"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account/rmi401k"
)

type selectorProbe struct {
	Name     string
	Selector string
}

// siteProbes lists every selector the scraper depends on.
func siteProbes(site rmi401k.Site) []selectorProbe {
	return []selectorProbe{
		{"Username input", site.UserInput},
		{"Password input", site.PasswordInput},
		{"Login button", site.LoginButton},
		{"Login message", site.LoginMessage},
		{"Balance", site.Balance},
		{"Filter form", site.FilterForm},
		{"From date input", site.FromDateInput},
		{"To date input", site.ToDateInput},
		{"Report button", site.ReportButton},
		{"Transaction history", site.TransactionHistory},
		{"Transaction groups", site.RowGroup},
		{"Header rows", site.RowGroup + " " + site.HeaderRow},
		{"Data rows", site.RowGroup + " " + site.DataRow},
	}
}

var pagesToInspect = []struct {
	Name         string
	Instructions string
}{
	{"Login page", "Wait for the login page (don't log in yet)"},
	{"Overview", "Log in with valid credentials and wait for the balance"},
	{"Transaction history", "Open the transaction history and run a report"},
}

type probeResult struct {
	probe selectorProbe
	count int
}

// probeHTML counts the matches of every probe in a static document.
func probeHTML(r io.Reader, probes []selectorProbe) ([]probeResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	results := make([]probeResult, 0, len(probes))
	for _, p := range probes {
		results = append(results, probeResult{p, doc.Find(p.Selector).Length()})
	}
	return results, nil
}

func printResults(w io.Writer, indent string, results []probeResult) {
	found := color.New(color.FgGreen)
	for _, r := range results {
		if r.count == 0 {
			fmt.Fprintf(w, "%s-      %-20s  %s\n", indent, r.probe.Name, r.probe.Selector)
			continue
		}
		found.Fprintf(w, "%sFOUND  %-20s  %s  (%d)\n", indent, r.probe.Name, r.probe.Selector, r.count)
	}
}

func main() {
	flags := pflag.NewFlagSet("probe-selectors", pflag.ExitOnError)
	file := flags.String("file", "", "saved page to probe")
	live := flags.Bool("live", false, "open a browser and probe the pages as you navigate")
	_ = flags.Parse(os.Args[1:])

	probes := siteProbes(rmi401k.DefaultSite())

	switch {
	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		results, err := probeHTML(f, probes)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		printResults(os.Stdout, "", results)
	case *live:
		if err := probeLive(probes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		flags.PrintDefaults()
		os.Exit(2)
	}
}

func probeLive(probes []selectorProbe) error {
	l := launcher.New().Headless(false)
	if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
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

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}
	if err := page.Navigate(rmi401k.LoginURL); err != nil {
		return fmt.Errorf("opening %s: %w", rmi401k.LoginURL, err)
	}

	reader := bufio.NewReader(os.Stdin)
	for _, pg := range pagesToInspect {
		fmt.Printf("\nPAGE: %s\n  -> %s\n", pg.Name, pg.Instructions)
		fmt.Print("  ENTER / skip / quit: ")

		input, err := reader.ReadString('\n')
		input = strings.ToLower(strings.TrimSpace(input))
		if input == "quit" || (err != nil && input == "") {
			return nil
		}
		if input == "skip" {
			continue
		}

		if info, err := page.Info(); err == nil {
			fmt.Printf("  URL: %s\n", info.URL)
		}
		inspectFrame(page, "main", 1, probes)
	}
	return nil
}

// inspectFrame probes a frame, then recurses into its iframes.
func inspectFrame(page *rod.Page, path string, depth int, probes []selectorProbe) {
	indent := strings.Repeat("  ", depth)

	results := make([]probeResult, 0, len(probes))
	for _, p := range probes {
		els, err := page.Timeout(500 * time.Millisecond).Elements(p.Selector)
		if err != nil {
			els = nil
		}
		results = append(results, probeResult{p, len(els)})
	}
	printResults(os.Stdout, indent, results)

	iframes, err := page.Elements("iframe")
	if err != nil {
		return
	}
	for i, iframe := range iframes {
		label := fmt.Sprintf("iframe[%d]", i)
		if id, _ := iframe.Attribute("id"); id != nil && *id != "" {
			label = "iframe#" + *id
		}
		childPath := path + " > " + label
		fmt.Printf("\n%sIFRAME %s\n", indent, childPath)

		frame, err := iframe.Frame()
		if err != nil {
			fmt.Printf("%s  (cannot access frame: %v)\n", indent, err)
			continue
		}
		inspectFrame(frame, childPath, depth+1, probes)
	}
}
