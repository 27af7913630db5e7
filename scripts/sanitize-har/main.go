// sanitize-har removes credentials and session tokens from portal recordings
// before they are committed.
//
// Usage:
//
//	go run ./scripts/sanitize-har --scenario=login_success
//	go run ./scripts/sanitize-har --input=recording.har.json --output=sanitized.har.json
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/testutil"
)

// recordingsDir is where the rmi401k replay tests look for recordings.
var recordingsDir = filepath.Join("internal", "scraper", "account", "rmi401k", "testdata", "recordings")

func main() {
	flags := pflag.NewFlagSet("sanitize-har", pflag.ContinueOnError)
	scenario := flags.String("scenario", "", "recording name under "+recordingsDir)
	inputPath := flags.String("input", "", "input HAR file path")
	outputPath := flags.String("output", "", "output HAR file path (defaults to the input)")
	dryRun := flags.Bool("dry-run", false, "list what would be redacted without writing")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	inPath, outPath, err := resolvePaths(*scenario, *inputPath, *outputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		flags.PrintDefaults()
		os.Exit(2)
	}

	if err := run(os.Stdout, inPath, outPath, *dryRun); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolvePaths(scenario, input, output string) (in, out string, err error) {
	switch {
	case scenario != "" && input != "":
		return "", "", errors.New("use either --scenario or --input")
	case scenario != "":
		in = filepath.Join(recordingsDir, scenario+".har.json")
	case input != "":
		in = input
	default:
		return "", "", errors.New("no recording given")
	}

	out = in
	if output != "" {
		out = output
	}
	return in, out, nil
}

func run(w io.Writer, inPath, outPath string, dryRun bool) error {
	if _, err := os.Stat(inPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("input file not found: %s", inPath)
	}

	har, err := testutil.LoadHAR(inPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Loaded %d entries from %s\n", len(har.Entries), inPath)

	sanitized := testutil.SanitizeHAR(har)
	found := redactions(har, sanitized)
	fmt.Fprintf(w, "Redacted %d sensitive values\n", len(found))

	if dryRun {
		printSummary(w, har, found)
		fmt.Fprintln(w, "\n[DRY RUN] No changes written.")
		return nil
	}

	if err := testutil.SaveHAR(outPath, sanitized); err != nil {
		return err
	}
	fmt.Fprintf(w, "Sanitized HAR saved to %s\n", outPath)
	return nil
}

// redaction is one value SanitizeHAR changed.
type redaction struct {
	entry int
	what  string
}

func redactions(original, sanitized *testutil.HARLog) []redaction {
	var found []redaction
	for i := range original.Entries {
		if i >= len(sanitized.Entries) {
			break
		}
		orig, san := original.Entries[i].Request, sanitized.Entries[i].Request

		if orig.URL != san.URL {
			found = append(found, redaction{i, "URL query parameters"})
		}
		for j, h := range orig.Headers {
			if j < len(san.Headers) && h.Value != san.Headers[j].Value {
				found = append(found, redaction{i, "request header " + h.Name})
			}
		}
		if orig.Body != san.Body {
			found = append(found, redaction{i, "request body"})
		}

		origResp, sanResp := original.Entries[i].Response, sanitized.Entries[i].Response
		for j, h := range origResp.Headers {
			if j < len(sanResp.Headers) && h.Value != sanResp.Headers[j].Value {
				found = append(found, redaction{i, "response header " + h.Name})
			}
		}
		if origResp.Content.Text != sanResp.Content.Text {
			found = append(found, redaction{i, "response body"})
		}
	}
	return found
}

func printSummary(w io.Writer, har *testutil.HARLog, found []redaction) {
	last := -1
	for _, r := range found {
		if r.entry != last {
			req := har.Entries[r.entry].Request
			fmt.Fprintf(w, "\nEntry %d: %s %s\n", r.entry+1, req.Method, truncateURL(req.URL))
			last = r.entry
		}
		fmt.Fprintf(w, "  - %s\n", r.what)
	}
}

func truncateURL(url string) string {
	if len(url) > 80 {
		return url[:77] + "..."
	}
	return url
}
