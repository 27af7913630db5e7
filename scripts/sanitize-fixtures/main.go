// sanitize-fixtures replaces personal data in captured portal pages with
// placeholders, in place.
//
// Usage:
//
//	go run ./scripts/sanitize-fixtures --dry-run
//	go run ./scripts/sanitize-fixtures --dir=/tmp/fixtures
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
	description string
}

var rules = []rule{
	{
		regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		`XXX-XX-XXXX`,
		"Social security number",
	},
	{
		regexp.MustCompile(`(?i)\b(XXX-XX-|\*{3}-\*{2}-)\d{4}\b`),
		`XXX-XX-XXXX`,
		"Masked social security number",
	},
	{
		regexp.MustCompile(`((?i:welcome),?)\s+[A-Z][a-z]+(\s+[A-Z]\.?)?\s+[A-Z][a-z'-]+`),
		`$1 JANE DOE`,
		"Participant name in greeting",
	},
	{
		regexp.MustCompile(`(?i)(id="ReliusUserID"[^>]*value=")[^"]+`),
		`${1}REDACTED`,
		"Pre-filled username",
	},
	{
		regexp.MustCompile(`(?i)(name="__(VIEWSTATE|EVENTVALIDATION)"[^>]*value=")[^"]+`),
		`${1}REDACTED`,
		"ASP.NET form state",
	},
	{
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		`participant@example.com`,
		"Email address",
	},
	{
		regexp.MustCompile(`\(?\b\d{3}\)?[-.\s]\d{3}[-.]\d{4}\b`),
		`555-555-0100`,
		"Phone number",
	},
	{
		regexp.MustCompile(`(?i)(token|csrf|session)["\s:=]+["']?[a-zA-Z0-9_-]{20,}["']?`),
		`$1="REDACTED"`,
		"Token",
	},
	{
		regexp.MustCompile(`(?i)document\.cookie\s*=\s*["'][^"']+["']`),
		`document.cookie="REDACTED"`,
		"Cookie",
	},
}

// change counts the matches of one rule in one document.
type change struct {
	description string
	matches     int
}

// sanitize applies every rule in order and reports which ones matched.
func sanitize(content string) (string, []change) {
	var changes []change
	for _, r := range rules {
		matches := r.pattern.FindAllStringIndex(content, -1)
		if len(matches) == 0 {
			continue
		}
		content = r.pattern.ReplaceAllString(content, r.replacement)
		changes = append(changes, change{r.description, len(matches)})
	}
	return content, changes
}

func main() {
	defaultDir := filepath.Join("internal", "scraper", "account", "rmi401k", "testdata", "fixtures")

	flags := pflag.NewFlagSet("sanitize-fixtures", pflag.ExitOnError)
	dir := flags.String("dir", defaultDir, "directory with .html fixtures")
	dryRun := flags.Bool("dry-run", false, "show what would change without writing")
	_ = flags.Parse(os.Args[1:])

	files, err := filepath.Glob(filepath.Join(*dir, "*.html"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No HTML files found in %s\n", *dir)
		os.Exit(1)
	}

	failed := false
	for _, file := range files {
		if err := sanitizeFile(os.Stdout, file, *dryRun); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", file, err)
			failed = true
		}
	}
	if *dryRun {
		fmt.Println("\n[DRY RUN] Run without --dry-run to apply the changes.")
	}
	if failed {
		os.Exit(1)
	}
}

func sanitizeFile(w io.Writer, path string, dryRun bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	sanitized, changes := sanitize(string(content))
	name := filepath.Base(path)
	if len(changes) == 0 {
		fmt.Fprintf(w, "%s: clean\n", name)
		return nil
	}

	fmt.Fprintf(w, "%s:\n", name)
	for _, c := range changes {
		fmt.Fprintf(w, "  - %s: %d matched\n", c.description, c.matches)
	}
	if dryRun {
		return nil
	}
	return os.WriteFile(path, []byte(sanitized), 0o644)
}
