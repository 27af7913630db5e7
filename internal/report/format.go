// Package report renders the balance and transaction history for the
// terminal.
package report

import (
	"strings"
	"unicode/utf8"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
)

const statusSettled = "Settled"

// IsPositive reports whether a displayed dollar amount is a credit. The
// portal writes debits in parentheses, so only the first character counts.
func IsPositive(dollars string) bool {
	return !strings.HasPrefix(dollars, "(")
}

func IsSettled(status string) bool {
	return status == statusSettled
}

// NormalizeDetails shortens the portal's transaction descriptions: the first
// " of" is removed, then the first " to" becomes " of". The order matters,
// the replacement may introduce a new " of" that must stay.
func NormalizeDetails(details string) string {
	details = strings.Replace(details, " of", "", 1)
	return strings.Replace(details, " to", " of", 1)
}

// dollarsWidth is the length of the longest Dollars value, in runes.
func dollarsWidth(records []account.TransactionRecord) int {
	width := 0
	for _, r := range records {
		width = max(width, utf8.RuneCountInString(r.Value(account.FieldDollars)))
	}
	return width
}

// padStart right-aligns s in a column of width runes.
func padStart(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// Banner wraps title in a box of asterisks. padding adds blank lines above
// and below, and five spaces per unit on each side.
func Banner(title string, padding int) string {
	const (
		char              = "*"
		horizontalStretch = 5
	)

	side := padding * horizontalStretch
	inner := utf8.RuneCountInString(title) + side*2

	border := strings.Repeat(char, inner+2)
	gap := char + strings.Repeat(" ", inner) + char

	lines := make([]string, 0, padding*2+3)
	lines = append(lines, border)
	for i := 0; i < padding; i++ {
		lines = append(lines, gap)
	}
	lines = append(lines, char+strings.Repeat(" ", side)+title+strings.Repeat(" ", side)+char)
	for i := 0; i < padding; i++ {
		lines = append(lines, gap)
	}
	lines = append(lines, border)

	return strings.Join(lines, "\n")
}
