package rmi401k

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
)

// Parser extracts data from HTML snapshots of the portal. It never touches
// the browser, so every method can run against captured fixtures.
type Parser struct {
	site Site
}

func NewParser(site Site) Parser {
	return Parser{site: site}
}

// --- PUBLIC API ---

// DetectLoginError returns a *account.LoginError when the login message
// element reports rejected credentials. A missing element means no error.
func (p Parser) DetectLoginError(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Parse error - no login error page
		return nil
	}

	msg := doc.Find(p.site.LoginMessage).First()
	if msg.Length() == 0 {
		return nil
	}

	text := innerText(msg)
	if !strings.Contains(text, p.site.InvalidCredentialsMarker) {
		return nil
	}

	return &account.LoginError{Message: text}
}

// ParseBalance returns the balance text verbatim. found is false when the
// element is missing or empty.
func (p Parser) ParseBalance(html string) (balance string, found bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	el := doc.Find(p.site.Balance).First()
	if el.Length() == 0 {
		return "", false
	}

	text := innerText(el)
	if text == "" {
		return "", false
	}

	return text, true
}

// ParseTransactions builds one record per row group by zipping the group's
// first header row with its first data row. Columns are whatever the page
// renders.
func (p Parser) ParseTransactions(html string) ([]account.TransactionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", account.ErrParsingFailed, err)
	}

	if doc.Find(p.site.TransactionHistory).Length() == 0 {
		return nil, fmt.Errorf("%w: transaction history not found with selector: %s",
			account.ErrParsingFailed, p.site.TransactionHistory)
	}

	groups := doc.Find(p.site.RowGroup)

	// NOTE: A report without row groups is an empty history, not an error.
	records := make([]account.TransactionRecord, 0, groups.Length())

	groups.Each(func(_ int, group *goquery.Selection) {
		// First match only: the groups nest further rows and sub-tables.
		headers := cellTexts(group.Find(p.site.HeaderRow).First(), p.site.HeaderCell)
		cells := cellTexts(group.Find(p.site.DataRow).First(), p.site.DataCell)

		records = append(records, account.NewTransactionRecord(headers, cells))
	})

	return records, nil
}

// --- LOW LEVEL UTILITIES ---

func cellTexts(row *goquery.Selection, cellSelector string) []string {
	if row.Length() == 0 {
		return nil
	}

	cells := row.Find(cellSelector)
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, innerText(cell))
	})
	return texts
}

// innerText approximates the browser's rendered text: runs of whitespace
// collapse to a single space and the ends are trimmed.
func innerText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
