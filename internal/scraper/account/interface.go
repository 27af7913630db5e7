// Package account defines the common structs and logic shared by the
// retirement portal scrapers.
package account

import "context"

type Scraper interface {
	// Login authenticates with the portal and establishes a session
	Login(ctx context.Context, creds Credentials) (*Session, error)

	// FetchBalance reads the account balance from the page reached after login
	FetchBalance(ctx context.Context) (Balance, error)

	// FetchTransactions reads the transaction history of the last monthsBack
	// months. It uses its own page and may run alongside FetchBalance.
	FetchTransactions(ctx context.Context, monthsBack int) ([]TransactionRecord, error)

	// Close releases the browser and every page it owns
	Close() error
}

// Well-known transaction columns. The names come from the live page headers.
const (
	FieldDate    = "Date"
	FieldDollars = "Dollars"
	FieldStatus  = "Status"
	FieldDetails = "Details"
)
