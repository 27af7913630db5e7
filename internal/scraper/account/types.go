package account

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// UsernamePattern is the shape the portal accepts for user IDs.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z\s\-]+$`)

type Credentials struct {
	Username string
	Password string
}

// Validate checks the username before it is submitted to the portal.
func (c Credentials) Validate() error {
	if !UsernamePattern.MatchString(c.Username) {
		return ErrInvalidUsername
	}
	return nil
}

// String keeps the password out of logs and error messages.
func (c Credentials) String() string {
	return fmt.Sprintf("{Username:%s Password:[REDACTED]}", c.Username)
}

type Session struct {
	ID        string
	LoginURL  string
	StartedAt time.Time
}

func NewSession(loginURL string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		LoginURL:  loginURL,
		StartedAt: time.Now(),
	}
}

// Balance is the balance exactly as the portal displays it.
type Balance struct {
	Amount    string
	FetchedAt time.Time
}

// TransactionRecord maps column headers to cell text, keeping the column
// order of the page it was read from.
type TransactionRecord struct {
	keys   []string
	values map[string]string
}

// NewTransactionRecord pairs headers and cells by position. Headers without a
// cell get an empty value and cells without a header are dropped.
func NewTransactionRecord(headers, cells []string) TransactionRecord {
	r := TransactionRecord{
		keys:   make([]string, 0, len(headers)),
		values: make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		var v string
		if i < len(cells) {
			v = cells[i]
		}
		r.Set(h, v)
	}
	return r
}

// Set stores a value. A repeated key keeps its original position.
func (r *TransactionRecord) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r TransactionRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" when the column is absent.
func (r TransactionRecord) Value(key string) string {
	return r.values[key]
}

func (r TransactionRecord) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

func (r TransactionRecord) Len() int {
	return len(r.keys)
}

const (
	dateRangeFromLayout = "1/02/2006"
	dateRangeToLayout   = "1/2/2006"
)

// DateRange is the from/to pair used to filter the transaction history.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange spans from the first day of the month monthsBack months
// before now's month up to now.
func NewDateRange(now time.Time, monthsBack int) DateRange {
	from := time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, now.Location())
	return DateRange{From: from, To: now}
}

func (d DateRange) FromString() string {
	return d.From.Format(dateRangeFromLayout)
}

func (d DateRange) ToString() string {
	return d.To.Format(dateRangeToLayout)
}

func (d DateRange) String() string {
	return fmt.Sprintf("transactions from %s to %s", d.FromString(), d.ToString())
}
