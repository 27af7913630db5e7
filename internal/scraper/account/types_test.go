package account

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		monthsBack int
		wantFrom   string
		wantTo     string
	}{
		{
			"one month back",
			time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			1,
			"2/01/2024",
			"3/15/2024",
		},
		{
			"crosses year boundary",
			time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
			1,
			"12/01/2023",
			"1/9/2024",
		},
		{
			"end of month does not overflow",
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			1,
			"2/01/2024",
			"3/31/2024",
		},
		{
			"several months back",
			time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
			6,
			"5/01/2024",
			"11/5/2024",
		},
		{
			"zero months is the current month",
			time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
			0,
			"7/01/2024",
			"7/20/2024",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewDateRange(tc.now, tc.monthsBack)

			assert.Equal(t, tc.wantFrom, got.FromString())
			assert.Equal(t, tc.wantTo, got.ToString())
			assert.Equal(t, tc.now, got.To)
		})
	}
}

func TestDateRange_String(t *testing.T) {
	dr := NewDateRange(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 1)
	assert.Equal(t, "transactions from 2/01/2024 to 3/15/2024", dr.String())
}

func TestNewTransactionRecord(t *testing.T) {
	headers := []string{"Date", "Dollars", "Status", "Details"}
	cells := []string{"03/01/2024", "$5.00", "Settled", "Contribution"}

	r := NewTransactionRecord(headers, cells)

	assert.Equal(t, headers, r.Keys())
	assert.Equal(t, 4, r.Len())
	for i, h := range headers {
		v, ok := r.Get(h)
		assert.True(t, ok)
		assert.Equal(t, cells[i], v)
	}
}

func TestNewTransactionRecord_MissingCells(t *testing.T) {
	r := NewTransactionRecord([]string{"Date", "Dollars", "Status"}, []string{"03/01/2024"})

	assert.Equal(t, 3, r.Len())
	v, ok := r.Get("Dollars")
	assert.True(t, ok, "column without a cell should still be present")
	assert.Equal(t, "", v)
}

func TestNewTransactionRecord_SurplusCells(t *testing.T) {
	r := NewTransactionRecord([]string{"Date"}, []string{"03/01/2024", "extra"})

	assert.Equal(t, []string{"Date"}, r.Keys())
	assert.Equal(t, "03/01/2024", r.Value("Date"))
}

func TestNewTransactionRecord_DuplicateHeader(t *testing.T) {
	r := NewTransactionRecord([]string{"Date", "Amount", "Date"}, []string{"a", "b", "c"})

	assert.Equal(t, []string{"Date", "Amount"}, r.Keys())
	assert.Equal(t, "c", r.Value("Date"))
}

func TestTransactionRecord_ZeroValue(t *testing.T) {
	var r TransactionRecord

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.Value(FieldDollars))
	_, ok := r.Get(FieldDollars)
	assert.False(t, ok)

	r.Set(FieldStatus, "Settled")
	assert.Equal(t, "Settled", r.Value(FieldStatus))
}

func TestTransactionRecord_KeysIsACopy(t *testing.T) {
	r := NewTransactionRecord([]string{"Date"}, []string{"x"})
	keys := r.Keys()
	keys[0] = "changed"

	assert.Equal(t, []string{"Date"}, r.Keys())
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"letters", "jdoe", false},
		{"spaces and dashes", "Mary Ann-Smith", false},
		{"digits", "jdoe42", true},
		{"empty", "", true},
		{"symbols", "j.doe@example", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Credentials{Username: tc.username, Password: "pw"}.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUsername)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentials_StringMasksPassword(t *testing.T) {
	c := Credentials{Username: "jdoe", Password: "hunter2"}

	assert.NotContains(t, c.String(), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%v", c), "hunter2")
	assert.Contains(t, c.String(), "jdoe")
}

func TestNewSession(t *testing.T) {
	s := NewSession("https://example.test/login")
	other := NewSession("https://example.test/login")

	assert.NotEmpty(t, s.ID)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, "https://example.test/login", s.LoginURL)
	assert.WithinDuration(t, time.Now(), s.StartedAt, 10*time.Second)
}

func TestLoginError_Unwrap(t *testing.T) {
	var err error = &LoginError{Message: "Invalid userid/password"}

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid userid/password", err.Error())

	wrapped := fmt.Errorf("login: %w", err)
	var loginErr *LoginError
	require.ErrorAs(t, wrapped, &loginErr)
	assert.Equal(t, "Invalid userid/password", loginErr.Message)
}

func TestScraperError(t *testing.T) {
	err := &ScraperError{Operation: "FetchBalance", Cause: ErrTimeout, Details: "waiting for .balance"}

	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, "FetchBalance failed: operation timed out - waiting for .balance", err.Error())

	bare := &ScraperError{Operation: "Login", Cause: ErrParsingFailed}
	assert.Equal(t, "Login failed: failed to parse portal response", bare.Error())
}
