package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ssn", "<td>123-45-6789</td>", "<td>XXX-XX-XXXX</td>"},
		{"masked ssn", "<td>XXX-XX-6789</td>", "<td>XXX-XX-XXXX</td>"},
		{"greeting", "<h2>Welcome, John Q. Smith</h2>", "<h2>Welcome, JANE DOE</h2>"},
		{"username", `<input id="ReliusUserID" type="text" value="John Smith">`, `<input id="ReliusUserID" type="text" value="REDACTED">`},
		{"viewstate", `<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="/wEPDwUKMTY">`, `<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="REDACTED">`},
		{"email", "<a>john.smith@corp.com</a>", "<a>participant@example.com</a>"},
		{"phone", "<p>Call (800) 555-1234</p>", "<p>Call 555-555-0100</p>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changes := sanitize(tc.input)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, changes)
		})
	}
}

func TestSanitize_KeepsAmountsAndDates(t *testing.T) {
	html := `<td>03/08/2024</td><td>($12,000.00)</td><td>Settled</td><span class="balance">$48,213.77</span>`

	got, changes := sanitize(html)

	assert.Equal(t, html, got)
	assert.Empty(t, changes)
}

func TestSanitizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview.html")
	require.NoError(t, os.WriteFile(path, []byte("<h2>Welcome, John Smith</h2>"), 0o644))

	var out bytes.Buffer
	require.NoError(t, sanitizeFile(&out, path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "John Smith", "dry run writes nothing")
	assert.Contains(t, out.String(), "Participant name in greeting: 1 matched")

	require.NoError(t, sanitizeFile(&out, path, false))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<h2>Welcome, JANE DOE</h2>", string(data))
}

func TestFixturesAreClean(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "internal", "scraper", "account", "rmi401k", "testdata", "fixtures", "*.html"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		_, changes := sanitize(string(data))
		assert.Empty(t, changes, "%s contains personal data", filepath.Base(f))
	}
}
