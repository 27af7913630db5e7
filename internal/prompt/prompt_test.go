package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestForm_Run(t *testing.T) {
	form := Form{
		Banner: "Log in",
		Fields: []Field{
			StringField{Key: "name", Label: "name"},
			PasswordField{Key: "secret", Label: "secret"},
		},
	}
	in := strings.NewReader("  alice  \ns3cret \n")
	var out bytes.Buffer

	data, err := form.Run(in, &out)

	require.NoError(t, err)
	assert.Equal(t, "alice", data["name"])
	assert.Equal(t, "s3cret ", data["secret"], "passwords are not trimmed")
	assert.Contains(t, out.String(), "Log in")
	assert.Contains(t, out.String(), "name: ")
	assert.Contains(t, out.String(), "secret: ")
}

func TestForm_RunReasksInvalidField(t *testing.T) {
	form := Form{Fields: []Field{
		StringField{
			Key:     "username",
			Label:   "username",
			Pattern: regexp.MustCompile(`^[a-z]+$`),
			Message: "letters only",
		},
	}}
	in := strings.NewReader("abc123\nabc\n")
	var out bytes.Buffer

	data, err := form.Run(in, &out)

	require.NoError(t, err)
	assert.Equal(t, "abc", data["username"])
	assert.Contains(t, out.String(), "- letters only")
	assert.Equal(t, 2, strings.Count(out.String(), "username: "))
}

func TestForm_RunCanceledOnEOF(t *testing.T) {
	form := Form{Fields: []Field{
		StringField{Key: "a", Label: "a"},
		StringField{Key: "b", Label: "b"},
	}}

	_, err := form.Run(strings.NewReader("only-one\n"), io.Discard)

	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, account.ErrCanceled)
}

func TestForm_RunAcceptsLastLineWithoutNewline(t *testing.T) {
	form := Form{Fields: []Field{StringField{Key: "a", Label: "a"}}}

	data, err := form.Run(strings.NewReader("value"), io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "value", data["a"])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestForm_RunPropagatesReadErrors(t *testing.T) {
	form := Form{Fields: []Field{StringField{Key: "a", Label: "a"}}}

	_, err := form.Run(failingReader{}, io.Discard)

	assert.EqualError(t, err, "boom")
}

func TestStringField_Clean(t *testing.T) {
	tests := []struct {
		name    string
		field   StringField
		input   string
		want    string
		wantErr string
	}{
		{"trims", StringField{}, "  x  ", "x", ""},
		{"default", StringField{Default: "jdoe"}, "   ", "jdoe", ""},
		{"optional empty", StringField{}, "", "", ""},
		{"required empty", StringField{Required: true}, "", "", "a value is required"},
		{"pattern message", StringField{Pattern: account.UsernamePattern, Message: "nope"}, "a1", "", "nope"},
		{"pattern without message", StringField{Pattern: regexp.MustCompile(`^x$`)}, "y", "", "invalid input, must match ^x$"},
		{"pattern ok", StringField{Pattern: account.UsernamePattern}, "Mary Ann-Smith", "Mary Ann-Smith", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.field.Clean(tc.input)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPasswordField_Clean(t *testing.T) {
	_, err := PasswordField{Min: 4}.Clean("abc")
	assert.EqualError(t, err, "invalid input, min length is 4")

	got, err := PasswordField{Min: 4}.Clean(" abcd ")
	assert.NoError(t, err)
	assert.Equal(t, " abcd ", got)
}

func TestReadLine_DoesNotReadAhead(t *testing.T) {
	r := strings.NewReader("first\r\nsecond\n")

	first, err := readLine(r)
	require.NoError(t, err)
	second, err := readLine(r)
	require.NoError(t, err)

	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}

func TestCredentialPrompt(t *testing.T) {
	var out bytes.Buffer
	p := NewCredentialPrompt(strings.NewReader("jdoe 1\nJane Doe\nhunter2\n"), &out, "")

	creds, err := p.Credentials(context.Background())

	require.NoError(t, err)
	assert.Equal(t, account.Credentials{Username: "Jane Doe", Password: "hunter2"}, creds)
	assert.Contains(t, out.String(), usernameMessage)
	assert.NotContains(t, out.String(), "hunter2")
}

func TestCredentialPrompt_DefaultUsername(t *testing.T) {
	p := NewCredentialPrompt(strings.NewReader("\npw\n"), io.Discard, "Jane Doe")

	creds, err := p.Credentials(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", creds.Username)
	assert.Equal(t, "pw", creds.Password)
}

func TestCredentialPrompt_Canceled(t *testing.T) {
	p := NewCredentialPrompt(strings.NewReader(""), io.Discard, "")

	_, err := p.Credentials(context.Background())

	assert.ErrorIs(t, err, ErrCanceled)
}

func TestCredentialPrompt_ContextDone(t *testing.T) {
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	p := NewCredentialPrompt(r, io.Discard, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Credentials(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
