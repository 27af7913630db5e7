package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/term"
)

// Verify that the fields implement the interface
var (
	_ Field = StringField{}
	_ Field = PasswordField{}
)

// StringField reads a cleartext line.
type StringField struct {
	Key     string
	Label   string
	Default string

	// Pattern, when set, must match the trimmed input. Message is shown when
	// it does not.
	Pattern *regexp.Regexp
	Message string

	Required bool
}

// GetKey returns the field's key
func (f StringField) GetKey() string {
	return f.Key
}

// GetLabel returns the field's label
func (f StringField) GetLabel() string {
	return f.Label
}

// GetLabelExtra returns the field's default value
func (f StringField) GetLabelExtra() string {
	return f.Default
}

// GetContents reads up to the newline one byte at a time, so nothing past
// the line is consumed and the next field can read its own input.
func (f StringField) GetContents(r io.Reader) (string, error) {
	return readLine(r)
}

// Clean trims the input, applies the default and checks the pattern.
func (f StringField) Clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = f.Default
	}
	if s == "" {
		if f.Required {
			return "", errors.New("a value is required")
		}
		return s, nil
	}
	if f.Pattern != nil && !f.Pattern.MatchString(s) {
		if f.Message != "" {
			return "", errors.New(f.Message)
		}
		return "", fmt.Errorf("invalid input, must match %s", f.Pattern)
	}
	return s, nil
}

// PasswordField masks password input
type PasswordField struct {
	Key   string
	Label string
	Min   int
}

// GetKey returns the field's key
func (f PasswordField) GetKey() string {
	return f.Key
}

// GetLabel returns the field's label
func (f PasswordField) GetLabel() string {
	return f.Label
}

// GetLabelExtra doesn't return anything so we don't expose the current password
func (f PasswordField) GetLabelExtra() string {
	return ""
}

// GetContents reads the password without echo when r is a terminal, and
// reads a plain line otherwise (pipes, tests).
func (f PasswordField) GetContents(r io.Reader) (string, error) {
	if stdin, ok := r.(*os.File); ok && term.IsTerminal(int(stdin.Fd())) {
		password, err := term.ReadPassword(int(stdin.Fd()))
		return string(password), err
	}
	return readLine(r)
}

// Clean just checks if the minimum length is exceeded, it doesn't trim the string!
func (f PasswordField) Clean(s string) (string, error) {
	if f.Min != 0 && len(s) < f.Min {
		return "", fmt.Errorf("invalid input, min length is %d", f.Min)
	}
	return s, nil
}

// readLine can't use bufio: reading ahead of the newline would swallow the
// input of the next field.
func readLine(r io.Reader) (string, error) {
	result := make([]byte, 0, 20)
	buf := make([]byte, 1)
	for {
		n, err := io.ReadAtLeast(r, buf, 1)
		if err != nil {
			return string(result), err
		}

		if n != 1 {
			return string(result), errors.New("unexpected input when reading field")
		} else if buf[0] == '\n' {
			return strings.TrimSuffix(string(result), "\r"), nil
		}
		result = append(result, buf[0])
	}
}
