// Package prompt asks the user for input on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// A Field in a form.
type Field interface {
	GetKey() string                        // Key for the data map.
	GetLabel() string                      // Label to print as the prompt.
	GetLabelExtra() string                 // Extra info for the label, eg. defaults.
	GetContents(io.Reader) (string, error) // Read the field contents from the supplied reader

	// Sanitize user input. An error is shown to the user and the field is
	// asked again.
	Clean(s string) (string, error)
}

// A Form used to handle user interactions.
type Form struct {
	Banner string
	Fields []Field
}

// Run executes the form against the specified input and output. Running out
// of input before every field is answered returns ErrCanceled.
func (f Form) Run(r io.Reader, w io.Writer) (map[string]string, error) {
	if f.Banner != "" {
		if _, err := fmt.Fprintln(w, color.BlueString(f.Banner)+"\n"); err != nil {
			return nil, err
		}
	}

	data := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		for {
			displayLabel := field.GetLabel()
			if extra := field.GetLabelExtra(); extra != "" {
				displayLabel += " " + color.New(color.Faint, color.FgCyan).Sprint("["+extra+"]")
			}
			if _, err := fmt.Fprint(w, "  "+displayLabel+": "); err != nil {
				return nil, err
			}

			s, err := field.GetContents(r)

			if _, ok := field.(PasswordField); ok {
				fmt.Fprint(w, "\n")
			}

			if err != nil {
				// A partial line at EOF still counts as an answer.
				if !errors.Is(err, io.EOF) || s == "" {
					return nil, canceledOn(err)
				}
			}

			v, cleanErr := field.Clean(s)
			if cleanErr != nil {
				if _, printErr := fmt.Fprintln(w, color.RedString("- "+cleanErr.Error())); printErr != nil {
					return nil, printErr
				}
				if err != nil {
					return nil, canceledOn(err)
				}
				continue
			}

			data[field.GetKey()] = v
			break
		}
	}

	return data, nil
}

func canceledOn(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrCanceled
	}
	return err
}
