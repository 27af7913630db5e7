package prompt

import (
	"context"
	"io"
	"os"

	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
	"golang.org/x/term"
)

// ErrCanceled is returned when the user ends the input before answering.
var ErrCanceled = account.ErrCanceled

const usernameMessage = "Name must be only letters, spaces, or dashes"

// CredentialPrompt asks for the portal username and password.
type CredentialPrompt struct {
	in              io.Reader
	out             io.Writer
	defaultUsername string
}

func NewCredentialPrompt(in io.Reader, out io.Writer, defaultUsername string) *CredentialPrompt {
	return &CredentialPrompt{in: in, out: out, defaultUsername: defaultUsername}
}

func (p *CredentialPrompt) form() Form {
	return Form{
		Fields: []Field{
			StringField{
				Key:      "username",
				Label:    "username",
				Default:  p.defaultUsername,
				Pattern:  account.UsernamePattern,
				Message:  usernameMessage,
				Required: true,
			},
			PasswordField{
				Key:   "password",
				Label: "password",
			},
		},
	}
}

// Credentials runs the prompt until both fields are answered, the input ends
// (ErrCanceled) or ctx is done.
func (p *CredentialPrompt) Credentials(ctx context.Context) (account.Credentials, error) {
	type result struct {
		data map[string]string
		err  error
	}

	restore := p.saveTerminal()
	done := make(chan result, 1)
	go func() {
		data, err := p.form().Run(p.in, p.out)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		// The reader goroutine stays blocked on input; put the terminal back
		// in case it was reading a password with echo off.
		restore()
		return account.Credentials{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return account.Credentials{}, res.err
		}
		return account.Credentials{
			Username: res.data["username"],
			Password: res.data["password"],
		}, nil
	}
}

func (p *CredentialPrompt) saveTerminal() func() {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	state, err := term.GetState(int(f.Fd()))
	if err != nil {
		return func() {}
	}
	return func() { _ = term.Restore(int(f.Fd()), state) }
}
