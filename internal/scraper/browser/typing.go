// Package browser provides utilities for browser automation with Rod.
package browser

import (
	"context"
	"math/rand"
	"time"
	"unicode"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// TypeHuman types text into an element with human-like timing.
// It uses Element.Type() which properly triggers keyboard events (keydown/keyup).
// Small random delays (50-150ms) between keystrokes simulate human typing.
func TypeHuman(ctx context.Context, el *rod.Element, text string) error {
	if !typeable(text) {
		return el.Input(text)
	}

	for _, char := range text {
		if err := el.Type(input.Key(char)); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(50+rand.Intn(100)) * time.Millisecond):
		}
	}
	return nil
}

// TypeFast types text quickly without delays.
// Useful for tests and replay mode where speed matters more than human simulation.
// Still triggers proper keyboard events (keydown/keyup) for each character.
func TypeFast(el *rod.Element, text string) error {
	if !typeable(text) {
		return el.Input(text)
	}

	runes := []rune(text)
	keys := make([]input.Key, len(runes))
	for i, char := range runes {
		keys[i] = input.Key(char)
	}
	return el.Type(keys...)
}

// typeable reports whether every rune has a key on the US keyboard layout.
// Anything else is inserted as text instead of being typed.
func typeable(text string) bool {
	for _, r := range text {
		if r > unicode.MaxASCII || (r < ' ' && r != '\t') {
			return false
		}
	}
	return true
}
