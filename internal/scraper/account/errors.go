package account

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("name must be only letters, spaces, or dashes")
	ErrCanceled           = errors.New("canceled")

	ErrParsingFailed   = errors.New("failed to parse portal response")
	ErrBalanceNotFound = errors.New("balance not found")
	ErrTimeout         = errors.New("operation timed out")
)

// LoginError carries the message the portal showed after a rejected login.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return ErrInvalidCredentials
}

// ScraperError provides detailed error context
type ScraperError struct {
	Operation string
	Cause     error
	Details   string
}

func (e *ScraperError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v - %s", e.Operation, e.Cause, e.Details)
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}
