package errors

import (
	"errors"
	"fmt"
)

// Common error types for the quotation console core
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrMalformedToken     = errors.New("malformed access token")
	ErrMissingRefresh     = errors.New("missing refresh token or tenant")
	ErrUnauthorized       = errors.New("unauthorized")

	// Transport errors
	ErrTransport = errors.New("transport failure")

	// Lookup errors
	ErrNotFound = errors.New("not found")

	// Quotation errors
	ErrQuotationNotOpen  = errors.New("quotation is not open")
	ErrAlreadySubmitted  = errors.New("offer already submitted")
	ErrSubmissionExpired = errors.New("submission window expired")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
