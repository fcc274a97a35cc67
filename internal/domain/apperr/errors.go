// Package apperr defines the error kinds shared by every domain service. The
// HTTP layer maps each kind to a status code with eris.Is.
package apperr

import (
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrInvalid      = eris.New("invalid input")
	ErrNotFound     = eris.New("not found")
	ErrConflict     = eris.New("conflict")
	ErrUnauthorized = eris.New("unauthorized")
	ErrForbidden    = eris.New("forbidden")
	ErrUpstream     = eris.New("upstream failure")
	ErrDisabled     = eris.New("feature not configured")
)

var kinds = []error{ErrInvalid, ErrNotFound, ErrConflict, ErrUnauthorized, ErrForbidden, ErrUpstream, ErrDisabled}

// Invalid reports a validation failure.
func Invalid(format string, args ...any) error {
	return eris.Wrapf(ErrInvalid, format, args...)
}

// NotFound reports a missing record.
func NotFound(format string, args ...any) error {
	return eris.Wrapf(ErrNotFound, format, args...)
}

// Conflict reports a state or uniqueness conflict.
func Conflict(format string, args ...any) error {
	return eris.Wrapf(ErrConflict, format, args...)
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(format string, args ...any) error {
	return eris.Wrapf(ErrUnauthorized, format, args...)
}

// Forbidden reports an authenticated caller without the required role.
func Forbidden(format string, args ...any) error {
	return eris.Wrapf(ErrForbidden, format, args...)
}

// Upstream wraps a failure returned by a third-party platform.
func Upstream(err error, format string, args ...any) error {
	if err == nil {
		return eris.Wrapf(ErrUpstream, format, args...)
	}
	return eris.Wrapf(ErrUpstream, format+": %s", append(args, err.Error())...)
}

// Disabled reports that an integration has no credentials configured.
func Disabled(format string, args ...any) error {
	return eris.Wrapf(ErrDisabled, format, args...)
}

// Message returns the caller-facing text of err without the kind suffix.
func Message(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, kind := range kinds {
		if !eris.Is(err, kind) {
			continue
		}
		text := kind.Error()
		msg = strings.TrimSuffix(msg, ": "+text)
		msg = strings.TrimPrefix(msg, text+": ")
		break
	}
	return strings.TrimSpace(msg)
}

// IsKind reports whether err wraps the kind sentinel.
func IsKind(err, kind error) bool {
	return err != nil && eris.Is(err, kind)
}
