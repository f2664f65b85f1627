package application

import (
	"errors"
	"strings"
)

var (
	// ErrAccessDenied is returned when the acting principal lacks the admin role.
	ErrAccessDenied = errors.New("application: access denied")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when registering an email that is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSlotTaken is returned when the room/date/slot already holds a booking.
	ErrSlotTaken = errors.New("application: slot taken")
	// ErrRoomUnavailable is returned when the room is not offered for the slot.
	ErrRoomUnavailable = errors.New("application: room unavailable")

	// ErrTokenMissing is returned when a request carries no bearer token.
	ErrTokenMissing = errors.New("application: token missing")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("application: token expired")
	// ErrTokenInvalid is returned for malformed or wrongly signed tokens.
	ErrTokenInvalid = errors.New("application: token invalid")
	// ErrTokenRevoked is returned for tokens issued before the user's role or
	// account changed.
	ErrTokenRevoked = errors.New("application: token revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
// Message is the summary shown to the caller.
type ValidationError struct {
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message != "" {
		return v.Message
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// require records field as missing when value is blank.
func (v *ValidationError) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
	}
}

// StatusError reports a status value outside the allowed set.
type StatusError struct {
	Received string
	Allowed  []string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "invalid status value " + `"` + e.Received + `"`
}
