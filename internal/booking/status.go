// Package booking holds the pure domain rules of room reservations: the status
// lifecycle, slot identity, and role labelling. It has no I/O.
package booking

import "strings"

// Status is the review state of a booking.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allowedStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// AllowedStatuses returns the accepted status values in display order.
func AllowedStatuses() []string {
	out := make([]string, len(allowedStatuses))
	for i, s := range allowedStatuses {
		out[i] = string(s)
	}
	return out
}

// ParseStatus normalises raw to lower case and reports whether it names a
// known status.
func ParseStatus(raw string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range allowedStatuses {
		if candidate == s {
			return s, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range allowedStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
