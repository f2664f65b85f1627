package application

import (
	"context"
	"time"
)

// RevocationStore records the instant after which a user's earlier tokens
// stop being honoured. It is consulted on every authenticated request.
type RevocationStore interface {
	Revoke(ctx context.Context, userID int64, at time.Time) error
	RevokedSince(ctx context.Context, userID int64) (time.Time, bool, error)
}

// NoopRevocations keeps tokens valid for their full lifetime.
type NoopRevocations struct{}

// Revoke implements RevocationStore.
func (NoopRevocations) Revoke(context.Context, int64, time.Time) error { return nil }

// RevokedSince implements RevocationStore.
func (NoopRevocations) RevokedSince(context.Context, int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
