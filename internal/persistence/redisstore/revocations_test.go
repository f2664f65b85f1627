package redisstore

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRevocationKey(t *testing.T) {
	t.Parallel()

	if got := revocationKey(42); got != "booking:revoked:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Runs against a live server when BOOKING_TEST_REDIS_ADDR is set.
func TestRevocationsRoundTrip(t *testing.T) {
	addr := os.Getenv("BOOKING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOOKING_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	userID := time.Now().UnixNano()
	t.Cleanup(func() { client.Del(context.Background(), revocationKey(userID)) })

	store := NewRevocations(client, time.Minute)
	if _, ok, err := store.RevokedSince(ctx, userID); err != nil || ok {
		t.Fatalf("expected no revocation, got ok=%v err=%v", ok, err)
	}

	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	if err := store.Revoke(ctx, userID, at); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	got, ok, err := store.RevokedSince(ctx, userID)
	if err != nil || !ok || !got.Equal(at) {
		t.Fatalf("expected %v, got %v ok=%v err=%v", at, got, ok, err)
	}

	ttl, err := client.TTL(ctx, revocationKey(userID)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within a minute, got %v err=%v", ttl, err)
	}
}
