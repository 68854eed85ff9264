package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cred := &Credential{
		AccessToken: "token-abc",
		UserID:      "user-1",
		Email:       "user@example.com",
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := store.Save(ctx, cred); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.AccessToken != cred.AccessToken {
		t.Errorf("access token = %q, want %q", loaded.AccessToken, cred.AccessToken)
	}
	if loaded.UserID != cred.UserID {
		t.Errorf("user id = %q, want %q", loaded.UserID, cred.UserID)
	}
	if !loaded.ExpiresAt.Equal(cred.ExpiresAt) {
		t.Errorf("expires at = %v, want %v", loaded.ExpiresAt, cred.ExpiresAt)
	}
}

func TestLoad_NoSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSave_RequiresToken(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(context.Background(), &Credential{}); err == nil {
		t.Fatal("expected error for credential without token")
	}
	if err := store.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil credential")
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &Credential{AccessToken: "t"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}

	// Clearing again is a no-op.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() on empty store error: %v", err)
	}
}
