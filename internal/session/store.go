// Package session mirrors the web application's authentication session
// into the capture agent's local storage. The credential is opaque to the
// pipeline; only its presence and bearer value matter.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKey is the single redis key holding the mirrored credential.
const sessionKey = "linklens:session"

// ErrNoSession means no credential is currently stored.
var ErrNoSession = errors.New("no session credential stored")

// Credential is the mirrored session: a bearer token plus user identity.
type Credential struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Store keeps the credential in redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a Store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save stores the credential, replacing any previous one.
func (s *Store) Save(ctx context.Context, cred *Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return errors.New("credential must carry an access token")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	return nil
}

// Load returns the stored credential, or ErrNoSession when absent.
func (s *Store) Load(ctx context.Context) (*Credential, error) {
	data, err := s.client.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("loading credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("decoding credential: %w", err)
	}
	return &cred, nil
}

// Clear removes the stored credential. Clearing an absent credential is
// not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
