package allegro

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Settings keys the client reads and writes through its TokenStore.
const (
	KeyAccessToken  = "allegro.access_token"
	KeyRefreshToken = "allegro.refresh_token"
	KeyClientID     = "allegro.client_id"
	KeyClientSecret = "allegro.client_secret"
	KeyTokenMeta    = "allegro.token_meta"
)

// TokenStore is the persistence boundary for OAuth credentials. The client
// is deliberately ignorant of what backs it (database row, encrypted file,
// secret manager); it only needs read and batch-write.
//
// Get returns the empty string for keys that are not set. Update applies all
// entries as one write; a nil value deletes the key. Implementations must be
// safe for concurrent use and should return an error recognisable as a
// persistence failure (distinct from "value missing") when storage itself is
// unwritable.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, values map[string]*string) error
}

// TokenMetadata is the expiry bookkeeping persisted next to the token pair,
// stored as JSON under KeyTokenMeta. All timestamps are UTC.
type TokenMetadata struct {
	ExpiresIn  *int       `json:"expires_in,omitempty"`
	ObtainedAt *time.Time `json:"obtained_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Scope      string     `json:"scope,omitempty"`
	TokenType  string     `json:"token_type,omitempty"`
}

// Expiry resolves when the access token expires. Resolution order:
// explicit expires_at, obtained_at + expires_in, and finally the exp claim
// of the access token itself (parsed without verification; we only schedule
// around the provider's own token). Returns false when none are available.
func (m TokenMetadata) Expiry(accessToken string) (time.Time, bool) {
	if m.ExpiresAt != nil {
		return m.ExpiresAt.UTC(), true
	}
	if m.ObtainedAt != nil && m.ExpiresIn != nil {
		return m.ObtainedAt.UTC().Add(time.Duration(*m.ExpiresIn) * time.Second), true
	}
	if accessToken != "" {
		if exp, ok := jwtExpiry(accessToken); ok {
			return exp, true
		}
	}
	return time.Time{}, false
}

// jwtExpiry pulls the exp claim out of a JWT access token. The signature is
// not checked; this is scheduling input, not authentication.
func jwtExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time.UTC(), true
}

// loadMetadata reads and decodes the persisted TokenMetadata. A missing or
// undecodable value yields the zero metadata; expiry then falls back to the
// token's own exp claim.
func loadMetadata(ctx context.Context, store TokenStore) TokenMetadata {
	raw, err := store.Get(ctx, KeyTokenMeta)
	if err != nil || raw == "" {
		return TokenMetadata{}
	}
	var meta TokenMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return TokenMetadata{}
	}
	return meta
}

// saveTokens persists a token response as one atomic store update. The
// previous refresh token is kept when the provider did not rotate it.
func saveTokens(ctx context.Context, store TokenStore, resp *TokenResponse, prevRefresh string, now time.Time) error {
	refresh := resp.RefreshToken
	if refresh == "" {
		refresh = prevRefresh
	}

	obtained := now.UTC()
	meta := TokenMetadata{
		ObtainedAt: &obtained,
		Scope:      resp.Scope,
		TokenType:  resp.TokenType,
	}
	if resp.ExpiresIn > 0 {
		expiresIn := resp.ExpiresIn
		expiresAt := obtained.Add(time.Duration(expiresIn) * time.Second)
		meta.ExpiresIn = &expiresIn
		meta.ExpiresAt = &expiresAt
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("allegro: encode token metadata: %w", err)
	}

	metaValue := string(rawMeta)
	return store.Update(ctx, map[string]*string{
		KeyAccessToken:  &resp.AccessToken,
		KeyRefreshToken: &refresh,
		KeyTokenMeta:    &metaValue,
	})
}

// ClearTokens removes the stored token pair and its metadata, leaving the
// client credentials in place. Used by the on-demand refresh path after a
// definitive failure so the system stops retrying with dead credentials.
func ClearTokens(ctx context.Context, store TokenStore) error {
	return store.Update(ctx, map[string]*string{
		KeyAccessToken:  nil,
		KeyRefreshToken: nil,
		KeyTokenMeta:    nil,
	})
}
