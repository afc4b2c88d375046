package allegro

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoCredentials is returned when the token store holds no client id and
// secret. The application surfaces this as "connect your Allegro account".
var ErrNoCredentials = errors.New("allegro: client credentials not configured")

// ErrNoToken is returned for API calls made while no access token is stored.
var ErrNoToken = errors.New("allegro: no access token available")

// OAuth error codes the token endpoint returns (RFC 6749 §5.2).
const (
	oauthErrInvalidGrant = "invalid_grant"
	oauthErrInvalidToken = "invalid_token"
)

// OAuthError is a failure response from the OAuth token endpoint.
type OAuthError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuthError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("allegro: token endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("allegro: token endpoint returned %d (%s): %s", e.StatusCode, e.Code, e.Description)
}

// Definitive reports whether this failure means the refresh token itself is
// dead (invalid, expired or revoked) as opposed to a transient server or
// network problem. Only definitive failures justify dropping credentials.
func (e *OAuthError) Definitive() bool {
	if e.StatusCode != http.StatusBadRequest && e.StatusCode != http.StatusUnauthorized {
		return false
	}
	return e.Code == oauthErrInvalidGrant || e.Code == oauthErrInvalidToken
}

// IsDefinitive is the shared failure classifier used by both the background
// refresher and the on-demand refresh path, so the two never disagree about
// what counts as dead credentials.
func IsDefinitive(err error) bool {
	var oe *OAuthError
	return errors.As(err, &oe) && oe.Definitive()
}
