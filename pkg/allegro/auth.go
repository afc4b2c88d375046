package allegro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenResponse is the JSON body of a successful OAuth token grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// Exchange trades an authorization code for the initial token pair. The
// caller persists the result; this is the one step of the OAuth lifecycle
// driven by a human clicking through the consent screen.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	}
	if redirectURI != "" {
		data.Set("redirect_uri", redirectURI)
	}
	return c.requestToken(ctx, data)
}

// Refresh trades a refresh token for a new token pair. Token endpoint
// failures come back as *OAuthError so callers can run them through
// IsDefinitive; this method itself never touches the stored tokens.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.requestToken(ctx, data)
}

// RefreshStored refreshes the stored token pair and persists the result in
// one step. This is the foreground counterpart of the background Refresher:
// callers decide what to do with a definitive failure (the service layer
// clears the dead tokens; the refresher never does).
func (c *Client) RefreshStored(ctx context.Context) (*TokenResponse, error) {
	refreshToken, err := c.Tokens.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("allegro: read refresh token: %w", err)
	}
	if refreshToken == "" {
		return nil, ErrNoToken
	}

	token, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, ErrNoToken
	}

	if err := saveTokens(ctx, c.Tokens, token, refreshToken, time.Now()); err != nil {
		// Obtained but not saved: the provider may have rotated the refresh
		// token, so this error must reach the operator loudly.
		return nil, err
	}
	return token, nil
}

// requestToken posts a grant to the OAuth token endpoint with HTTP Basic
// client credentials read from the token store. This path deliberately
// bypasses the retry invoker: the refresher and the on-demand path both
// carry their own failure handling, and double-retrying a dead refresh
// token only delays the definitive answer.
func (c *Client) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	clientID, err := c.Tokens.Get(ctx, KeyClientID)
	if err != nil {
		return nil, fmt.Errorf("allegro: read client credentials: %w", err)
	}
	clientSecret, err := c.Tokens.Get(ctx, KeyClientSecret)
	if err != nil {
		return nil, fmt.Errorf("allegro: read client credentials: %w", err)
	}
	if clientID == "" || clientSecret == "" {
		return nil, ErrNoCredentials
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.AuthURL, strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("allegro: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(clientID, clientSecret)

	httpClient := &http.Client{Timeout: defaultTimeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("allegro: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		oauthErr := &OAuthError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(oauthErr)
		return nil, oauthErr
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("allegro: decode token response: %w", err)
	}
	return &token, nil
}
