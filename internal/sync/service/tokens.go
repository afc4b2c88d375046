package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/pkg/allegro"
)

// TokenService is the foreground face of token management: status reporting
// and operator-triggered refresh. The background Refresher never drops
// credentials; this service does, but only on a definitive OAuth failure.
type TokenService struct {
	Vault  *SettingsVault
	Client *allegro.Client
	Logger *slog.Logger

	// Margin mirrors the background refresher's lead time so Status can
	// report when the next refresh is due.
	Margin time.Duration
}

func NewTokenService(vault *SettingsVault, client *allegro.Client, logger *slog.Logger) *TokenService {
	return &TokenService{Vault: vault, Client: client, Logger: logger, Margin: allegro.DefaultRefreshMargin}
}

// Status reports what token material is stored and when the access token
// expires. Token values themselves never leave this method.
func (s *TokenService) Status(ctx context.Context) (domain.TokenStatus, error) {
	var status domain.TokenStatus

	accessToken, err := s.Vault.Get(ctx, allegro.KeyAccessToken)
	if err != nil {
		return status, err
	}
	refreshToken, err := s.Vault.Get(ctx, allegro.KeyRefreshToken)
	if err != nil {
		return status, err
	}
	clientID, err := s.Vault.Get(ctx, allegro.KeyClientID)
	if err != nil {
		return status, err
	}
	clientSecret, err := s.Vault.Get(ctx, allegro.KeyClientSecret)
	if err != nil {
		return status, err
	}

	status.HasAccessToken = accessToken != ""
	status.HasRefreshToken = refreshToken != ""
	status.HasCredentials = clientID != "" && clientSecret != ""

	rawMeta, err := s.Vault.Get(ctx, allegro.KeyTokenMeta)
	if err != nil {
		return status, err
	}
	if rawMeta != "" {
		var meta allegro.TokenMetadata
		if err := json.Unmarshal([]byte(rawMeta), &meta); err == nil {
			status.Scope = meta.Scope
			if expiry, ok := meta.Expiry(accessToken); ok {
				expiry = expiry.UTC()
				status.ExpiresAt = &expiry
			}
		}
	} else if accessToken != "" {
		if expiry, ok := (allegro.TokenMetadata{}).Expiry(accessToken); ok {
			expiry = expiry.UTC()
			status.ExpiresAt = &expiry
		}
	}

	status.Managed = status.HasRefreshToken && status.HasCredentials
	if status.Managed && status.ExpiresAt != nil {
		secs := time.Until(status.ExpiresAt.Add(-s.Margin)).Seconds()
		status.SecondsUntilRefresh = &secs
	}
	return status, nil
}

// Refresh exchanges the stored refresh token for a new pair right now.
//
// A definitive OAuth failure (the provider says the refresh token is dead)
// clears the stored token pair and its metadata so nothing keeps hammering
// the token endpoint with a corpse; client credentials stay so the operator
// can re-authorise without reconfiguring. Transient failures change nothing.
// The original error is returned either way.
func (s *TokenService) Refresh(ctx context.Context) (domain.TokenStatus, error) {
	_, err := s.Client.RefreshStored(ctx)
	if err != nil {
		if allegro.IsDefinitive(err) {
			s.Logger.Warn("refresh token rejected, clearing stored tokens", "error", err)
			if clearErr := allegro.ClearTokens(ctx, s.Vault); clearErr != nil {
				s.Logger.Error("failed to clear dead tokens", "error", clearErr)
			}
		}
		return domain.TokenStatus{}, err
	}

	s.Logger.Info("access token refreshed on demand")
	return s.Status(ctx)
}
