package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/magsync/internal/sync/service"
	"github.com/aussiebroadwan/magsync/pkg/allegro"
	"github.com/aussiebroadwan/magsync/pkg/httpx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"
)

// TokenStatusHandler serves GET /v1/allegro/token. It reports what token
// material is stored and when it expires; token values never leave the
// service.
type TokenStatusHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Allegro Token Status
//	@Description	Reports whether client credentials and a token pair are stored and when the access token expires
//	@Description	Token values themselves are never returned.
//	@Tags			Token
//	@Produce		json
//	@Success		200	{object}	domain.TokenStatus	"token bookkeeping"
//	@Failure		500	{object}	map[string]string	"error, error_description"
//	@Router			/v1/allegro/token [get].
func (h *TokenStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, err := h.TokenService.Status(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("token status failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to read token status")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}

// TokenRefreshHandler serves POST /v1/allegro/refresh, the operator-triggered
// refresh.
type TokenRefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Allegro Token Now
//	@Description	Exchanges the stored refresh token for a new pair immediately.
//	@Description	A definitive rejection by the provider clears the stored token pair and answers 409;
//	@Description	the account must be re-authorised. Transient failures answer 502 and change nothing.
//	@Tags			Token
//	@Produce		json
//	@Success		200	{object}	domain.TokenStatus	"refreshed token bookkeeping"
//	@Failure		409	{object}	map[string]string	"error, error_description - tokens cleared"
//	@Failure		422	{object}	map[string]string	"error, error_description - nothing to refresh"
//	@Failure		502	{object}	map[string]string	"error, error_description - transient failure"
//	@Router			/v1/allegro/refresh [post].
func (h *TokenRefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	status, err := h.TokenService.Refresh(ctx)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, status)

	case allegro.IsDefinitive(err):
		log.Warn("on-demand refresh rejected definitively", "err", err)
		httpx.WriteError(w, http.StatusConflict,
			"refresh_token_rejected",
			"the provider rejected the refresh token; stored tokens were cleared, re-authorise the account")

	case errors.Is(err, allegro.ErrNoToken), errors.Is(err, allegro.ErrNoCredentials):
		httpx.WriteError(w, http.StatusUnprocessableEntity,
			"not_connected", "no stored credentials or refresh token to refresh with")

	default:
		log.Error("on-demand refresh failed", "err", err)
		httpx.WriteError(w, http.StatusBadGateway,
			"refresh_failed", "token refresh failed; stored tokens are unchanged")
	}
}
