package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/magsync/internal/sync/service"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/httpx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"
)

// SettingsHandler serves the application settings endpoints. Reads go
// through the vault so sealed values come back as plaintext, then secret
// keys are masked before leaving the process.
type SettingsHandler struct {
	Vault    *service.SettingsVault
	Settings store.Settings
}

// isSecretKey reports whether a settings key holds credential material.
func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "_token") ||
		strings.HasSuffix(key, "_secret") ||
		strings.HasSuffix(key, ".token_meta")
}

// maskValue hides the middle of a secret, keeping just enough to recognise
// which value is stored.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}

// HandleList godoc
//
//	@Summary		List Settings
//	@Description	Returns every settings row ordered by key. Secret values (tokens, secrets) are masked.
//	@Tags			Settings
//	@Produce		json
//	@Success		200	{array}		SettingResponse
//	@Failure		500	{object}	map[string]string	"error, error_description"
//	@Router			/v1/settings [get].
func (h *SettingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.Settings.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("settings list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to list settings")
		return
	}

	out := make([]SettingResponse, 0, len(settings))
	for _, setting := range settings {
		resp, err := h.render(ctx, setting.Key)
		if err != nil {
			slogx.FromContext(ctx).Error("settings read failed", "key", setting.Key, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"storage_error", "failed to read settings")
			return
		}
		resp.UpdatedAt = setting.UpdatedAt
		out = append(out, resp)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get Setting
//	@Description	Returns one settings row by key. Secret values (tokens, secrets) are masked.
//	@Tags			Settings
//	@Produce		json
//	@Param			key	path		string	true	"settings key"
//	@Success		200	{object}	SettingResponse
//	@Failure		404	{object}	map[string]string	"error, error_description"
//	@Failure		500	{object}	map[string]string	"error, error_description"
//	@Router			/v1/settings/{key} [get].
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := r.PathValue("key")

	setting, err := h.Settings.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no such settings key")
		return
	}
	if err != nil {
		slogx.FromContext(ctx).Error("settings read failed", "key", key, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to read setting")
		return
	}

	resp, err := h.render(ctx, key)
	if err != nil {
		slogx.FromContext(ctx).Error("settings unseal failed", "key", key, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to read setting")
		return
	}
	resp.UpdatedAt = setting.UpdatedAt
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandlePut godoc
//
//	@Summary		Update Setting
//	@Description	Upserts one settings key. The value is sealed before it is stored; a null value deletes the key.
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Param			key		path	string			true	"settings key"
//	@Param			body	body	SettingRequest	true	"new value, null deletes"
//	@Success		204	"setting stored"
//	@Failure		400	{object}	map[string]string	"error, error_description"
//	@Failure		500	{object}	map[string]string	"error, error_description"
//	@Router			/v1/settings/{key} [put].
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := r.PathValue("key")

	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_body", "body must be JSON with a value field")
		return
	}

	if err := h.Vault.Update(ctx, map[string]*string{key: req.Value}); err != nil {
		slogx.FromContext(ctx).Error("settings write failed", "key", key, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to store setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// render reads one key through the vault and masks it when secret.
func (h *SettingsHandler) render(ctx context.Context, key string) (SettingResponse, error) {
	value, err := h.Vault.Get(ctx, key)
	if err != nil {
		return SettingResponse{}, err
	}

	resp := SettingResponse{Key: key, Value: value}
	if isSecretKey(key) {
		resp.Value = maskValue(value)
		resp.Masked = true
	}
	return resp, nil
}
