package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/httpx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"
)

// SyncRunsHandler serves the background sync history endpoint.
type SyncRunsHandler struct {
	Runs store.SyncRuns
}

// HandleList godoc
//
//	@Summary		List Sync Runs
//	@Description	Returns recorded background sync passes, newest first
//	@Tags			SyncRuns
//	@Produce		json
//	@Param			kind	query		string	false	"filter by kind"	Enums(offers, orders)
//	@Param			limit	query		int		false	"maximum rows, defaults to 50"
//	@Success		200		{array}		SyncRunResponse
//	@Failure		400		{object}	map[string]string	"error, error_description"
//	@Failure		500		{object}	map[string]string	"error, error_description"
//	@Router			/v1/sync-runs [get].
func (h *SyncRunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", domain.SyncKindOffers, domain.SyncKindOrders:
	default:
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_kind", "kind must be offers or orders")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.Runs.List(ctx, kind, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("sync run list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to list sync runs")
		return
	}

	out := make([]SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toSyncRunResponse(run))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
