package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/httpx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"
)

// PrintJobsHandler serves the label print queue endpoints.
type PrintJobsHandler struct {
	Jobs store.PrintJobs
}

// HandleList godoc
//
//	@Summary		List Print Jobs
//	@Description	Returns queued label print jobs, newest first
//	@Tags			PrintJobs
//	@Produce		json
//	@Param			status	query		string	false	"filter by status"	Enums(pending, printed, failed)
//	@Param			limit	query		int		false	"maximum rows, defaults to 100"
//	@Success		200		{array}		PrintJobResponse
//	@Failure		400		{object}	map[string]string	"error, error_description"
//	@Failure		500		{object}	map[string]string	"error, error_description"
//	@Router			/v1/print-jobs [get].
func (h *PrintJobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	switch status {
	case "", domain.PrintJobPending, domain.PrintJobPrinted, domain.PrintJobFailed:
	default:
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_status", "status must be pending, printed or failed")
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

	jobs, err := h.Jobs.List(ctx, status, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("print job list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to list print jobs")
		return
	}

	out := make([]PrintJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toPrintJobResponse(job))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRetry godoc
//
//	@Summary		Retry Print Job
//	@Description	Puts a failed job back on the pending queue; the print agent picks it up on its next poll
//	@Tags			PrintJobs
//	@Produce		json
//	@Param			id	path		string	true	"print job id"
//	@Success		200	{object}	PrintJobResponse
//	@Failure		404	{object}	map[string]string	"error, error_description"
//	@Failure		500	{object}	map[string]string	"error, error_description"
//	@Router			/v1/print-jobs/{id}/retry [post].
func (h *PrintJobsHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := h.Jobs.Requeue(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no such print job")
			return
		}
		slogx.FromContext(ctx).Error("print job requeue failed", "id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to requeue print job")
		return
	}

	job, err := h.Jobs.Get(ctx, id)
	if err != nil {
		slogx.FromContext(ctx).Error("print job read failed", "id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"storage_error", "failed to read print job")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPrintJobResponse(job))
}
