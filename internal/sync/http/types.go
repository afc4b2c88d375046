package http

import (
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
)

// HealthResponse is the body of the health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// SettingResponse is one settings row. Secret values arrive masked.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Masked    bool      `json:"masked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingRequest is the PUT body for a settings key. A null value deletes
// the key.
type SettingRequest struct {
	Value *string `json:"value"`
}

// PrintJobResponse is one label print job.
type PrintJobResponse struct {
	ID          string    `json:"id"`
	OrderID     int64     `json:"order_id"`
	PackageID   int64     `json:"package_id"`
	CourierCode string    `json:"courier_code"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPrintJobResponse(job domain.PrintJob) PrintJobResponse {
	return PrintJobResponse{
		ID:          job.ID,
		OrderID:     job.OrderID,
		PackageID:   job.PackageID,
		CourierCode: job.CourierCode,
		Status:      job.Status,
		Error:       job.Error,
		Attempts:    job.Attempts,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// SyncRunResponse is one background sync pass.
type SyncRunResponse struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	ItemCount  int        `json:"item_count"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func toSyncRunResponse(run domain.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:         run.ID,
		Kind:       run.Kind,
		Status:     run.Status,
		ItemCount:  run.ItemCount,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}
