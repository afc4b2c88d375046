// Package domain holds the records the sync service persists and serves.
package domain

import "time"

// Setting is one key/value row of the application settings table. Token
// material lives here too, sealed before it is written.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Print job lifecycle states.
const (
	PrintJobPending = "pending"
	PrintJobPrinted = "printed"
	PrintJobFailed  = "failed"
)

// PrintJob is one queued shipment label. The label payload is fetched from
// the order platform when the job is picked up, not when it is enqueued.
type PrintJob struct {
	ID          string // ULID
	OrderID     int64
	PackageID   int64
	CourierCode string
	Status      string
	Error       string // last failure reason, empty unless Status is failed
	Attempts    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sync run states.
const (
	SyncRunRunning   = "running"
	SyncRunSucceeded = "succeeded"
	SyncRunFailed    = "failed"
)

// Sync run kinds.
const (
	SyncKindOffers = "offers"
	SyncKindOrders = "orders"
)

// SyncRun records one pass of a background sync worker.
type SyncRun struct {
	ID         string // ULID
	Kind       string // "offers" or "orders"
	Status     string
	ItemCount  int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// TokenStatus is the externally visible state of the managed OAuth token.
// It never carries token material, only expiry bookkeeping.
type TokenStatus struct {
	HasAccessToken  bool       `json:"has_access_token"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	HasCredentials  bool       `json:"has_credentials"`
	Managed         bool       `json:"managed"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Scope           string     `json:"scope,omitempty"`

	// SecondsUntilRefresh is how long until the background refresher is
	// due to renew the pair. Negative means overdue; nil when unmanaged
	// or no expiry is known.
	SecondsUntilRefresh *float64 `json:"seconds_until_refresh,omitempty"`
}
