package billing

import "time"

// SyncResult summarizes one completed sync run against the billing API.
type SyncResult struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"-"`
	DurationMS        int64         `json:"duration_ms"`
	SubscriptionCount int           `json:"subscription_count"`
	PaymentCount      int           `json:"payment_count"`
	CancellationCount int           `json:"cancellation_count"`
}

// Status describes the currently held snapshot for the dashboard.
type Status struct {
	Configured        bool      `json:"configured"`
	SyncedAt          time.Time `json:"synced_at"`
	SubscriptionCount int       `json:"subscription_count"`
	PaymentCount      int       `json:"payment_count"`
	CancellationCount int       `json:"cancellation_count"`
}
