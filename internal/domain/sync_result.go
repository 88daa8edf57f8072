package domain

import "time"

// SyncResult summarizes one reconciliation cycle.
type SyncResult struct {
	CycleID    string         `json:"cycle_id"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	FirstRun   bool           `json:"first_run"`
	Accounts   []AccountSync  `json:"accounts"`
	Uploads    []BudgetUpload `json:"uploads,omitempty"`
	CacheSize  int            `json:"cache_size"`
}

// AccountSync is the per-account breakdown of a cycle.
type AccountSync struct {
	AccountID string `json:"account_id"`
	Fetched   int    `json:"fetched"`
	New       int    `json:"new"`
}

// BudgetUpload records the outcome of one per-budget upload batch.
type BudgetUpload struct {
	BudgetID     string `json:"budget_id"`
	Transactions int    `json:"transactions"`
	Error        string `json:"error,omitempty"`
}
