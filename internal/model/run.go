package model

import "time"

// RunStatus tracks the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one invocation of a pipeline stage group (one command or one
// serve-mode request). Used for the audit trail, not for control flow.
type Run struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Status    RunStatus `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// StageResult records the outcome of a single pipeline stage within a run.
// Detail carries a business name or error summary for diagnosis.
type StageResult struct {
	ID     string `json:"id"`
	RunID  string `json:"run_id"`
	Stage  string `json:"stage"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}
