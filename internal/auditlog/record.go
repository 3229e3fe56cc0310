package auditlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Entry is one journaled provider call issued while applying a plan.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command,omitempty"`
	Args       string    `json:"args,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Zone       string    `json:"zone"`
	Action     string    `json:"action"`
	RecordID   string    `json:"record_id,omitempty"`
	RecordName string    `json:"record_name"`
	RecordType string    `json:"record_type"`
	Content    string    `json:"content,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}
