package audit

import "time"

// Action identifies the kind of pool mutation being recorded.
type Action string

const (
	ActionIngest    Action = "INGEST"
	ActionAllocate  Action = "ALLOCATE_SLOT"
	ActionReconcile Action = "RECONCILE_SLOT"
	ActionAddLabel  Action = "ADD_LABEL"
)

// Entry is one row in the audit trail.
type Entry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    Action    `json:"action"`
	Entity    string    `json:"entity"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
