package app

import "context"

// AuditEvent is one record of the append-only audit trail.
type AuditEvent struct {
	Timestamp string `json:"timestamp"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Action    string `json:"action"`
	Env       string `json:"env,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// AuditSvc describes the append-only audit sink. Log is fire-and-forget: a
// sink failure must never abort or block the operation being audited.
type AuditSvc interface {
	Log(user User, action string, meta map[string]string)
	Recent(limit int) ([]AuditEvent, error)
}

// AuditRepo describes the optional database mirror of the audit trail.
type AuditRepo interface {
	Add(ctx context.Context, e AuditEvent) error
	FindRecent(ctx context.Context, limit int) ([]AuditEvent, error)
}
