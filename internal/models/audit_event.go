package models

import "time"

// Audit actions.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionRegister = "REGISTER"
)

// Audited resources.
const (
	ResourceMovie    = "movie"
	ResourceDirector = "director"
	ResourceUser     = "user"
)

// AuditEvent is a single entry of the mutation log.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Action     string    `json:"action"`   // CREATE | UPDATE | DELETE | REGISTER
	Resource   string    `json:"resource"` // movie | director | user
	ResourceID int64     `json:"resource_id"`
	Actor      string    `json:"actor"` // username from the token, or "operator"
	Metadata   any       `json:"metadata,omitempty"`
}
