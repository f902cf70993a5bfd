package service

import "time"

// AuditFilter supports history filtering by time range, action and resource.
type AuditFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Action   string    // "", "CREATE", "UPDATE", "DELETE", "REGISTER"
	Resource string    // "", "movie", "director", "user"
}

// Status is the liveness snapshot returned by GET /status.
type Status struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
