package domain

import "time"

// AuditLogEntry records a privileged state change. Entries are append-only and
// never read back by this service.
type AuditLogEntry struct {
	ID            int64
	UserID        int64
	Action        string
	ResourceTable string
	ResourceID    int64
	CreatedAt     time.Time
}
