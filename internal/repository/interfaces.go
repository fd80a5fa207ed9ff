package repository

import (
	"context"

	"github.com/meminc/powsysmon/internal/domain"
)

// UserRepository exposes account lookup for the login flow.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// TopologyRepository persists the grid connection graph.
type TopologyRepository interface {
	ListConnections(ctx context.Context) ([]domain.NetworkConnection, error)
	CreateConnection(ctx context.Context, conn domain.NetworkConnection) (domain.NetworkConnection, error)
	// Disconnect soft-marks the connection and reports affected rows; zero
	// means the id does not exist (or is already disconnected).
	Disconnect(ctx context.Context, id int64) (int64, error)
}

// AlarmRepository persists alarm acknowledgement state.
type AlarmRepository interface {
	Acknowledge(ctx context.Context, alarmID, userID int64) (int64, error)
}

// AuditRepository appends audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry domain.AuditLogEntry) error
}
