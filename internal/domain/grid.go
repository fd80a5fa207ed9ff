package domain

import "time"

// ConnectionStatus tracks the lifecycle of a topology link. Removing a link
// soft-marks it disconnected rather than deleting the row.
type ConnectionStatus string

const (
	ConnectionActive       ConnectionStatus = "active"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// NetworkConnection is a topology link between two grid elements.
type NetworkConnection struct {
	ID            int64            `json:"id"`
	FromElementID int64            `json:"from_element_id"`
	ToElementID   int64            `json:"to_element_id"`
	Kind          string           `json:"kind"`
	Status        ConnectionStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// AlarmSeverity orders alarm urgency for the dashboard.
type AlarmSeverity string

const (
	SeverityInfo     AlarmSeverity = "info"
	SeverityWarning  AlarmSeverity = "warning"
	SeverityCritical AlarmSeverity = "critical"
)

// Alarm is a raised condition on a grid element awaiting acknowledgement.
type Alarm struct {
	ID             int64         `json:"id"`
	ElementID      int64         `json:"element_id"`
	Severity       AlarmSeverity `json:"severity"`
	Message        string        `json:"message"`
	Acknowledged   bool          `json:"acknowledged"`
	AcknowledgedBy *int64        `json:"acknowledged_by,omitempty"`
	RaisedAt       time.Time     `json:"raised_at"`
}
