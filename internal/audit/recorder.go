// Package audit appends the trail of privileged state changes. Entries are
// write-once; the read path belongs to reporting, not to this service.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/domain"
)

// Sink persists audit entries.
type Sink interface {
	Insert(ctx context.Context, entry domain.AuditLogEntry) error
}

// Recorder stamps and persists audit entries and mirrors them to the
// operational log.
type Recorder struct {
	sink   Sink
	node   *snowflake.Node
	logger *zap.Logger
}

// NewRecorder wires the recorder.
func NewRecorder(sink Sink, node *snowflake.Node, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.L()
	}
	return &Recorder{sink: sink, node: node, logger: logger}
}

// Record writes one entry for a privileged action.
func (r *Recorder) Record(ctx context.Context, userID int64, action, resourceTable string, resourceID int64) error {
	entry := domain.AuditLogEntry{
		ID:            r.node.Generate().Int64(),
		UserID:        userID,
		Action:        action,
		ResourceTable: resourceTable,
		ResourceID:    resourceID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.sink.Insert(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	r.logger.Info("audit",
		zap.String("action", action),
		zap.Int64("user_id", userID),
		zap.String("resource_table", resourceTable),
		zap.Int64("resource_id", resourceID),
	)
	return nil
}
