// Package mutation coordinates the post-conditions of state-mutating
// handlers: once a write commits, the declared cache patterns are flushed and,
// for privileged routes, an audit entry is written before the success
// response is allowed out.
package mutation

import (
	"context"

	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/domain"
)

// Invalidator is the slice of the cache contract the coordinator needs.
type Invalidator interface {
	InvalidatePattern(ctx context.Context, prefix string) error
}

// Recorder appends one audit entry per privileged mutation.
type Recorder interface {
	Record(ctx context.Context, userID int64, action, resourceTable string, resourceID int64) error
}

// Spec declares the side effects a mutating route owes on success.
type Spec struct {
	Action          string
	ResourceTable   string
	Patterns        []string
	Privileged      bool
	NotFoundMessage string
}

// Result is what the wrapped write reports back.
type Result struct {
	ResourceID int64
	Affected   int64
}

// Coordinator runs a write and enforces its post-conditions.
type Coordinator struct {
	cache  Invalidator
	audit  Recorder
	logger *zap.Logger
}

// NewCoordinator wires the coordinator.
func NewCoordinator(cache Invalidator, audit Recorder, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.L()
	}
	return &Coordinator{cache: cache, audit: audit, logger: logger}
}

// Do executes the write and, if it affected at least one record, flushes the
// declared patterns and records the audit entry. Zero affected records is a
// not-found outcome, never a silent success. A failed flush or audit write is
// escalated as a database-kind error even though the write committed: stale
// cache or a missing audit trail needs operator attention, not a 200.
func (c *Coordinator) Do(ctx context.Context, actor domain.Identity, spec Spec, write func(ctx context.Context) (Result, error)) (Result, error) {
	res, err := write(ctx)
	if err != nil {
		return Result{}, err
	}
	if res.Affected == 0 {
		msg := spec.NotFoundMessage
		if msg == "" {
			msg = "Resource not found"
		}
		return Result{}, apierr.NotFound(msg)
	}

	// Side effects run detached from request cancellation: once the write has
	// committed, a client disconnect must not leave a partial flush behind.
	sideCtx := context.WithoutCancel(ctx)

	for _, prefix := range spec.Patterns {
		if err := c.cache.InvalidatePattern(sideCtx, prefix); err != nil {
			c.logger.Error("cache invalidation failed after committed write",
				zap.String("pattern", prefix),
				zap.String("action", spec.Action),
				zap.Error(err),
			)
			return Result{}, apierr.Database("Cache invalidation failed").WithCause(err)
		}
	}

	if spec.Privileged {
		if err := c.audit.Record(sideCtx, actor.UserID, spec.Action, spec.ResourceTable, res.ResourceID); err != nil {
			c.logger.Error("audit write failed after committed write",
				zap.String("action", spec.Action),
				zap.Error(err),
			)
			return Result{}, apierr.Database("Audit log write failed").WithCause(err)
		}
	}

	return res, nil
}
