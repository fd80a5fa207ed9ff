package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/cache"
	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/mutation"
	"github.com/meminc/powsysmon/internal/repository"
)

// Cache key layout for topology reads. Mutations flush the whole prefix.
const (
	topologyPattern        = "topology:"
	topologyConnectionsKey = "topology:connections"
	topologyReadTTL        = 5 * time.Minute
)

// TopologyService serves the connection graph with cached reads and
// coordinated mutations.
type TopologyService struct {
	repo   repository.TopologyRepository
	cache  cache.Cache
	coord  *mutation.Coordinator
	logger *zap.Logger
	tracer trace.Tracer
}

// NewTopologyService wires dependencies.
func NewTopologyService(repo repository.TopologyRepository, c cache.Cache, coord *mutation.Coordinator, logger *zap.Logger) *TopologyService {
	return &TopologyService{
		repo:   repo,
		cache:  c,
		coord:  coord,
		logger: logger,
		tracer: otel.Tracer("github.com/meminc/powsysmon/internal/service"),
	}
}

// ListConnections returns active links, served from cache when possible. A
// cache failure falls back to the repository; reads never fail on the cache.
func (s *TopologyService) ListConnections(ctx context.Context) ([]domain.NetworkConnection, error) {
	ctx, span := s.tracer.Start(ctx, "TopologyService.ListConnections")
	defer span.End()

	if raw, err := s.cache.Get(ctx, topologyConnectionsKey); err == nil {
		var conns []domain.NetworkConnection
		if err := json.Unmarshal(raw, &conns); err == nil {
			return conns, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("topology cache read failed", zap.Error(err))
	}

	conns, err := s.repo.ListConnections(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if payload, err := json.Marshal(conns); err == nil {
		if err := s.cache.Set(ctx, topologyConnectionsKey, payload, topologyReadTTL); err != nil {
			s.logger.Warn("topology cache write failed", zap.Error(err))
		}
	}
	return conns, nil
}

// Connect creates a link between two elements. Duplicate links and references
// to unknown elements surface as constraint violations for the dispatcher.
func (s *TopologyService) Connect(ctx context.Context, actor domain.Identity, conn domain.NetworkConnection) (domain.NetworkConnection, error) {
	ctx, span := s.tracer.Start(ctx, "TopologyService.Connect")
	defer span.End()

	var created domain.NetworkConnection
	spec := mutation.Spec{
		Action:        "connect",
		ResourceTable: "network_connections",
		Patterns:      []string{topologyPattern},
		Privileged:    true,
	}
	_, err := s.coord.Do(ctx, actor, spec, func(ctx context.Context) (mutation.Result, error) {
		var err error
		created, err = s.repo.CreateConnection(ctx, conn)
		if err != nil {
			return mutation.Result{}, err
		}
		return mutation.Result{ResourceID: created.ID, Affected: 1}, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.NetworkConnection{}, err
	}
	return created, nil
}

// Disconnect soft-marks the link as disconnected. A missing id is a not-found
// outcome with no cache flush and no audit entry.
func (s *TopologyService) Disconnect(ctx context.Context, actor domain.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "TopologyService.Disconnect")
	defer span.End()

	spec := mutation.Spec{
		Action:          "disconnect",
		ResourceTable:   "network_connections",
		Patterns:        []string{topologyPattern},
		Privileged:      true,
		NotFoundMessage: "Connection not found",
	}
	_, err := s.coord.Do(ctx, actor, spec, func(ctx context.Context) (mutation.Result, error) {
		affected, err := s.repo.Disconnect(ctx, id)
		if err != nil {
			return mutation.Result{}, err
		}
		return mutation.Result{ResourceID: id, Affected: affected}, nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
