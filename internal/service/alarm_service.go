package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/mutation"
	"github.com/meminc/powsysmon/internal/repository"
)

const alarmsPattern = "alarms:"

// AlarmService coordinates alarm acknowledgement.
type AlarmService struct {
	repo   repository.AlarmRepository
	coord  *mutation.Coordinator
	logger *zap.Logger
	tracer trace.Tracer
}

// NewAlarmService wires dependencies.
func NewAlarmService(repo repository.AlarmRepository, coord *mutation.Coordinator, logger *zap.Logger) *AlarmService {
	return &AlarmService{
		repo:   repo,
		coord:  coord,
		logger: logger,
		tracer: otel.Tracer("github.com/meminc/powsysmon/internal/service"),
	}
}

// Acknowledge marks the alarm as seen by the acting operator. Acknowledging an
// unknown or already-acknowledged alarm is a not-found outcome.
func (s *AlarmService) Acknowledge(ctx context.Context, actor domain.Identity, alarmID int64) error {
	ctx, span := s.tracer.Start(ctx, "AlarmService.Acknowledge")
	defer span.End()

	spec := mutation.Spec{
		Action:          "acknowledge",
		ResourceTable:   "alarms",
		Patterns:        []string{alarmsPattern},
		Privileged:      true,
		NotFoundMessage: "Alarm not found",
	}
	_, err := s.coord.Do(ctx, actor, spec, func(ctx context.Context) (mutation.Result, error) {
		affected, err := s.repo.Acknowledge(ctx, alarmID, actor.UserID)
		if err != nil {
			return mutation.Result{}, err
		}
		return mutation.Result{ResourceID: alarmID, Affected: affected}, nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
