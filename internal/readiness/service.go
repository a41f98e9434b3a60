package readiness

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/observability"
	"github.com/a1dsv/NOVA-sub002/internal/telemetry/tracing"
)

// WorkoutLister loads the history the engine needs.
type WorkoutLister interface {
	ListWorkouts(ctx context.Context, userID string, since time.Time) ([]domain.Workout, error)
}

// Service computes readiness reports for users.
type Service struct {
	workouts WorkoutLister
	now      func() time.Time
}

// NewService constructs a readiness Service.
func NewService(workouts WorkoutLister) *Service {
	return &Service{workouts: workouts, now: func() time.Time { return time.Now().UTC() }}
}

// ForUser loads the user's recent workouts and scores them.
func (s *Service) ForUser(ctx context.Context, userID string) (_ Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "readiness.for_user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	now := s.now()
	workouts, err := s.workouts.ListWorkouts(ctx, userID, now.Add(-LookbackWindow))
	if err != nil {
		return Report{}, err
	}
	report := Calculate(workouts, now)
	span.SetAttributes(attribute.Int("overall", report.Overall))
	observability.RecordReadiness(report.Overall)
	return report, nil
}
