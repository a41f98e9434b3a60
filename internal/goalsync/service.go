package goalsync

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/observability"
	"github.com/a1dsv/NOVA-sub002/internal/telemetry/tracing"
)

// Store is the slice of the entity store that goal sync needs.
type Store interface {
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goal domain.Goal) error
	ListWorkouts(ctx context.Context, userID string, since time.Time) ([]domain.Workout, error)
	ListMeals(ctx context.Context, userID string, since time.Time) ([]domain.Meal, error)
	ListUserIDsWithOpenGoals(ctx context.Context) ([]string, error)
}

// Triggers label what started a sync.
const (
	TriggerRequest   = "request"
	TriggerEvent     = "event"
	TriggerScheduler = "scheduler"
)

// Result is returned to callers of SyncUser.
type Result struct {
	Updated int           `json:"updated"`
	Goals   []domain.Goal `json:"goals"`
}

// Service loads a user's history and persists recalculated goal progress.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a goal sync Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// SyncUser recalculates every goal of the user.
func (s *Service) SyncUser(ctx context.Context, userID, trigger string) (_ Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsync.sync_user")
	defer func() {
		observability.RecordGoalSync(trigger, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID), attribute.String("trigger", trigger))

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		return Result{Goals: []domain.Goal{}}, nil
	}
	workouts, err := s.store.ListWorkouts(ctx, userID, time.Time{})
	if err != nil {
		return Result{}, fmt.Errorf("list workouts: %w", err)
	}
	meals, err := s.store.ListMeals(ctx, userID, time.Time{})
	if err != nil {
		return Result{}, fmt.Errorf("list meals: %w", err)
	}

	updates := Sync(goals, workouts, meals, s.now())
	changed := make(map[string]domain.Goal, len(updates))
	for _, u := range updates {
		if err := s.store.UpdateGoal(ctx, u.Goal); err != nil {
			return Result{}, fmt.Errorf("update goal %s: %w", u.Goal.ID, err)
		}
		changed[u.Goal.ID] = u.Goal
		observability.RecordGoalUpdated(string(u.Goal.Discipline), u.Completed())
		log.WithFields(log.Fields{
			"goal_id":  u.Goal.ID,
			"user_id":  userID,
			"previous": u.PreviousValue,
			"current":  u.Goal.CurrentValue,
			"status":   u.Goal.Status,
		}).Debug("goal progress synced")
	}

	for i, g := range goals {
		if updated, ok := changed[g.ID]; ok {
			goals[i] = updated
		}
	}
	span.SetAttributes(attribute.Int("updated", len(updates)))
	return Result{Updated: len(updates), Goals: goals}, nil
}

// SyncAll runs SyncUser for every user with open goals and returns how many goals changed.
// A failing user does not stop the pass; all failures are combined into the returned error.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	userIDs, err := s.store.ListUserIDsWithOpenGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with open goals: %w", err)
	}
	total := 0
	var errs error
	for _, id := range userIDs {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		res, err := s.SyncUser(ctx, id, TriggerScheduler)
		if err != nil {
			log.Errorf("goal sync for user %s: %s", id, err)
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		total += res.Updated
	}
	return total, errs
}
