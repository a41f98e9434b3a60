package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

// GoalSyncer recalculates goals for one user.
type GoalSyncer interface {
	SyncUser(ctx context.Context, userID, trigger string) (goalsync.Result, error)
}

// GoalSyncHandler re-runs goal sync whenever a user's workouts or meals change.
type GoalSyncHandler struct {
	syncer GoalSyncer
}

// NewGoalSyncHandler constructs a handler backed by the provided syncer.
func NewGoalSyncHandler(syncer GoalSyncer) *GoalSyncHandler {
	return &GoalSyncHandler{syncer: syncer}
}

// Handle ignores event types that cannot move goal progress.
func (h *GoalSyncHandler) Handle(ctx context.Context, msg Message) error {
	var payload events.UserScoped
	switch msg.EventType {
	case events.TypeWorkoutLogged:
		payload = &events.WorkoutLogged{}
	case events.TypeWorkoutDeleted:
		payload = &events.WorkoutDeleted{}
	case events.TypeMealLogged:
		payload = &events.MealLogged{}
	default:
		return nil
	}
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}

	userID := strings.TrimSpace(payload.OwnerID())
	if userID == "" {
		userID = msg.UserID
	}
	if userID == "" {
		log.Warnf("%s event at offset %d has no user, skipping", msg.EventType, msg.Offset)
		return nil
	}

	res, err := h.syncer.SyncUser(ctx, userID, goalsync.TriggerEvent)
	if err != nil {
		return fmt.Errorf("sync goals for %s: %w", userID, err)
	}
	if res.Updated > 0 {
		log.WithFields(log.Fields{
			"user_id":    userID,
			"event_type": msg.EventType,
			"updated":    res.Updated,
		}).Info("goals updated from event")
	}
	return nil
}
