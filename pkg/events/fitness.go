// Package events defines shared cross-service event payloads.
package events

import "time"

// Event type names carried in the event_type Kafka header.
const (
	TypeWorkoutLogged       = "workout.logged"
	TypeWorkoutDeleted      = "workout.deleted"
	TypeMealLogged          = "meal.logged"
	TypeGoalProgressChanged = "goal.progress_changed"
	TypeEmailRequested      = "email.requested"
)

// Default topics events are routed to.
const (
	TopicWorkouts = "fitsocial.workouts"
	TopicMeals    = "fitsocial.meals"
	TopicGoals    = "fitsocial.goals"
	TopicEmail    = "fitsocial.email"
)

// Kafka header keys set on every published event.
const (
	HeaderEventType = "event_type"
	HeaderUserID    = "user_id"
)

// TopicFor returns the default topic of an event type, or "" when unknown.
func TopicFor(eventType string) string {
	switch eventType {
	case TypeWorkoutLogged, TypeWorkoutDeleted:
		return TopicWorkouts
	case TypeMealLogged:
		return TopicMeals
	case TypeGoalProgressChanged:
		return TopicGoals
	case TypeEmailRequested:
		return TopicEmail
	default:
		return ""
	}
}

// WorkoutLogged is emitted when a workout is recorded.
type WorkoutLogged struct {
	WorkoutID   string    `json:"workout_id"`
	UserID      string    `json:"user_id"`
	Discipline  string    `json:"discipline"`
	Date        time.Time `json:"date"`
	DurationMin int       `json:"duration_min"`
	DistanceKm  float64   `json:"distance_km,omitempty"`
}

// WorkoutDeleted is emitted after a workout is removed by its owner.
type WorkoutDeleted struct {
	WorkoutID string    `json:"workout_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// MealLogged is emitted when a meal is recorded.
type MealLogged struct {
	MealID   string    `json:"meal_id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein_g"`
}

// GoalProgressChanged tracks goal value/status transitions for feeds and notifications.
type GoalProgressChanged struct {
	GoalID       string    `json:"goal_id"`
	UserID       string    `json:"user_id"`
	CurrentValue float64   `json:"current_value"`
	TargetValue  float64   `json:"target_value"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EmailRequested asks the mail relay to deliver a message.
type EmailRequested struct {
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	RequestedAt time.Time `json:"requested_at"`
}

// UserScoped is implemented by payloads that belong to a single user.
type UserScoped interface {
	OwnerID() string
}

// OwnerID implements UserScoped.
func (e WorkoutLogged) OwnerID() string { return e.UserID }

// OwnerID implements UserScoped.
func (e WorkoutDeleted) OwnerID() string { return e.UserID }

// OwnerID implements UserScoped.
func (e MealLogged) OwnerID() string { return e.UserID }

// OwnerID implements UserScoped.
func (e GoalProgressChanged) OwnerID() string { return e.UserID }
