package domain

import (
	"math"
	"strings"
	"time"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// GoalDirection says which side of the target counts as success.
type GoalDirection string

const (
	DirectionIncrease GoalDirection = "increase"
	DirectionDecrease GoalDirection = "decrease"
)

// Goal is a user target whose progress is derived from workouts or meals.
type Goal struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Title        string        `json:"title"`
	Discipline   Discipline    `json:"discipline"`
	Metric       string        `json:"metric,omitempty"`
	Unit         string        `json:"unit,omitempty"`
	TargetValue  float64       `json:"target_value"`
	CurrentValue float64       `json:"current_value"`
	Direction    GoalDirection `json:"direction,omitempty"`
	Period       string        `json:"period,omitempty"`
	Status       GoalStatus    `json:"status"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_date"`
	UpdatedAt    time.Time     `json:"updated_date"`
}

// Syncable reports whether automatic progress tracking applies to the goal.
func (g Goal) Syncable() bool {
	if g.Status == GoalStatusPaused || g.Status == GoalStatusAbandoned {
		return false
	}
	return g.TargetValue > 0
}

// Met reports whether the value satisfies the goal target.
func (g Goal) Met(value float64) bool {
	if g.Direction == DirectionDecrease {
		return value > 0 && value <= g.TargetValue
	}
	return value >= g.TargetValue
}

// PeriodStart returns the earliest record time considered for the goal.
func (g Goal) PeriodStart(now time.Time) time.Time {
	switch strings.ToLower(g.Period) {
	case "week", "weekly":
		return now.AddDate(0, 0, -7)
	case "month", "monthly":
		return now.AddDate(0, 0, -30)
	default:
		return g.CreatedAt
	}
}

// Progress is the completion percentage clamped to [0, 100].
func (g Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	var pct float64
	if g.Direction == DirectionDecrease {
		if g.CurrentValue <= 0 {
			return 0
		}
		pct = g.TargetValue / g.CurrentValue * 100
	} else {
		pct = g.CurrentValue / g.TargetValue * 100
	}
	return math.Min(100, math.Max(0, RoundValue(pct)))
}

// ApplyProgress sets the current value and derives status. It reports whether anything changed.
func (g *Goal) ApplyProgress(value float64, now time.Time) bool {
	value = RoundValue(value)
	status := GoalStatusActive
	if g.Met(value) {
		status = GoalStatusCompleted
	}
	if value == RoundValue(g.CurrentValue) && status == g.Status {
		return false
	}

	g.CurrentValue = value
	if status == GoalStatusCompleted && g.Status != GoalStatusCompleted {
		completedAt := now
		g.CompletedAt = &completedAt
	}
	if status != GoalStatusCompleted {
		g.CompletedAt = nil
	}
	g.Status = status
	g.UpdatedAt = now
	return true
}

// RoundValue rounds to two decimals.
func RoundValue(v float64) float64 {
	return math.Round(v*100) / 100
}
