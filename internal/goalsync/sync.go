// Package goalsync derives goal progress from logged workouts and meals.
package goalsync

import (
	"math"
	"strings"
	"time"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

const (
	MetricTotalDistance = "total_distance"
	MetricTotalDuration = "total_duration"

	kmPerMile = 1.609344
)

// Update is a goal whose progress changed during a sync.
type Update struct {
	Goal           domain.Goal
	PreviousValue  float64
	PreviousStatus domain.GoalStatus
}

// Completed reports whether the update moved the goal into the completed state.
func (u Update) Completed() bool {
	return u.Goal.Status == domain.GoalStatusCompleted && u.PreviousStatus != domain.GoalStatusCompleted
}

// Sync evaluates every goal against the history and returns the goals that changed.
func Sync(goals []domain.Goal, workouts []domain.Workout, meals []domain.Meal, now time.Time) []Update {
	var updates []Update
	for _, goal := range goals {
		if !goal.Syncable() {
			continue
		}
		value, ok := Evaluate(goal, workouts, meals, now)
		if !ok {
			continue
		}
		prevValue, prevStatus := goal.CurrentValue, goal.Status
		if !goal.ApplyProgress(value, now) {
			continue
		}
		updates = append(updates, Update{Goal: goal, PreviousValue: prevValue, PreviousStatus: prevStatus})
	}
	return updates
}

// Evaluate computes the current value of a goal. ok is false when the history says nothing about it.
func Evaluate(goal domain.Goal, workouts []domain.Workout, meals []domain.Meal, now time.Time) (float64, bool) {
	start := goal.PeriodStart(now)
	switch goal.Discipline {
	case domain.DisciplineStrength:
		return maxMatchingWeight(goal.Title, workouts)
	case domain.DisciplineRunning, domain.DisciplineCycling, domain.DisciplineSwimming:
		return endurance(goal, inPeriod(workouts, goal.Discipline, start, now))
	case domain.DisciplineConsistency:
		return float64(len(inPeriod(workouts, "", start, now))), true
	case domain.DisciplineNutrition:
		return nutrition(goal, mealsInPeriod(meals, start, now))
	default:
		return 0, false
	}
}

// namesMatch reports whether either name contains the other, ignoring case.
func namesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func maxMatchingWeight(title string, workouts []domain.Workout) (float64, bool) {
	best, found := 0.0, false
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if !namesMatch(title, ex.Name) {
				continue
			}
			if !found || ex.WeightKg > best {
				best = ex.WeightKg
			}
			found = true
		}
	}
	return best, found
}

// inPeriod filters workouts logged within [start, now]. An empty discipline keeps all of them.
func inPeriod(workouts []domain.Workout, discipline domain.Discipline, start, now time.Time) []domain.Workout {
	out := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if discipline != "" && w.Discipline != discipline {
			continue
		}
		if w.Date.Before(start) || w.Date.After(now) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func mealsInPeriod(meals []domain.Meal, start, now time.Time) []domain.Meal {
	out := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		if m.Date.Before(start) || m.Date.After(now) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func endurance(goal domain.Goal, workouts []domain.Workout) (float64, bool) {
	metric := strings.ToLower(goal.Metric)
	switch unit := strings.ToLower(strings.TrimSpace(goal.Unit)); unit {
	case "", "km", "mi", "m":
		var total, longest float64
		for _, w := range workouts {
			total += w.DistanceKm
			longest = math.Max(longest, w.DistanceKm)
		}
		value := longest
		if metric == MetricTotalDistance {
			value = total
		}
		return convertDistance(value, unit), true
	case "min", "h":
		var total, longest float64
		for _, w := range workouts {
			total += float64(w.DurationMin)
			longest = math.Max(longest, float64(w.DurationMin))
		}
		value := longest
		if metric == MetricTotalDuration {
			value = total
		}
		if unit == "h" {
			value /= 60
		}
		return value, true
	case "sessions":
		return float64(len(workouts)), true
	default:
		return 0, false
	}
}

func convertDistance(km float64, unit string) float64 {
	switch unit {
	case "mi":
		return km / kmPerMile
	case "m":
		return km * 1000
	default:
		return km
	}
}

func nutrition(goal domain.Goal, meals []domain.Meal) (float64, bool) {
	if len(meals) == 0 {
		return 0, false
	}
	key := strings.ToLower(goal.Title + " " + goal.Metric)
	var pick func(domain.Meal) float64
	switch {
	case strings.Contains(key, "protein"):
		pick = func(m domain.Meal) float64 { return m.ProteinG }
	case strings.Contains(key, "calorie"):
		pick = func(m domain.Meal) float64 { return m.Calories }
	default:
		return float64(len(meals)), true
	}

	perDay := make(map[string]float64)
	for _, m := range meals {
		perDay[m.Date.UTC().Format(time.DateOnly)] += pick(m)
	}
	var total float64
	for _, v := range perDay {
		total += v
	}
	return total / float64(len(perDay)), true
}
