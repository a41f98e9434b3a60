package goalsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

var now = time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)

func strengthWorkout(daysAgo int, exercises ...domain.ExerciseEntry) domain.Workout {
	return domain.Workout{
		ID:         "w",
		Discipline: domain.DisciplineStrength,
		Date:       now.AddDate(0, 0, -daysAgo),
		Exercises:  exercises,
	}
}

func TestSyncStrengthUsesMaxMatchingWeight(t *testing.T) {
	goal := domain.Goal{
		ID:          "g1",
		Title:       "Bench Press",
		Discipline:  domain.DisciplineStrength,
		TargetValue: 100,
		Status:      domain.GoalStatusActive,
	}
	workouts := []domain.Workout{
		strengthWorkout(10, domain.ExerciseEntry{Name: "bench press", WeightKg: 80}),
		strengthWorkout(3, domain.ExerciseEntry{Name: "Incline Bench Press", WeightKg: 90}),
		strengthWorkout(1, domain.ExerciseEntry{Name: "Squat", WeightKg: 140}),
	}

	updates := Sync([]domain.Goal{goal}, workouts, nil, now)
	require.Len(t, updates, 1)
	require.Equal(t, 90.0, updates[0].Goal.CurrentValue)
	require.Equal(t, domain.GoalStatusActive, updates[0].Goal.Status)
	require.Nil(t, updates[0].Goal.CompletedAt)
	require.False(t, updates[0].Completed())

	workouts = append(workouts, strengthWorkout(0, domain.ExerciseEntry{Name: "BENCH", WeightKg: 100}))
	updates = Sync([]domain.Goal{goal}, workouts, nil, now)
	require.Len(t, updates, 1)
	require.Equal(t, 100.0, updates[0].Goal.CurrentValue)
	require.Equal(t, domain.GoalStatusCompleted, updates[0].Goal.Status)
	require.NotNil(t, updates[0].Goal.CompletedAt)
	require.True(t, updates[0].Completed())
}

func TestSyncStrengthWithoutMatchLeavesGoalAlone(t *testing.T) {
	goal := domain.Goal{ID: "g1", Title: "Deadlift", Discipline: domain.DisciplineStrength, TargetValue: 200, CurrentValue: 150}
	workouts := []domain.Workout{strengthWorkout(1, domain.ExerciseEntry{Name: "Squat", WeightKg: 140})}

	require.Empty(t, Sync([]domain.Goal{goal}, workouts, nil, now))
}

func TestSyncCompletionProperty(t *testing.T) {
	for _, target := range []float64{50, 99.5, 100, 100.01, 150} {
		goal := domain.Goal{ID: "g", Title: "Squat", Discipline: domain.DisciplineStrength, TargetValue: target}
		workouts := []domain.Workout{strengthWorkout(0, domain.ExerciseEntry{Name: "squat", WeightKg: 100})}

		updates := Sync([]domain.Goal{goal}, workouts, nil, now)
		require.Len(t, updates, 1)
		require.Equal(t, 100.0 >= target, updates[0].Goal.Status == domain.GoalStatusCompleted, "target %v", target)
	}
}

func TestSyncSkipsInactiveGoals(t *testing.T) {
	goals := []domain.Goal{
		{ID: "paused", Title: "Squat", Discipline: domain.DisciplineStrength, TargetValue: 100, Status: domain.GoalStatusPaused},
		{ID: "abandoned", Title: "Squat", Discipline: domain.DisciplineStrength, TargetValue: 100, Status: domain.GoalStatusAbandoned},
		{ID: "no-target", Title: "Squat", Discipline: domain.DisciplineStrength},
	}
	workouts := []domain.Workout{strengthWorkout(0, domain.ExerciseEntry{Name: "squat", WeightKg: 120})}

	require.Empty(t, Sync(goals, workouts, nil, now))
}

func TestSyncIsIdempotent(t *testing.T) {
	goal := domain.Goal{ID: "g", Title: "Squat", Discipline: domain.DisciplineStrength, TargetValue: 150, Status: domain.GoalStatusActive}
	workouts := []domain.Workout{strengthWorkout(0, domain.ExerciseEntry{Name: "squat", WeightKg: 120})}

	updates := Sync([]domain.Goal{goal}, workouts, nil, now)
	require.Len(t, updates, 1)

	require.Empty(t, Sync([]domain.Goal{updates[0].Goal}, workouts, nil, now))
}

func TestSyncRegressionClearsCompletion(t *testing.T) {
	completedAt := now.AddDate(0, 0, -1)
	goal := domain.Goal{
		ID:           "g",
		Title:        "Weekly km",
		Discipline:   domain.DisciplineRunning,
		Metric:       MetricTotalDistance,
		Unit:         "km",
		Period:       "week",
		TargetValue:  20,
		CurrentValue: 22,
		Status:       domain.GoalStatusCompleted,
		CompletedAt:  &completedAt,
	}
	workouts := []domain.Workout{
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -2), DistanceKm: 10},
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -9), DistanceKm: 12},
	}

	updates := Sync([]domain.Goal{goal}, workouts, nil, now)
	require.Len(t, updates, 1)
	require.Equal(t, 10.0, updates[0].Goal.CurrentValue)
	require.Equal(t, domain.GoalStatusActive, updates[0].Goal.Status)
	require.Nil(t, updates[0].Goal.CompletedAt)
}

func TestEvaluateEndurance(t *testing.T) {
	created := now.AddDate(0, -2, 0)
	workouts := []domain.Workout{
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -1), DistanceKm: 5, DurationMin: 30},
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -5), DistanceKm: 12, DurationMin: 70},
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -20), DistanceKm: 21.1, DurationMin: 120},
		{Discipline: domain.DisciplineCycling, Date: now.AddDate(0, 0, -1), DistanceKm: 60, DurationMin: 150},
	}

	tests := []struct {
		name string
		goal domain.Goal
		want float64
	}{
		{"longest km this week", domain.Goal{Unit: "km", Period: "week"}, 12},
		{"total km this week", domain.Goal{Unit: "km", Period: "week", Metric: MetricTotalDistance}, 17},
		{"longest km this month", domain.Goal{Unit: "km", Period: "month"}, 21.1},
		{"meters", domain.Goal{Unit: "m", Period: "week"}, 12000},
		{"miles", domain.Goal{Unit: "mi", Period: "week"}, 12 / kmPerMile},
		{"longest minutes", domain.Goal{Unit: "min", Period: "week"}, 70},
		{"total minutes", domain.Goal{Unit: "min", Period: "week", Metric: MetricTotalDuration}, 100},
		{"sessions since creation", domain.Goal{Unit: "sessions", CreatedAt: created}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.goal.Discipline = domain.DisciplineRunning
			tt.goal.TargetValue = 1
			got, ok := Evaluate(tt.goal, workouts, nil, now)
			require.True(t, ok)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := Evaluate(domain.Goal{Discipline: domain.DisciplineRunning, Unit: "laps"}, workouts, nil, now)
	require.False(t, ok)
}

func TestEvaluateConsistency(t *testing.T) {
	workouts := []domain.Workout{
		{Discipline: domain.DisciplineRunning, Date: now.AddDate(0, 0, -1)},
		{Discipline: domain.DisciplineStrength, Date: now.AddDate(0, 0, -2)},
		{Discipline: domain.DisciplineYoga, Date: now.AddDate(0, 0, -8)},
	}
	got, ok := Evaluate(domain.Goal{Discipline: domain.DisciplineConsistency, Period: "week"}, workouts, nil, now)
	require.True(t, ok)
	require.Equal(t, 2.0, got)
}

func TestEvaluateNutrition(t *testing.T) {
	day1 := now.AddDate(0, 0, -1)
	day2 := now.AddDate(0, 0, -2)
	meals := []domain.Meal{
		{Date: day1, ProteinG: 60, Calories: 900},
		{Date: day1.Add(-3 * time.Hour), ProteinG: 40, Calories: 700},
		{Date: day2, ProteinG: 80, Calories: 1800},
		{Date: now.AddDate(0, 0, -40), ProteinG: 500, Calories: 9000},
	}

	got, ok := Evaluate(domain.Goal{Discipline: domain.DisciplineNutrition, Title: "Daily Protein", Period: "month"}, nil, meals, now)
	require.True(t, ok)
	require.Equal(t, 90.0, got)

	got, ok = Evaluate(domain.Goal{Discipline: domain.DisciplineNutrition, Title: "Cut", Metric: "calories", Period: "month"}, nil, meals, now)
	require.True(t, ok)
	require.Equal(t, 1700.0, got)

	got, ok = Evaluate(domain.Goal{Discipline: domain.DisciplineNutrition, Title: "Log meals", Period: "month"}, nil, meals, now)
	require.True(t, ok)
	require.Equal(t, 3.0, got)

	_, ok = Evaluate(domain.Goal{Discipline: domain.DisciplineNutrition, Title: "Protein", Period: "week"}, nil, nil, now)
	require.False(t, ok)

	_, ok = Evaluate(domain.Goal{Discipline: domain.DisciplineNutrition, Title: "Log meals", Period: "week"}, nil, nil, now)
	require.False(t, ok, "meal count keeps its value when nothing was logged")
}

func TestSyncNutritionWithoutMealsKeepsProgress(t *testing.T) {
	goals := []domain.Goal{
		{ID: "count", Title: "Log meals", Discipline: domain.DisciplineNutrition, Period: "week", TargetValue: 21, CurrentValue: 14, Status: domain.GoalStatusActive},
		{ID: "protein", Title: "Protein", Discipline: domain.DisciplineNutrition, Period: "week", TargetValue: 150, CurrentValue: 120, Status: domain.GoalStatusActive},
	}
	stale := []domain.Meal{{Date: now.AddDate(0, 0, -20), ProteinG: 90}}

	require.Empty(t, Sync(goals, nil, stale, now))
}

func TestSyncDecreaseGoal(t *testing.T) {
	goal := domain.Goal{
		ID:          "g",
		Title:       "Calories under 2000",
		Discipline:  domain.DisciplineNutrition,
		Metric:      "calories",
		Direction:   domain.DirectionDecrease,
		Period:      "week",
		TargetValue: 2000,
	}
	meals := []domain.Meal{{Date: now.AddDate(0, 0, -1), Calories: 1850}}

	updates := Sync([]domain.Goal{goal}, nil, meals, now)
	require.Len(t, updates, 1)
	require.Equal(t, domain.GoalStatusCompleted, updates[0].Goal.Status)
}
