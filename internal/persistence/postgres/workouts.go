package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/observability"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

const workoutColumns = `workout_id, user_id, title, discipline, workout_date, duration_min, distance_km, rpe, muscle_groups, exercises, notes, created_at`

func scanWorkout(row pgx.Row) (domain.Workout, error) {
	var (
		w                 domain.Workout
		muscles, exercise []byte
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Title, &w.Discipline, &w.Date, &w.DurationMin, &w.DistanceKm, &w.RPE, &muscles, &exercise, &w.Notes, &w.CreatedAt); err != nil {
		return domain.Workout{}, err
	}
	if err := decodeJSON(muscles, &w.MuscleGroups); err != nil {
		return domain.Workout{}, fmt.Errorf("decode muscle_groups: %w", err)
	}
	if err := decodeJSON(exercise, &w.Exercises); err != nil {
		return domain.Workout{}, fmt.Errorf("decode exercises: %w", err)
	}
	return w, nil
}

// CreateWorkout stores the workout and records a workout.logged event.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	muscles, err := encodeJSON(workout.MuscleGroups)
	if err != nil {
		return err
	}
	exercises, err := encodeJSON(workout.Exercises)
	if err != nil {
		return err
	}

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workouts (`+workoutColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			workout.ID, workout.UserID, workout.Title, workout.Discipline, workout.Date, workout.DurationMin,
			workout.DistanceKm, workout.RPE, muscles, exercises, workout.Notes, workout.CreatedAt,
		); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "workout",
			aggregateID:   workout.ID,
			userID:        workout.UserID,
			eventType:     events.TypeWorkoutLogged,
			dedupeKey:     workout.ID + ":" + events.TypeWorkoutLogged,
			payload: events.WorkoutLogged{
				WorkoutID:   workout.ID,
				UserID:      workout.UserID,
				Discipline:  string(workout.Discipline),
				Date:        workout.Date,
				DurationMin: workout.DurationMin,
				DistanceKm:  workout.DistanceKm,
			},
		})
	})
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(workout.CreatedAt)
	return nil
}

// GetWorkout retrieves a workout by ID.
func (r *Repository) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	w, err := scanWorkout(r.pool.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE workout_id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// DeleteWorkout removes the workout and records a workout.deleted event.
func (r *Repository) DeleteWorkout(ctx context.Context, workout domain.Workout) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM workouts WHERE workout_id = $1`, workout.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("workout %s: %w", workout.ID, domain.ErrNotFound)
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "workout",
			aggregateID:   workout.ID,
			userID:        workout.UserID,
			eventType:     events.TypeWorkoutDeleted,
			dedupeKey:     workout.ID + ":" + events.TypeWorkoutDeleted,
			payload: events.WorkoutDeleted{
				WorkoutID: workout.ID,
				UserID:    workout.UserID,
				DeletedAt: time.Now().UTC(),
			},
		})
	})
}

// ListWorkouts returns the user's workouts dated at or after since, newest first.
func (r *Repository) ListWorkouts(ctx context.Context, userID string, since time.Time) ([]domain.Workout, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
          WHERE user_id = $1 AND workout_date >= $2
          ORDER BY workout_date DESC, workout_id DESC`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListWorkoutsPage returns workouts ordered by date using keyset pagination.
func (r *Repository) ListWorkoutsPage(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	args := []any{userID, limit}
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = $1`
	if cursor != nil {
		query += ` AND (workout_date, workout_id) < ($3, $4)`
		args = append(args, cursor.Date, cursor.ID)
	}
	query += ` ORDER BY workout_date DESC, workout_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Workout, 0, limit)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{Date: last.Date, ID: last.ID}
	}
	return results, next, nil
}

// CreateMeal stores the meal and records a meal.logged event.
func (r *Repository) CreateMeal(ctx context.Context, meal domain.Meal) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meals (meal_id, user_id, name, meal_date, calories, protein_g, carbs_g, fat_g, created_at)
             VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			meal.ID, meal.UserID, meal.Name, meal.Date, meal.Calories, meal.ProteinG, meal.CarbsG, meal.FatG, meal.CreatedAt,
		); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "meal",
			aggregateID:   meal.ID,
			userID:        meal.UserID,
			eventType:     events.TypeMealLogged,
			dedupeKey:     meal.ID + ":" + events.TypeMealLogged,
			payload: events.MealLogged{
				MealID:   meal.ID,
				UserID:   meal.UserID,
				Date:     meal.Date,
				Calories: meal.Calories,
				ProteinG: meal.ProteinG,
			},
		})
	})
}

// ListMeals returns the user's meals dated at or after since, newest first.
func (r *Repository) ListMeals(ctx context.Context, userID string, since time.Time) ([]domain.Meal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT meal_id, user_id, name, meal_date, calories, protein_g, carbs_g, fat_g, created_at
           FROM meals WHERE user_id = $1 AND meal_date >= $2
          ORDER BY meal_date DESC`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Meal, 0)
	for rows.Next() {
		var m domain.Meal
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Date, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
