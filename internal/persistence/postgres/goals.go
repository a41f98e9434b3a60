package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

const goalColumns = `goal_id, user_id, title, discipline, metric, unit, target_value, current_value, direction, period, status, deadline, completed_at, created_at, updated_at`

func scanGoal(row pgx.Row) (domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Discipline, &g.Metric, &g.Unit, &g.TargetValue, &g.CurrentValue,
		&g.Direction, &g.Period, &g.Status, &g.Deadline, &g.CompletedAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGoal stores a goal.
func (r *Repository) CreateGoal(ctx context.Context, goal domain.Goal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		goal.ID, goal.UserID, goal.Title, goal.Discipline, goal.Metric, goal.Unit, goal.TargetValue, goal.CurrentValue,
		goal.Direction, goal.Period, goal.Status, goal.Deadline, goal.CompletedAt, goal.CreatedAt, goal.UpdatedAt,
	)
	return err
}

// GetGoal retrieves a goal by ID.
func (r *Repository) GetGoal(ctx context.Context, id string) (*domain.Goal, error) {
	g, err := scanGoal(r.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE goal_id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// ListGoals returns the user's goals, oldest first.
func (r *Repository) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at, goal_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGoal persists progress fields and records a goal.progress_changed event.
func (r *Repository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE goals
                SET title = $2, target_value = $3, current_value = $4, status = $5,
                    completed_at = $6, deadline = $7, updated_at = $8
              WHERE goal_id = $1`,
			goal.ID, goal.Title, goal.TargetValue, goal.CurrentValue, goal.Status, goal.CompletedAt, goal.Deadline, goal.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("goal %s: %w", goal.ID, domain.ErrNotFound)
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "goal",
			aggregateID:   goal.ID,
			userID:        goal.UserID,
			eventType:     events.TypeGoalProgressChanged,
			dedupeKey:     goal.ID + ":" + strconv.FormatInt(goal.UpdatedAt.UnixNano(), 10),
			payload: events.GoalProgressChanged{
				GoalID:       goal.ID,
				UserID:       goal.UserID,
				CurrentValue: goal.CurrentValue,
				TargetValue:  goal.TargetValue,
				Status:       string(goal.Status),
				OccurredAt:   goal.UpdatedAt,
			},
		})
	})
}

// ListUserIDsWithOpenGoals returns users owning at least one goal that sync can still move.
func (r *Repository) ListUserIDsWithOpenGoals(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM goals
          WHERE status NOT IN ('paused', 'abandoned') AND target_value > 0
          ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
