// Package postgres implements the entity store on Postgres. Writes that other
// services react to record outbox events in the same transaction.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

// Repository provides Postgres-backed persistence for entities and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type outboxEvent struct {
	aggregateType string
	aggregateID   string
	userID        string
	eventType     string
	dedupeKey     string
	payload       any
}

func insertOutbox(ctx context.Context, tx pgx.Tx, ev outboxEvent) error {
	body, err := json.Marshal(ev.payload)
	if err != nil {
		return err
	}
	topic := events.TopicFor(ev.eventType)
	if topic == "" {
		return fmt.Errorf("unknown event type: %s", ev.eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, user_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		ev.aggregateType,
		ev.aggregateID,
		ev.userID,
		ev.eventType,
		topic,
		ev.userID,
		body,
		nullIfEmpty(ev.dedupeKey),
	)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func encodeJSON(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(body) == "null" {
		return []byte("[]"), nil
	}
	return body, nil
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// escapeLike quotes LIKE metacharacters so the query is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const userColumns = `user_id, email, full_name, username, avatar_url, role, notifications_enabled, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Username, &u.AvatarURL, &u.Role, &u.NotificationsEnabled, &u.CreatedAt)
	return u, err
}

// CreateUser upserts an account mirrored from the identity platform.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (` + userColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (user_id) DO UPDATE SET
            email = EXCLUDED.email,
            full_name = EXCLUDED.full_name,
            username = EXCLUDED.username,
            avatar_url = EXCLUDED.avatar_url,
            role = EXCLUDED.role,
            notifications_enabled = EXCLUDED.notifications_enabled`

	role := user.Role
	if role == "" {
		role = "user"
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, stmt, user.ID, user.Email, user.FullName, user.Username, user.AvatarURL, role, user.NotificationsEnabled, createdAt)
	return err
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUsersByIDs returns the users that exist among ids, in no particular order.
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SearchUsers matches email, username or full name case-insensitively.
func (r *Repository) SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]domain.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
          WHERE user_id <> $2
            AND (LOWER(email) LIKE $1 OR LOWER(username) LIKE $1 OR LOWER(full_name) LIKE $1)
          ORDER BY username, user_id
          LIMIT $3`,
		pattern, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
