package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

// CreateFriend stores one direction of a friendship.
func (r *Repository) CreateFriend(ctx context.Context, friend domain.Friend) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO friends (friend_row_id, user_id, friend_id, status, created_at) VALUES ($1,$2,$3,$4,$5)
         ON CONFLICT (user_id, friend_id) DO UPDATE SET status = EXCLUDED.status`,
		friend.ID, friend.UserID, friend.FriendID, friend.Status, friend.CreatedAt)
	return err
}

// ListFriends returns the user's outgoing friendship rows.
func (r *Repository) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT friend_row_id, user_id, friend_id, status, created_at FROM friends WHERE user_id = $1 ORDER BY friend_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Friend, 0)
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteFriendship removes both directions of a friendship.
func (r *Repository) DeleteFriendship(ctx context.Context, userID, friendID string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM friends WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`,
		userID, friendID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CreateCircle stores a circle.
func (r *Repository) CreateCircle(ctx context.Context, circle domain.Circle) error {
	members, err := encodeJSON(circle.MemberIDs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO circles (circle_id, name, owner_id, member_ids, created_at) VALUES ($1,$2,$3,$4,$5)`,
		circle.ID, circle.Name, circle.OwnerID, members, circle.CreatedAt)
	return err
}

// GetCircle retrieves a circle by ID.
func (r *Repository) GetCircle(ctx context.Context, id string) (*domain.Circle, error) {
	var (
		c       domain.Circle
		members []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT circle_id, name, owner_id, member_ids, created_at FROM circles WHERE circle_id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.OwnerID, &members, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := decodeJSON(members, &c.MemberIDs); err != nil {
		return nil, err
	}
	return &c, nil
}

const messageColumns = `message_id, circle_id, sender_id, body, burn_after_read, read_by, expires_at, created_at`

func scanMessage(row pgx.Row) (domain.CircleMessage, error) {
	var (
		m         domain.CircleMessage
		readBy    []byte
		expiresAt *time.Time
	)
	if err := row.Scan(&m.ID, &m.CircleID, &m.SenderID, &m.Body, &m.BurnAfterRead, &readBy, &expiresAt, &m.CreatedAt); err != nil {
		return domain.CircleMessage{}, err
	}
	if expiresAt != nil {
		m.ExpiresAt = *expiresAt
	}
	if err := decodeJSON(readBy, &m.ReadBy); err != nil {
		return domain.CircleMessage{}, err
	}
	return m, nil
}

// CreateCircleMessage stores a chat message.
func (r *Repository) CreateCircleMessage(ctx context.Context, msg domain.CircleMessage) error {
	readBy, err := encodeJSON(msg.ReadBy)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO circle_messages (`+messageColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		msg.ID, msg.CircleID, msg.SenderID, msg.Body, msg.BurnAfterRead, readBy, nullIfZero(msg.ExpiresAt), msg.CreatedAt)
	return err
}

// GetCircleMessage retrieves a message by ID.
func (r *Repository) GetCircleMessage(ctx context.Context, id string) (*domain.CircleMessage, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM circle_messages WHERE message_id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListBurnMessages returns every burn-after-read message, oldest first.
func (r *Repository) ListBurnMessages(ctx context.Context) ([]domain.CircleMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM circle_messages WHERE burn_after_read ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CircleMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteCircleMessages removes the messages and returns how many existed.
func (r *Repository) DeleteCircleMessages(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM circle_messages WHERE message_id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
