// Package memory provides a map-backed entity store for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

// Repository stores entities in memory.
type Repository struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	workouts map[string]domain.Workout
	meals    map[string]domain.Meal
	goals    map[string]domain.Goal
	friends  map[string]domain.Friend
	circles  map[string]domain.Circle
	messages map[string]domain.CircleMessage
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		users:    make(map[string]domain.User),
		workouts: make(map[string]domain.Workout),
		meals:    make(map[string]domain.Meal),
		goals:    make(map[string]domain.Goal),
		friends:  make(map[string]domain.Friend),
		circles:  make(map[string]domain.Circle),
		messages: make(map[string]domain.CircleMessage),
	}
}

func ensureID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// CreateUser stores a user record.
func (r *Repository) CreateUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = ensureID(user.ID)
	user.CreatedAt = stamp(user.CreatedAt)
	r.users[user.ID] = user
	return nil
}

func (r *Repository) GetUser(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Repository) GetUsersByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// SearchUsers matches email, username or full name case-insensitively, ordered by username.
func (r *Repository) SearchUsers(_ context.Context, query, excludeID string, limit int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.User, 0)
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username == out[j].Username {
			return out[i].ID < out[j].ID
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) CreateWorkout(_ context.Context, workout domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = ensureID(workout.ID)
	workout.CreatedAt = stamp(workout.CreatedAt)
	workout.Date = stamp(workout.Date)
	r.workouts[workout.ID] = workout
	return nil
}

func (r *Repository) GetWorkout(_ context.Context, id string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *Repository) DeleteWorkout(_ context.Context, workout domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workout.ID]; !ok {
		return fmt.Errorf("workout %s: %w", workout.ID, domain.ErrNotFound)
	}
	delete(r.workouts, workout.ID)
	return nil
}

// ListWorkouts returns the user's workouts dated at or after since, newest first.
func (r *Repository) ListWorkouts(_ context.Context, userID string, since time.Time) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Workout, 0)
	for _, w := range r.workouts {
		if w.UserID == userID && !w.Date.Before(since) {
			out = append(out, w)
		}
	}
	sortWorkouts(out)
	return out, nil
}

// ListWorkoutsPage pages through the user's workouts newest first, keyed on (date, id).
func (r *Repository) ListWorkoutsPage(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	all, err := r.ListWorkouts(ctx, userID, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	start := 0
	if cursor != nil {
		start = len(all)
		for i, w := range all {
			if w.Date.Before(cursor.Date) || (w.Date.Equal(cursor.Date) && w.ID < cursor.ID) {
				start = i
				break
			}
		}
	}
	page := all[start:]
	if limit <= 0 || len(page) <= limit {
		return page, nil, nil
	}
	page = page[:limit]
	last := page[len(page)-1]
	return page, &domain.Cursor{Date: last.Date, ID: last.ID}, nil
}

func sortWorkouts(ws []domain.Workout) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Date.Equal(ws[j].Date) {
			return ws[i].ID > ws[j].ID
		}
		return ws[i].Date.After(ws[j].Date)
	})
}

func (r *Repository) CreateMeal(_ context.Context, meal domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	meal.ID = ensureID(meal.ID)
	meal.CreatedAt = stamp(meal.CreatedAt)
	meal.Date = stamp(meal.Date)
	r.meals[meal.ID] = meal
	return nil
}

func (r *Repository) ListMeals(_ context.Context, userID string, since time.Time) ([]domain.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Meal, 0)
	for _, m := range r.meals {
		if m.UserID == userID && !m.Date.Before(since) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *Repository) CreateGoal(_ context.Context, goal domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	goal.ID = ensureID(goal.ID)
	goal.CreatedAt = stamp(goal.CreatedAt)
	if goal.UpdatedAt.IsZero() {
		goal.UpdatedAt = goal.CreatedAt
	}
	r.goals[goal.ID] = goal
	return nil
}

func (r *Repository) GetGoal(_ context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// ListGoals returns the user's goals, oldest first.
func (r *Repository) ListGoals(_ context.Context, userID string) ([]domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Goal, 0)
	for _, g := range r.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) UpdateGoal(_ context.Context, goal domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.goals[goal.ID]; !ok {
		return fmt.Errorf("goal %s: %w", goal.ID, domain.ErrNotFound)
	}
	r.goals[goal.ID] = goal
	return nil
}

func (r *Repository) ListUserIDsWithOpenGoals(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, g := range r.goals {
		if g.Syncable() {
			seen[g.UserID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repository) CreateFriend(_ context.Context, friend domain.Friend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	friend.ID = ensureID(friend.ID)
	friend.CreatedAt = stamp(friend.CreatedAt)
	r.friends[friend.ID] = friend
	return nil
}

func (r *Repository) ListFriends(_ context.Context, userID string) ([]domain.Friend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Friend, 0)
	for _, f := range r.friends {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FriendID < out[j].FriendID })
	return out, nil
}

func (r *Repository) DeleteFriendship(_ context.Context, userID, friendID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, f := range r.friends {
		if (f.UserID == userID && f.FriendID == friendID) || (f.UserID == friendID && f.FriendID == userID) {
			delete(r.friends, id)
			removed++
		}
	}
	return removed, nil
}

func (r *Repository) CreateCircle(_ context.Context, circle domain.Circle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	circle.ID = ensureID(circle.ID)
	circle.CreatedAt = stamp(circle.CreatedAt)
	circle.MemberIDs = append([]string(nil), circle.MemberIDs...)
	r.circles[circle.ID] = circle
	return nil
}

func (r *Repository) GetCircle(_ context.Context, id string) (*domain.Circle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circles[id]
	if !ok {
		return nil, nil
	}
	c.MemberIDs = append([]string(nil), c.MemberIDs...)
	return &c, nil
}

func (r *Repository) CreateCircleMessage(_ context.Context, msg domain.CircleMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = ensureID(msg.ID)
	msg.CreatedAt = stamp(msg.CreatedAt)
	msg.ReadBy = append([]string(nil), msg.ReadBy...)
	r.messages[msg.ID] = msg
	return nil
}

func (r *Repository) GetCircleMessage(_ context.Context, id string) (*domain.CircleMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	m.ReadBy = append([]string(nil), m.ReadBy...)
	return &m, nil
}

func (r *Repository) ListBurnMessages(_ context.Context) ([]domain.CircleMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CircleMessage, 0)
	for _, m := range r.messages {
		if m.BurnAfterRead {
			m.ReadBy = append([]string(nil), m.ReadBy...)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) DeleteCircleMessages(_ context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := r.messages[id]; ok {
			delete(r.messages, id)
			deleted++
		}
	}
	return deleted, nil
}
