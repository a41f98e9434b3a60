// Package domain defines the entities and business rules of the fitsocial backend.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a1dsv/NOVA-sub002/internal/observability"
)

type noopProfileCache struct{}

func (noopProfileCache) Get(string) (PublicProfile, bool) { return PublicProfile{}, false }
func (noopProfileCache) Set(PublicProfile)                {}
func (noopProfileCache) Invalidate(string) bool           { return false }

type discardMailer struct{}

func (discardMailer) Send(context.Context, Email) error { return nil }

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithMailer sets the mail relay used for notifications.
func WithMailer(m Mailer) Option {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

// WithProfileCache sets the cache used by profile lookups.
func WithProfileCache(c ProfileCache) Option {
	return func(s *Service) {
		if c != nil {
			s.profiles = c
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service orchestrates the entity workflows behind the HTTP functions.
type Service struct {
	repo     Repository
	mailer   Mailer
	profiles ProfileCache
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		mailer:   discardMailer{},
		profiles: noopProfileCache{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Caller identifies the authenticated user performing an operation.
type Caller struct {
	UserID string
	Admin  bool
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Identity is what the bearer token says about the caller.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

const defaultRole = "user"

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return defaultRole
	}
	return role
}

// EnsureUser mirrors the identity into the user store. Unknown callers get an
// account with notifications on; known ones have email and role refreshed
// from the token. Profile fields the user edited are left alone.
func (s *Service) EnsureUser(ctx context.Context, identity Identity) (*User, error) {
	userID := strings.TrimSpace(identity.UserID)
	if userID == "" {
		return nil, invalid("user id is required")
	}
	email := strings.TrimSpace(identity.Email)
	role := normalizeRole(identity.Role)

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if (email == "" || email == user.Email) && role == normalizeRole(user.Role) {
			return user, nil
		}
		if email != "" {
			user.Email = email
		}
		user.Role = role
	} else {
		user = &User{
			ID:                   userID,
			Email:                email,
			Username:             usernameFor(userID, email),
			Role:                 role,
			NotificationsEnabled: true,
			CreatedAt:            s.now(),
		}
	}

	if err := s.repo.CreateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("provision user %s: %w", userID, err)
	}
	s.profiles.Invalidate(userID)
	return user, nil
}

func usernameFor(userID, email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return strings.ToLower(email[:at])
	}
	return userID
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

// CreateWorkoutInput captures the payload from the API layer.
type CreateWorkoutInput struct {
	UserID       string
	Title        string
	Discipline   string
	Date         time.Time
	DurationMin  int
	DistanceKm   float64
	RPE          int
	MuscleGroups []string
	Exercises    []ExerciseEntry
	Notes        string
}

// CreateWorkout validates and stores a workout.
func (s *Service) CreateWorkout(ctx context.Context, input CreateWorkoutInput) (*Workout, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	discipline := ParseDiscipline(input.Discipline)
	if discipline == "" {
		return nil, invalid("discipline is required")
	}
	if discipline.GoalOnly() {
		return nil, invalid("%s is not a workout discipline", discipline)
	}
	if input.DurationMin < 0 || input.DistanceKm < 0 {
		return nil, invalid("duration and distance must be >= 0")
	}
	if input.RPE < 0 || input.RPE > 10 {
		return nil, invalid("rpe must be between 0 and 10")
	}
	for _, ex := range input.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return nil, invalid("exercise name is required")
		}
		if ex.WeightKg < 0 || ex.Reps < 0 || ex.Sets < 0 {
			return nil, invalid("exercise %q has negative values", ex.Name)
		}
	}

	now := s.now()
	date := input.Date.UTC()
	if input.Date.IsZero() {
		date = now
	}
	workout := Workout{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		Title:        strings.TrimSpace(input.Title),
		Discipline:   discipline,
		Date:         date,
		DurationMin:  input.DurationMin,
		DistanceKm:   input.DistanceKm,
		RPE:          input.RPE,
		MuscleGroups: input.MuscleGroups,
		Exercises:    input.Exercises,
		Notes:        input.Notes,
		CreatedAt:    now,
	}
	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// ListWorkouts fetches a page of the user's workouts, newest first.
func (s *Service) ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error) {
	return s.repo.ListWorkoutsPage(ctx, userID, cursor, limit)
}

// RecentWorkouts returns the user's workouts since the given time.
func (s *Service) RecentWorkouts(ctx context.Context, userID string, since time.Time) ([]Workout, error) {
	return s.repo.ListWorkouts(ctx, userID, since)
}

// DeleteWorkout removes a workout owned by the caller.
func (s *Service) DeleteWorkout(ctx context.Context, caller Caller, workoutID string) error {
	if strings.TrimSpace(workoutID) == "" {
		return invalid("workout_id is required")
	}
	workout, err := s.repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return err
	}
	if workout == nil {
		return fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
	}
	if workout.UserID != caller.UserID && !caller.Admin {
		return fmt.Errorf("workout %s: %w", workoutID, ErrForbidden)
	}
	return s.repo.DeleteWorkout(ctx, *workout)
}

// CreateMealInput captures the payload from the API layer.
type CreateMealInput struct {
	UserID   string
	Name     string
	Date     time.Time
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// CreateMeal validates and stores a meal.
func (s *Service) CreateMeal(ctx context.Context, input CreateMealInput) (*Meal, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	if input.Calories < 0 || input.ProteinG < 0 || input.CarbsG < 0 || input.FatG < 0 {
		return nil, invalid("nutrition values must be >= 0")
	}
	now := s.now()
	date := input.Date.UTC()
	if input.Date.IsZero() {
		date = now
	}
	meal := Meal{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Date:      date,
		Calories:  input.Calories,
		ProteinG:  input.ProteinG,
		CarbsG:    input.CarbsG,
		FatG:      input.FatG,
		CreatedAt: now,
	}
	if err := s.repo.CreateMeal(ctx, meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// CreateGoalInput captures the payload from the API layer.
type CreateGoalInput struct {
	UserID      string
	Title       string
	Discipline  string
	Metric      string
	Unit        string
	TargetValue float64
	Direction   string
	Period      string
	Deadline    *time.Time
}

// CreateGoal validates and stores a goal.
func (s *Service) CreateGoal(ctx context.Context, input CreateGoalInput) (*Goal, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalid("title is required")
	}
	if input.TargetValue <= 0 {
		return nil, invalid("target_value must be > 0")
	}
	discipline := ParseDiscipline(input.Discipline)
	if discipline == "" {
		return nil, invalid("discipline is required")
	}
	direction := GoalDirection(strings.ToLower(strings.TrimSpace(input.Direction)))
	switch direction {
	case "":
		direction = DirectionIncrease
	case DirectionIncrease, DirectionDecrease:
	default:
		return nil, invalid("direction must be increase or decrease")
	}

	now := s.now()
	goal := Goal{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Title:       strings.TrimSpace(input.Title),
		Discipline:  discipline,
		Metric:      strings.ToLower(strings.TrimSpace(input.Metric)),
		Unit:        strings.ToLower(strings.TrimSpace(input.Unit)),
		TargetValue: input.TargetValue,
		Direction:   direction,
		Period:      strings.ToLower(strings.TrimSpace(input.Period)),
		Status:      GoalStatusActive,
		Deadline:    input.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListGoals returns the user's goals.
func (s *Service) ListGoals(ctx context.Context, userID string) ([]Goal, error) {
	return s.repo.ListGoals(ctx, userID)
}

// UpdateGoalProgress records a manually reported value on a goal owned by the caller.
func (s *Service) UpdateGoalProgress(ctx context.Context, caller Caller, goalID string, value float64) (*Goal, error) {
	if strings.TrimSpace(goalID) == "" {
		return nil, invalid("goal_id is required")
	}
	if value < 0 {
		return nil, invalid("current_value must be >= 0")
	}
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	if goal.UserID != caller.UserID && !caller.Admin {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrForbidden)
	}
	if !goal.ApplyProgress(value, s.now()) {
		return goal, nil
	}
	if err := s.repo.UpdateGoal(ctx, *goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// RemoveFriend deletes the friendship in both directions.
func (s *Service) RemoveFriend(ctx context.Context, callerID, friendID string) (int, error) {
	friendID = strings.TrimSpace(friendID)
	if friendID == "" {
		return 0, invalid("friend_id is required")
	}
	if friendID == callerID {
		return 0, invalid("cannot remove yourself")
	}
	removed, err := s.repo.DeleteFriendship(ctx, callerID, friendID)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, fmt.Errorf("friendship with %s: %w", friendID, ErrNotFound)
	}
	return removed, nil
}

const (
	minSearchQueryLen = 2
	maxSearchResults  = 20
	// MaxProfileLookup bounds a single getUsersByIds call.
	MaxProfileLookup = 100
)

// SearchUsers finds other users by email, username or name.
func (s *Service) SearchUsers(ctx context.Context, callerID, query string) ([]PublicProfile, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLen {
		return nil, invalid("query must be at least %d characters", minSearchQueryLen)
	}
	users, err := s.repo.SearchUsers(ctx, query, callerID, maxSearchResults)
	if err != nil {
		return nil, err
	}
	out := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		p := u.Profile()
		s.profiles.Set(p)
		out = append(out, p)
	}
	return out, nil
}

// GetUsersByIDs resolves public profiles in request order, skipping unknown ids.
func (s *Service) GetUsersByIDs(ctx context.Context, ids []string) ([]PublicProfile, error) {
	if len(ids) == 0 {
		return nil, invalid("user_ids is required")
	}
	if len(ids) > MaxProfileLookup {
		return nil, invalid("at most %d user_ids per call", MaxProfileLookup)
	}

	resolved := make(map[string]PublicProfile, len(ids))
	missing := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.profiles.Get(id); ok {
			resolved[id] = p
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		users, err := s.repo.GetUsersByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			p := u.Profile()
			s.profiles.Set(p)
			resolved[u.ID] = p
		}
	}

	out := make([]PublicProfile, 0, len(resolved))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if p, ok := resolved[id]; ok {
			out = append(out, p)
			delete(resolved, id)
		}
	}
	return out, nil
}

// NotificationResult summarizes a best-effort notification fan-out.
type NotificationResult struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

const messagePreviewLen = 140

// SendMessageNotification emails every other circle member about a new message.
// Individual delivery failures are counted and do not abort the fan-out.
func (s *Service) SendMessageNotification(ctx context.Context, callerID, circleID, messageID string) (*NotificationResult, error) {
	if strings.TrimSpace(circleID) == "" || strings.TrimSpace(messageID) == "" {
		return nil, invalid("circle_id and message_id are required")
	}
	circle, err := s.repo.GetCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, fmt.Errorf("circle %s: %w", circleID, ErrNotFound)
	}
	if !circle.HasMember(callerID) {
		return nil, fmt.Errorf("circle %s: %w", circleID, ErrForbidden)
	}
	msg, err := s.repo.GetCircleMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.CircleID != circle.ID {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}

	recipients := make([]string, 0, len(circle.MemberIDs))
	for _, id := range circle.Members() {
		if id != callerID {
			recipients = append(recipients, id)
		}
	}
	result := &NotificationResult{}
	if len(recipients) == 0 {
		return result, nil
	}

	users, err := s.repo.GetUsersByIDs(ctx, append(recipients, callerID))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	sender := byID[callerID]
	email := composeMessageEmail(sender, *circle, *msg)

	for _, id := range recipients {
		u, ok := byID[id]
		if !ok || !u.NotificationsEnabled || strings.TrimSpace(u.Email) == "" {
			result.Skipped++
			continue
		}
		email.To = u.Email
		if err := s.mailer.Send(ctx, email); err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", u.ID, err))
			continue
		}
		result.Sent++
	}
	observability.RecordNotifications(result.Sent, result.Failed)
	return result, nil
}

func composeMessageEmail(sender User, circle Circle, msg CircleMessage) Email {
	subject := fmt.Sprintf("New message in %s", circle.Name)
	var body string
	if msg.BurnAfterRead {
		body = fmt.Sprintf("%s sent a burn-after-read message in %s. Open the app to read it before it disappears.", sender.DisplayName(), circle.Name)
	} else {
		preview := []rune(strings.TrimSpace(msg.Body))
		if len(preview) > messagePreviewLen {
			preview = append(preview[:messagePreviewLen], []rune("...")...)
		}
		body = fmt.Sprintf("%s: %s", sender.DisplayName(), string(preview))
	}
	return Email{Subject: subject, Body: body}
}

// BurnMessageTTL is how long an unread burn-after-read message survives without an explicit expiry.
const BurnMessageTTL = 24 * time.Hour

// CleanupBurnMessages deletes burn-after-read messages that expired or were read by every recipient.
func (s *Service) CleanupBurnMessages(ctx context.Context) (int, error) {
	messages, err := s.repo.ListBurnMessages(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	circles := make(map[string]*Circle)
	expired := make([]string, 0)
	for _, msg := range messages {
		if !msg.BurnAfterRead {
			continue
		}
		if burnExpired(msg, now) {
			expired = append(expired, msg.ID)
			continue
		}
		circle, ok := circles[msg.CircleID]
		if !ok {
			circle, err = s.repo.GetCircle(ctx, msg.CircleID)
			if err != nil {
				return 0, err
			}
			circles[msg.CircleID] = circle
		}
		// messages whose circle is gone have nobody left to read them
		if circle == nil || readByAll(msg, *circle) {
			expired = append(expired, msg.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	deleted, err := s.repo.DeleteCircleMessages(ctx, expired)
	if err != nil {
		return 0, err
	}
	observability.RecordBurnCleanup(deleted)
	return deleted, nil
}

func burnExpired(msg CircleMessage, now time.Time) bool {
	expiresAt := msg.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = msg.CreatedAt.Add(BurnMessageTTL)
	}
	return !expiresAt.After(now)
}

func readByAll(msg CircleMessage, circle Circle) bool {
	read := make(map[string]struct{}, len(msg.ReadBy))
	for _, id := range msg.ReadBy {
		read[id] = struct{}{}
	}
	recipients := 0
	for _, id := range circle.Members() {
		if id == msg.SenderID {
			continue
		}
		recipients++
		if _, ok := read[id]; !ok {
			return false
		}
	}
	return recipients > 0
}
