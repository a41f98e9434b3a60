package domain

import (
	"strings"
	"time"
)

// Discipline classifies a workout or goal.
type Discipline string

const (
	DisciplineStrength    Discipline = "strength"
	DisciplineRunning     Discipline = "running"
	DisciplineCycling     Discipline = "cycling"
	DisciplineSwimming    Discipline = "swimming"
	DisciplineHIIT        Discipline = "hiit"
	DisciplineYoga        Discipline = "yoga"
	DisciplineConsistency Discipline = "consistency"
	DisciplineNutrition   Discipline = "nutrition"
	DisciplineOther       Discipline = "other"
)

// ParseDiscipline normalizes free-form discipline labels coming from clients.
func ParseDiscipline(raw string) Discipline {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strength", "weights", "lifting", "gym":
		return DisciplineStrength
	case "running", "run":
		return DisciplineRunning
	case "cycling", "ride", "bike":
		return DisciplineCycling
	case "swimming", "swim":
		return DisciplineSwimming
	case "hiit", "crossfit", "conditioning":
		return DisciplineHIIT
	case "yoga", "mobility", "stretching":
		return DisciplineYoga
	case "consistency", "frequency":
		return DisciplineConsistency
	case "nutrition", "diet":
		return DisciplineNutrition
	case "":
		return ""
	default:
		return DisciplineOther
	}
}

// GoalOnly reports whether the discipline only describes goals and cannot be
// logged as a workout.
func (d Discipline) GoalOnly() bool {
	return d == DisciplineConsistency || d == DisciplineNutrition
}

// User is the account record owned by the identity platform.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	FullName             string    `json:"full_name"`
	Username             string    `json:"username"`
	AvatarURL            string    `json:"avatar_url,omitempty"`
	Role                 string    `json:"role,omitempty"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_date"`
}

// PublicProfile is what other users are allowed to see.
type PublicProfile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Profile strips private fields from the user.
func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, FullName: u.FullName, Username: u.Username, AvatarURL: u.AvatarURL}
}

// DisplayName returns the best human readable name available.
func (u User) DisplayName() string {
	switch {
	case strings.TrimSpace(u.FullName) != "":
		return u.FullName
	case strings.TrimSpace(u.Username) != "":
		return u.Username
	default:
		return "Someone"
	}
}

// ExerciseEntry is a single exercise logged inside a workout.
type ExerciseEntry struct {
	Name     string  `json:"name"`
	WeightKg float64 `json:"weight"`
	Reps     int     `json:"reps"`
	Sets     int     `json:"sets"`
}

// Workout is a logged training session.
type Workout struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Title        string          `json:"title"`
	Discipline   Discipline      `json:"discipline"`
	Date         time.Time       `json:"date"`
	DurationMin  int             `json:"duration_minutes"`
	DistanceKm   float64         `json:"distance_km,omitempty"`
	RPE          int             `json:"rpe,omitempty"`
	MuscleGroups []string        `json:"muscle_groups,omitempty"`
	Exercises    []ExerciseEntry `json:"exercises,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_date"`
}

// Meal is a logged nutrition entry.
type Meal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Calories  float64   `json:"calories"`
	ProteinG  float64   `json:"protein"`
	CarbsG    float64   `json:"carbs"`
	FatG      float64   `json:"fat"`
	CreatedAt time.Time `json:"created_date"`
}

// Friend is one direction of a friendship.
type Friend struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_date"`
}

// Circle is a private group chat.
type Circle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_date"`
}

// HasMember reports whether the user belongs to the circle.
func (c Circle) HasMember(userID string) bool {
	if c.OwnerID == userID {
		return true
	}
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Members returns owner and members without duplicates.
func (c Circle) Members() []string {
	seen := make(map[string]struct{}, len(c.MemberIDs)+1)
	out := make([]string, 0, len(c.MemberIDs)+1)
	for _, id := range append([]string{c.OwnerID}, c.MemberIDs...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CircleMessage is a chat message posted into a circle.
type CircleMessage struct {
	ID            string    `json:"id"`
	CircleID      string    `json:"circle_id"`
	SenderID      string    `json:"sender_id"`
	Body          string    `json:"content"`
	BurnAfterRead bool      `json:"burn_after_read"`
	ReadBy        []string  `json:"read_by,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time `json:"created_date"`
}
