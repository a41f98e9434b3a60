package domain

import (
	"context"
	"time"
)

// Cursor models the pagination token for workout listings.
type Cursor struct {
	Date time.Time
	ID   string
}

// UserRepository reads account records. Get methods return (nil, nil) when absent.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]User, error)
	SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]User, error)
}

// WorkoutRepository persists workouts.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout Workout) error
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	DeleteWorkout(ctx context.Context, workout Workout) error
	ListWorkouts(ctx context.Context, userID string, since time.Time) ([]Workout, error)
	ListWorkoutsPage(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error)
}

// MealRepository persists meals.
type MealRepository interface {
	CreateMeal(ctx context.Context, meal Meal) error
	ListMeals(ctx context.Context, userID string, since time.Time) ([]Meal, error)
}

// GoalRepository persists goals.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal Goal) error
	GetGoal(ctx context.Context, id string) (*Goal, error)
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) error
	ListUserIDsWithOpenGoals(ctx context.Context) ([]string, error)
}

// FriendRepository persists friendships.
type FriendRepository interface {
	CreateFriend(ctx context.Context, friend Friend) error
	ListFriends(ctx context.Context, userID string) ([]Friend, error)
	// DeleteFriendship removes both directions and returns the number of rows removed.
	DeleteFriendship(ctx context.Context, userID, friendID string) (int, error)
}

// CircleRepository persists circles and their messages.
type CircleRepository interface {
	CreateCircle(ctx context.Context, circle Circle) error
	GetCircle(ctx context.Context, id string) (*Circle, error)
	CreateCircleMessage(ctx context.Context, msg CircleMessage) error
	GetCircleMessage(ctx context.Context, id string) (*CircleMessage, error)
	ListBurnMessages(ctx context.Context) ([]CircleMessage, error)
	DeleteCircleMessages(ctx context.Context, ids []string) (int, error)
}

// Repository is the entity store consumed by the services.
type Repository interface {
	UserRepository
	WorkoutRepository
	MealRepository
	GoalRepository
	FriendRepository
	CircleRepository
}
