//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("fitsocial"),
		postgrescontainer.WithUsername("fitsocial"),
		postgrescontainer.WithPassword("fitsocial"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := NewPool(ctx, connStr, PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runMigrations(t, ctx, pool)
	return pool
}

func TestWorkoutLifecycleRecordsOutboxEvents(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	repo := NewRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	workout := domain.Workout{
		ID:           uuid.NewString(),
		UserID:       uuid.NewString(),
		Title:        "Push day",
		Discipline:   domain.DisciplineStrength,
		Date:         now,
		DurationMin:  55,
		RPE:          8,
		MuscleGroups: []string{"chest"},
		Exercises:    []domain.ExerciseEntry{{Name: "Bench Press", WeightKg: 90, Reps: 5, Sets: 5}},
		CreatedAt:    now,
	}
	require.NoError(t, repo.CreateWorkout(ctx, workout))

	stored, err := repo.GetWorkout(ctx, workout.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, workout.Exercises, stored.Exercises)
	require.Equal(t, workout.MuscleGroups, stored.MuscleGroups)

	require.NoError(t, repo.DeleteWorkout(ctx, *stored))
	require.ErrorIs(t, repo.DeleteWorkout(ctx, *stored), domain.ErrNotFound)

	rows, err := pool.Query(ctx, `SELECT event_type, topic, partition_key FROM outbox WHERE aggregate_id = $1 ORDER BY event_id`, workout.ID)
	require.NoError(t, err)
	defer rows.Close()
	var types []string
	for rows.Next() {
		var eventType, topic, key string
		require.NoError(t, rows.Scan(&eventType, &topic, &key))
		require.Equal(t, events.TopicWorkouts, topic)
		require.Equal(t, workout.UserID, key)
		types = append(types, eventType)
	}
	require.Equal(t, []string{events.TypeWorkoutLogged, events.TypeWorkoutDeleted}, types)
}

func TestListWorkoutsPageKeyset(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(startPostgres(t))

	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateWorkout(ctx, domain.Workout{
			ID:         uuid.NewString(),
			UserID:     userID,
			Discipline: domain.DisciplineRunning,
			Date:       base.Add(-time.Duration(i) * time.Hour),
			CreatedAt:  base,
		}))
	}

	first, next, err := repo.ListWorkoutsPage(ctx, userID, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, next)

	second, _, err := repo.ListWorkoutsPage(ctx, userID, next, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.True(t, second[0].Date.Before(first[2].Date))
}

func TestGoalsAndSocial(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(startPostgres(t))
	now := time.Now().UTC().Truncate(time.Microsecond)

	goal := domain.Goal{
		ID: uuid.NewString(), UserID: "u1", Title: "Squat", Discipline: domain.DisciplineStrength,
		TargetValue: 100, Direction: domain.DirectionIncrease, Status: domain.GoalStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateGoal(ctx, goal))
	require.True(t, goal.ApplyProgress(100, now.Add(time.Minute)))
	require.NoError(t, repo.UpdateGoal(ctx, goal))

	stored, err := repo.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GoalStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	ids, err := repo.ListUserIDsWithOpenGoals(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, ids)

	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "u1", Email: "one@fit.test", Username: "one_100%"}))
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "u2", Email: "two@fit.test", Username: "two"}))
	users, err := repo.SearchUsers(ctx, "100%", "", 20)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, repo.CreateFriend(ctx, domain.Friend{ID: uuid.NewString(), UserID: "u1", FriendID: "u2", Status: "accepted", CreatedAt: now}))
	require.NoError(t, repo.CreateFriend(ctx, domain.Friend{ID: uuid.NewString(), UserID: "u2", FriendID: "u1", Status: "accepted", CreatedAt: now}))
	removed, err := repo.DeleteFriendship(ctx, "u2", "u1")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	require.NoError(t, repo.CreateCircle(ctx, domain.Circle{ID: "c1", Name: "Crew", OwnerID: "u1", MemberIDs: []string{"u2"}, CreatedAt: now}))
	require.NoError(t, repo.CreateCircleMessage(ctx, domain.CircleMessage{ID: "m1", CircleID: "c1", SenderID: "u1", BurnAfterRead: true, ReadBy: []string{"u2"}, CreatedAt: now}))
	burn, err := repo.ListBurnMessages(ctx)
	require.NoError(t, err)
	require.Len(t, burn, 1)
	require.Equal(t, []string{"u2"}, burn[0].ReadBy)
	require.True(t, burn[0].ExpiresAt.IsZero())

	deleted, err := repo.DeleteCircleMessages(ctx, []string{"m1", "missing"})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
}

func runMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	path := resolvePath(t, "../../../db/postgres/migrations/0001_init.up.sql")
	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
