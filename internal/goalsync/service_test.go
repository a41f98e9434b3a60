package goalsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/persistence/memory"
)

func seedConsistency(t *testing.T, repo *memory.Repository, userID string, sessions int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateGoal(ctx, domain.Goal{
		ID:          "goal-" + userID,
		UserID:      userID,
		Title:       "Train 5 times",
		Discipline:  domain.DisciplineConsistency,
		TargetValue: 5,
		Status:      domain.GoalStatusActive,
		CreatedAt:   now.AddDate(0, 0, -10),
	}))
	for i := 0; i < sessions; i++ {
		require.NoError(t, repo.CreateWorkout(ctx, domain.Workout{
			UserID:     userID,
			Discipline: domain.DisciplineRunning,
			Date:       now.AddDate(0, 0, -(i + 1)),
		}))
	}
}

func newTestService(store Store) *Service {
	s := NewService(store)
	s.now = func() time.Time { return now }
	return s
}

func TestSyncUserPersistsUpdates(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedConsistency(t, repo, "alice", 3)

	res, err := newTestService(repo).SyncUser(ctx, "alice", TriggerRequest)
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Len(t, res.Goals, 1)
	require.Equal(t, 3.0, res.Goals[0].CurrentValue)

	stored, err := repo.GetGoal(ctx, "goal-alice")
	require.NoError(t, err)
	require.Equal(t, 3.0, stored.CurrentValue)
	require.Equal(t, domain.GoalStatusActive, stored.Status)

	again, err := newTestService(repo).SyncUser(ctx, "alice", TriggerRequest)
	require.NoError(t, err)
	require.Zero(t, again.Updated)
}

func TestSyncUserWithoutGoals(t *testing.T) {
	res, err := newTestService(memory.NewRepository()).SyncUser(context.Background(), "nobody", TriggerRequest)
	require.NoError(t, err)
	require.Zero(t, res.Updated)
	require.NotNil(t, res.Goals)
	require.Empty(t, res.Goals)
}

func TestSyncAllContinuesPastFailingUsers(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedConsistency(t, repo, "alice", 5)
	seedConsistency(t, repo, "bob", 2)
	seedConsistency(t, repo, "carol", 1)

	store := &failingStore{Repository: repo, failFor: "bob"}
	updated, err := newTestService(store).SyncAll(ctx)
	require.Error(t, err)
	require.ErrorContains(t, err, "user bob")
	require.Equal(t, 2, updated)

	alice, err := repo.GetGoal(ctx, "goal-alice")
	require.NoError(t, err)
	require.Equal(t, domain.GoalStatusCompleted, alice.Status)

	bob, err := repo.GetGoal(ctx, "goal-bob")
	require.NoError(t, err)
	require.Zero(t, bob.CurrentValue)
}

type failingStore struct {
	*memory.Repository
	failFor string
}

func (s *failingStore) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	if userID == s.failFor {
		return nil, errors.New("connection reset")
	}
	return s.Repository.ListGoals(ctx, userID)
}
