package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

func TestListWorkoutsPage(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateWorkout(ctx, domain.Workout{
			ID:         string(rune('a' + i)),
			UserID:     "user-1",
			Discipline: domain.DisciplineRunning,
			Date:       base.Add(time.Duration(i/2) * time.Hour),
		}))
	}
	require.NoError(t, repo.CreateWorkout(ctx, domain.Workout{ID: "other", UserID: "user-2", Date: base}))

	var ids []string
	var cursor *domain.Cursor
	for pages := 0; pages < 10; pages++ {
		page, next, err := repo.ListWorkoutsPage(ctx, "user-1", cursor, 2)
		require.NoError(t, err)
		for _, w := range page {
			ids = append(ids, w.ID)
		}
		if next == nil {
			break
		}
		cursor = next
	}
	require.Equal(t, []string{"e", "d", "c", "b", "a"}, ids)
}

func TestDeleteFriendshipRemovesBothDirections(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.CreateFriend(ctx, domain.Friend{UserID: "a", FriendID: "b", Status: "accepted"}))
	require.NoError(t, repo.CreateFriend(ctx, domain.Friend{UserID: "b", FriendID: "a", Status: "accepted"}))
	require.NoError(t, repo.CreateFriend(ctx, domain.Friend{UserID: "a", FriendID: "c", Status: "accepted"}))

	removed, err := repo.DeleteFriendship(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	friends, err := repo.ListFriends(ctx, "a")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, "c", friends[0].FriendID)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "me", Email: "me@fit.test", Username: "alexrun"}))
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "u1", Email: "alex@fit.test", Username: "lifter"}))
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "u2", FullName: "Sam Alexander", Username: "sam"}))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateUser(ctx, domain.User{Email: fmt.Sprintf("filler%d@fit.test", i), Username: fmt.Sprintf("filler%d", i)}))
	}

	users, err := repo.SearchUsers(ctx, "ALEX", "me", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "lifter", users[0].Username)
	require.Equal(t, "sam", users[1].Username)

	users, err = repo.SearchUsers(ctx, "alex", "me", 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestGetReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	w, err := repo.GetWorkout(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, w)

	g, err := repo.GetGoal(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, g)

	require.ErrorIs(t, repo.UpdateGoal(ctx, domain.Goal{ID: "missing"}), domain.ErrNotFound)
}
