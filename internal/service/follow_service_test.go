package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFollows(t *testing.T, s *stack) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Follow{}).Count(&n).Error)
	return n
}

func TestFollowService_FollowTwiceOneEdge(t *testing.T) {
	s := newStack(t, 10)
	ctx := context.Background()
	u := testutil.CreateUser(t, s.db, "reader")
	testutil.CreateUser(t, s.db, "author")

	_, created, err := s.follows.Follow(ctx, u.ID, "author")
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = s.follows.Follow(ctx, u.ID, "author")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, int64(1), countFollows(t, s))
}

func TestFollowService_UnfollowAfterFollow(t *testing.T) {
	s := newStack(t, 10)
	ctx := context.Background()
	u := testutil.CreateUser(t, s.db, "reader")
	a := testutil.CreateUser(t, s.db, "author")

	_, _, err := s.follows.Follow(ctx, u.ID, "author")
	require.NoError(t, err)

	target, err := s.follows.Unfollow(ctx, u.ID, "author")
	require.NoError(t, err)
	assert.Equal(t, a.ID, target.ID)
	assert.Zero(t, countFollows(t, s))

	_, err = s.follows.Unfollow(ctx, u.ID, "author")
	assertCode(t, err, models.CodeNotFound)
}

func TestFollowService_UnfollowWithoutEdge(t *testing.T) {
	s := newStack(t, 10)
	u := testutil.CreateUser(t, s.db, "reader")
	testutil.CreateUser(t, s.db, "author")

	_, err := s.follows.Unfollow(context.Background(), u.ID, "author")
	assertCode(t, err, models.CodeNotFound)
}

func TestFollowService_SelfFollowIsSilentNoop(t *testing.T) {
	s := newStack(t, 10)
	u := testutil.CreateUser(t, s.db, "narcissus")

	target, created, err := s.follows.Follow(context.Background(), u.ID, "narcissus")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, target.ID)
	assert.Zero(t, countFollows(t, s))
}

func TestFollowService_Errors(t *testing.T) {
	t.Parallel()

	users := &userRepoStub{users: map[string]*models.User{"author": {ID: 2, Username: "author"}}}
	svc := NewFollowService(users, failingFollowRepo(t))
	ctx := context.Background()

	_, _, err := svc.Follow(ctx, 0, "author")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Unfollow(ctx, 0, "author")
	assertCode(t, err, models.CodeUnauthorized)

	_, _, err = svc.Follow(ctx, 1, "ghost")
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Unfollow(ctx, 1, "ghost")
	assertCode(t, err, models.CodeNotFound)

	following, err := svc.IsFollowing(ctx, 0, 2)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_IsFollowing(t *testing.T) {
	t.Parallel()

	follows := &followRepoStub{
		existsFn: func(_ context.Context, u, a uint) (bool, error) { return u == 1 && a == 2, nil },
	}
	svc := NewFollowService(&userRepoStub{}, follows)

	yes, err := svc.IsFollowing(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := svc.IsFollowing(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.False(t, no)
}
