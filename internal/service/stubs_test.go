package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listFn          func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error)
	countFn         func(context.Context, repository.PostFilter) (int64, error)
	updateContentFn func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, f, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context, f repository.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, post *models.Post) error {
	return s.updateContentFn(ctx, post)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id, AuthorID: 1}, nil },
		listFn:          func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error) { return nil, nil },
		countFn:         func(context.Context, repository.PostFilter) (int64, error) { return 0, nil },
		updateContentFn: func(_ context.Context, _ *models.Post) error { return nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	getBySlugFn func(context.Context, string) (*models.Group, error)
}

func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) Ensure(_ context.Context, g *models.Group) (*models.Group, error) {
	return g, nil
}
func (s *groupRepoStub) List(context.Context) ([]models.Group, error) { return nil, nil }

func groupsBySlug(groups ...models.Group) *groupRepoStub {
	return &groupRepoStub{getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) {
		for i := range groups {
			if groups[i].Slug == slug {
				return &groups[i], nil
			}
		}
		return nil, models.NewNotFoundError("Group", slug)
	}}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	users map[string]*models.User
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", username)
}
func (s *userRepoStub) Create(_ context.Context, u *models.User) error {
	s.users[u.Username] = u
	return nil
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn func(context.Context, uint, uint) (bool, error)
	deleteFn func(context.Context, uint, uint) error
	existsFn func(context.Context, uint, uint) (bool, error)
}

func (s *followRepoStub) Create(ctx context.Context, u, a uint) (bool, error) { return s.createFn(ctx, u, a) }
func (s *followRepoStub) Delete(ctx context.Context, u, a uint) error         { return s.deleteFn(ctx, u, a) }
func (s *followRepoStub) Exists(ctx context.Context, u, a uint) (bool, error) { return s.existsFn(ctx, u, a) }

func failingFollowRepo(t *testing.T) *followRepoStub {
	fail := func() { t.Helper(); t.Fatal("follow repository must not be called") }
	return &followRepoStub{
		createFn: func(context.Context, uint, uint) (bool, error) { fail(); return false, nil },
		deleteFn: func(context.Context, uint, uint) error { fail(); return nil },
		existsFn: func(context.Context, uint, uint) (bool, error) { fail(); return false, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

// stack is every service wired to one sqlite database.
type stack struct {
	db       *gorm.DB
	feed     *FeedService
	follows  *FollowService
	posts    *PostService
	comments *CommentService
}

func newStack(t *testing.T, pageSize int) *stack {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &stack{
		db:       db,
		feed:     NewFeedService(postRepo, groupRepo, userRepo, followRepo, commentRepo, pageSize),
		follows:  NewFollowService(userRepo, followRepo),
		posts:    NewPostService(postRepo, groupRepo),
		comments: NewCommentService(commentRepo, postRepo),
	}
}

// fixedClock returns a clock that advances one second per call from start.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}
