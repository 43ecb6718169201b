// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/models"
	"yatube/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

const usernameAttempts = 5

// Factory builds domain entities with fake content and persists them
// through the repositories.
type Factory struct {
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	now      func() time.Time
	// maxAge bounds how far back generated pub dates go.
	maxAge time.Duration
}

// NewFactory creates a Factory bound to db. A zero seed picks one from the clock.
func NewFactory(db *gorm.DB, seed int64, maxDays int) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		faker:    gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		now:      time.Now,
		maxAge:   time.Duration(maxDays) * 24 * time.Hour,
	}
}

// CreateUser persists a user with a generated, unique username.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		user := &models.User{
			Username:  fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
			FirstName: f.faker.FirstName(),
			LastName:  f.faker.LastName(),
		}
		for _, override := range overrides {
			override(user)
		}

		err := f.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !models.IsValidation(err) || len(overrides) > 0 {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free username after %d attempts: %w", usernameAttempts, lastErr)
}

// CreatePost persists a post by author dated somewhere in the last maxAge.
// A nil group leaves the post ungrouped.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, group *models.Group) (*models.Post, error) {
	back := time.Duration(f.faker.Number(0, int(f.maxAge/time.Minute))) * time.Minute
	post := &models.Post{
		Text:     f.faker.Paragraph(1, f.faker.Number(1, 4), 12, " "),
		PubDate:  f.now().UTC().Add(-back),
		AuthorID: author.ID,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a short comment by author on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	created := post.PubDate.Add(time.Duration(f.faker.Number(1, 720)) * time.Minute)
	if now := f.now().UTC(); created.After(now) {
		created = now
	}
	comment := &models.Comment{
		Text:     f.faker.Sentence(f.faker.Number(3, 15)),
		AuthorID: author.ID,
		PostID:   post.ID,
		Created:  created,
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Follow makes user follow author and reports whether a new edge was written.
func (f *Factory) Follow(ctx context.Context, user, author *models.User) (bool, error) {
	if user.ID == author.ID {
		return false, nil
	}
	return f.follows.Create(ctx, user.ID, author.ID)
}

// pick returns a pseudo-random index below n.
func (f *Factory) pick(n int) int {
	return f.faker.Number(0, n-1)
}
