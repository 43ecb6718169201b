package service

import (
	"context"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

const (
	msgRequired     = "This field is required."
	msgInvalidGroup = "Select a valid group."
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	now       func() time.Time
}

type CreatePostInput struct {
	AuthorID  uint
	Text      string
	GroupSlug string
	// Image is a media store reference; empty means no image.
	Image string
}

type EditPostInput struct {
	EditorID  uint
	PostID    uint
	Text      string
	GroupSlug string
	// Image replaces the current image when non-empty.
	Image string
}

func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		now:       time.Now,
	}
}

// cleanText trims text and rejects it when nothing is left.
func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewFieldValidationError("text", msgRequired)
	}
	return text, nil
}

// resolveGroup maps an optional slug to a group ID. An unknown slug is a
// validation error on the group field.
func (s *PostService) resolveGroup(ctx context.Context, slug string) (*uint, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewFieldValidationError("group", msgInvalidGroup)
		}
		return nil, err
	}
	return &group.ID, nil
}

// CreatePost publishes a post authored by the caller, dated now.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Log in to create posts")
	}
	text, err := cleanText(in.Text)
	if err != nil {
		return nil, err
	}
	groupID, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		PubDate:  s.now().UTC(),
		AuthorID: in.AuthorID,
		GroupID:  groupID,
		Image:    in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsCreated.Inc()
	return post, nil
}

// EditPost rewrites the text, group and image of a post the editor wrote.
// The publication date and author never change.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post", "EditPost")
	defer func() { observability.EndSpan(span, err) }()

	if in.EditorID == 0 {
		return nil, models.NewUnauthorizedError("Log in to edit posts")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.EditorID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	text, err := cleanText(in.Text)
	if err != nil {
		return nil, err
	}
	groupID, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = groupID
	if in.Image != "" {
		post.Image = in.Image
	}
	if err := s.postRepo.UpdateContent(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
