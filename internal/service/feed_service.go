// Package service holds the listing, relationship and mutation logic. Every
// method takes the viewer explicitly; a viewer ID of 0 is anonymous.
package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostPage is one page of posts in listing order.
type PostPage = pagination.Page[*models.Post]

// GroupListing is a group with one page of its posts.
type GroupListing struct {
	Group *models.Group `json:"group"`
	Page  PostPage      `json:"page"`
}

// ProfileListing is an author with one page of their posts.
type ProfileListing struct {
	Author *models.User `json:"author"`
	// FullName is the author's display name, the username when unset.
	FullName  string `json:"full_name"`
	PostCount int64  `json:"post_count"`
	// Following reports whether the viewer follows Author.
	Following bool     `json:"following"`
	Page      PostPage `json:"page"`
}

// PostDetail is a single post with its comments, oldest first.
type PostDetail struct {
	Post            *models.Post      `json:"post"`
	Comments        []*models.Comment `json:"comments"`
	AuthorPostCount int64             `json:"author_post_count"`
}

// FeedService serves every post listing.
type FeedService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	commentRepo repository.CommentRepository
	pageSize    int
}

func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	commentRepo repository.CommentRepository,
	pageSize int,
) *FeedService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &FeedService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		followRepo:  followRepo,
		commentRepo: commentRepo,
		pageSize:    pageSize,
	}
}

// PageSize returns the configured number of posts per page.
func (s *FeedService) PageSize() int {
	return s.pageSize
}

func (s *FeedService) listPage(ctx context.Context, op string, filter repository.PostFilter, page string) (_ PostPage, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", op, attribute.String("page", page))
	defer func() { observability.EndSpan(span, err) }()

	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return PostPage{}, err
	}
	meta := pagination.NewMeta(total, s.pageSize, page)
	if total == 0 {
		return pagination.NewPage[*models.Post](meta, nil), nil
	}

	posts, err := s.postRepo.List(ctx, filter, meta.Limit(), meta.Offset())
	if err != nil {
		return PostPage{}, err
	}
	return pagination.NewPage(meta, posts), nil
}

// ListAll returns a page of every post.
func (s *FeedService) ListAll(ctx context.Context, page string) (PostPage, error) {
	return s.listPage(ctx, "ListAll", repository.PostFilter{}, page)
}

// ListByGroup returns the group named by slug and a page of its posts.
func (s *FeedService) ListByGroup(ctx context.Context, slug, page string) (*GroupListing, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	posts, err := s.listPage(ctx, "ListByGroup", repository.PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, err
	}
	return &GroupListing{Group: group, Page: posts}, nil
}

// ListByAuthor returns the author's profile listing as seen by viewerID.
func (s *FeedService) ListByAuthor(ctx context.Context, username string, viewerID uint, page string) (*ProfileListing, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.listPage(ctx, "ListByAuthor", repository.PostFilter{AuthorID: &author.ID}, page)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 {
		following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileListing{
		Author:    author,
		FullName:  author.FullName(),
		PostCount: posts.Total,
		Following: following,
		Page:      posts,
	}, nil
}

// ListFollowedFeed returns a page of posts by authors viewerID follows.
func (s *FeedService) ListFollowedFeed(ctx context.Context, viewerID uint, page string) (PostPage, error) {
	if viewerID == 0 {
		return PostPage{}, models.NewUnauthorizedError("Log in to see your feed")
	}
	return s.listPage(ctx, "ListFollowedFeed", repository.PostFilter{FollowedBy: viewerID}, page)
}

// GetPostDetail returns a post, its comments and its author's post count.
func (s *FeedService) GetPostDetail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.Count(ctx, repository.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}
