package server

import (
	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/notifications"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts?page=
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := c.Query("page")

	var out service.PostPage
	fetch := func() error {
		p, err := s.feedService.ListAll(ctx, page)
		if err != nil {
			return err
		}
		out = p
		return nil
	}

	var err error
	if ttl := s.config.IndexCacheTTL(); ttl > 0 {
		err = cache.Aside(ctx, cache.IndexPageKey(ctx, page), &out, ttl, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return respondError(c, err)
	}
	s.resolveImages(out.Items...)
	return c.JSON(out)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.feedService.GetPostDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	s.resolveImages(detail.Post)
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.ViewerID(c)

	req, err := parsePostRequest(c)
	if err != nil {
		return respondError(c, err)
	}
	image, err := s.saveUpload(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID:  userID,
		Text:      req.Text,
		GroupSlug: req.Group,
		Image:     image,
	})
	if err != nil {
		s.discardUpload(ctx, image)
		return respondError(c, err)
	}

	cache.InvalidateIndex(ctx)
	s.notifier.Notify(ctx, 0, notifications.Event{
		Type:     notifications.EventPostCreated,
		ActorID:  userID,
		PostID:   post.ID,
		AuthorID: post.AuthorID,
	})

	s.resolveImages(post)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPost handles PUT /api/posts/:id
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.ViewerID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parsePostRequest(c)
	if err != nil {
		return respondError(c, err)
	}
	image, err := s.saveUpload(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.EditPost(ctx, service.EditPostInput{
		EditorID:  userID,
		PostID:    postID,
		Text:      req.Text,
		GroupSlug: req.Group,
		Image:     image,
	})
	if err != nil {
		s.discardUpload(ctx, image)
		return respondError(c, err)
	}

	cache.InvalidateIndex(ctx)
	s.resolveImages(post)
	return c.JSON(post)
}
