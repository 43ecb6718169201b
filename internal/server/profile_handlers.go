package server

import (
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// FollowResponse is returned by follow and unfollow.
type FollowResponse struct {
	Author    *models.User `json:"author"`
	Following bool         `json:"following"`
	// Created is true only when this request wrote a new follow edge.
	Created bool `json:"created"`
}

// GetProfile handles GET /api/profiles/:username?page=
func (s *Server) GetProfile(c *fiber.Ctx) error {
	listing, err := s.feedService.ListByAuthor(c.UserContext(), c.Params("username"), middleware.ViewerID(c), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	s.resolveImages(listing.Page.Items...)
	return c.JSON(listing)
}

// ListFollowedFeed handles GET /api/follow?page=
func (s *Server) ListFollowedFeed(c *fiber.Ctx) error {
	page, err := s.feedService.ListFollowedFeed(c.UserContext(), middleware.ViewerID(c), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	s.resolveImages(page.Items...)
	return c.JSON(page)
}

// Follow handles POST /api/profiles/:username/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.ViewerID(c)

	author, created, err := s.followService.Follow(ctx, userID, c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	if created {
		s.notifier.Notify(ctx, author.ID, notifications.Event{
			Type:     notifications.EventNewFollower,
			ActorID:  userID,
			AuthorID: author.ID,
		})
	}

	return c.JSON(FollowResponse{
		Author:    author,
		Following: author.ID != userID,
		Created:   created,
	})
}

// Unfollow handles DELETE /api/profiles/:username/follow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), middleware.ViewerID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(FollowResponse{Author: author})
}
