package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListGroups handles GET /api/groups
func (s *Server) ListGroups(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(groups)
}

// ListGroupPosts handles GET /api/groups/:slug/posts?page=
func (s *Server) ListGroupPosts(c *fiber.Ctx) error {
	listing, err := s.feedService.ListByGroup(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	s.resolveImages(listing.Page.Items...)
	return c.JSON(listing)
}
