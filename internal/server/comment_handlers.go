package server

import (
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /api/posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.ViewerID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(ctx, service.AddCommentInput{
		AuthorID: userID,
		PostID:   postID,
		Text:     req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	if authorID := comment.Post.AuthorID; authorID != userID {
		s.notifier.Notify(ctx, authorID, notifications.Event{
			Type:      notifications.EventCommentAdded,
			ActorID:   userID,
			PostID:    postID,
			CommentID: comment.ID,
		})
	}

	// The post is already known to the caller.
	comment.Post = nil
	return c.Status(fiber.StatusCreated).JSON(comment)
}
