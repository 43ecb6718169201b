package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"yatube/internal/media"
	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooBig  = "The uploaded image is too large."
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondError writes err with the status its code maps to. Anything that
// is not a client error is logged and reported without its cause.
func respondError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		if models.ErrorCode(err) != models.CodeInternal {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// resolveImages fills ImageURL on every post that carries an image.
func (s *Server) resolveImages(posts ...*models.Post) {
	for _, p := range posts {
		if p != nil && p.Image != "" {
			p.ImageURL = s.media.URL(p.Image)
		}
	}
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// postRequest is the body of post create and edit, as JSON or form fields.
type postRequest struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

func parsePostRequest(c *fiber.Ctx) (postRequest, error) {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return req, models.NewValidationError("Invalid request body")
	}
	return req, nil
}

// saveUpload stores the multipart "image" file, if any, and returns its
// media reference. Requests without a file return "".
func (s *Server) saveUpload(c *fiber.Ctx) (string, error) {
	if !isMultipart(c) {
		return "", nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return "", models.NewValidationError("Invalid multipart body")
	}
	files := form.File["image"]
	if len(files) == 0 {
		return "", nil
	}
	file := files[0]

	src, err := file.Open()
	if err != nil {
		return "", models.NewFieldValidationError("image", msgInvalidImage)
	}
	defer func() { _ = src.Close() }()

	ref, err := s.media.Save(c.UserContext(), file.Filename, src)
	switch {
	case errors.Is(err, media.ErrNotImage):
		return "", models.NewFieldValidationError("image", msgInvalidImage)
	case errors.Is(err, media.ErrTooLarge):
		return "", models.NewFieldValidationError("image", msgImageTooBig)
	case err != nil:
		return "", models.NewInternalError(err)
	}
	return ref, nil
}

// discardUpload removes an image saved for a mutation that then failed.
func (s *Server) discardUpload(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to discard upload",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}
