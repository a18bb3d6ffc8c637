package server

import (
	"chronicle/internal/featureflags"
	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/articles/:id/comments. Comments come back in
// insertion order; parent_id grouping metadata is only exposed when the
// comment_threading flag is on for the caller.
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	userID := ""
	if user := currentUser(c); user != nil {
		userID = user.ID
	}
	threading := s.featureFlags.Enabled(featureflags.FlagCommentThreading, userID)
	if !threading {
		for i := range comments {
			comments[i].ParentID = nil
		}
	}

	return c.JSON(fiber.Map{
		"comments":  comments,
		"threading": threading,
	})
}

// CreateComment handles POST /api/articles/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	user := currentUser(c)
	parentID := req.ParentID
	if user != nil && !s.featureFlags.Enabled(featureflags.FlagCommentThreading, user.ID) {
		parentID = nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		ArticleID: c.Params("id"),
		Author:    user,
		Content:   req.Content,
		ParentID:  parentID,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comment": comment,
	})
}

// DeleteComment handles DELETE /api/comments/:id. The confirm=true query
// parameter stands in for the client's confirmation dialog; without it no
// delete is issued.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		CommentID: c.Params("id"),
		Caller:    currentUser(c),
		Confirmed: c.QueryBool("confirm"),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
