// Package service contains the business logic layer between handlers and
// repositories.
package service

import (
	"context"

	"chronicle/internal/models"
	"chronicle/internal/repository"
	"chronicle/internal/validation"

	"github.com/google/uuid"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
}

type CreateCommentInput struct {
	ArticleID string
	// Author is the session's current user, nil when anonymous. Author
	// fields on the stored comment come from here, never from the request.
	Author   *models.User
	Content  string
	ParentID *string
}

type DeleteCommentInput struct {
	CommentID string
	Caller    *models.User
	// Confirmed mirrors the client's confirmation step. Without it the
	// delete is refused outright.
	Confirmed bool
}

func NewCommentService(commentRepo repository.CommentRepository, articleRepo repository.ArticleRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Author == nil {
		return nil, models.NewUnauthenticatedError()
	}
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.articleRepo.GetByID(ctx, in.ArticleID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:           uuid.New().String(),
		ArticleID:    in.ArticleID,
		AuthorID:     in.Author.ID,
		AuthorName:   in.Author.Name,
		AuthorAvatar: in.Author.Avatar,
		Content:      in.Content,
		ParentID:     in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns an article's comments in insertion order. The result
// is never nil so handlers serialize an empty array rather than null.
func (s *CommentService) ListComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	if in.Caller == nil {
		return models.NewUnauthenticatedError()
	}
	if !in.Confirmed {
		return models.NewValidationError("Deletion requires confirmation")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != in.Caller.ID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}
