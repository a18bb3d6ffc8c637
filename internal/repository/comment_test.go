package repository

import (
	"context"
	"testing"
	"time"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentListByArticleInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []models.Comment{
		{ID: "c-1", ArticleID: "42", AuthorID: "1", AuthorName: "John Doe", Content: "first"},
		{ID: "c-2", ArticleID: "42", AuthorID: "2", AuthorName: "Jane Smith", Content: "second"},
		{ID: "c-3", ArticleID: "42", AuthorID: "1", AuthorName: "John Doe", Content: "third"},
		{ID: "c-other", ArticleID: "7", AuthorID: "2", AuthorName: "Jane Smith", Content: "elsewhere"},
	} {
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &c))
	}

	comments, err := repo.ListByArticle(ctx, "42")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestCommentListByArticleEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)

	comments, err := repo.ListByArticle(context.Background(), "no-such-article")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	c := models.Comment{ID: "c-1", ArticleID: "42", AuthorID: "2", AuthorName: "Jane Smith", Content: "bye"}
	require.NoError(t, repo.Create(ctx, &c))
	require.NoError(t, repo.Delete(ctx, "c-1"))

	_, err := repo.GetByID(ctx, "c-1")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestCommentParentIDRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	parent := "c-parent"
	c := models.Comment{ID: "c-reply", ArticleID: "42", AuthorID: "2", AuthorName: "Jane Smith", Content: "reply", ParentID: &parent}
	require.NoError(t, repo.Create(ctx, &c))

	got, err := repo.GetByID(ctx, "c-reply")
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)
}
