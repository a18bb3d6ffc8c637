package repository

import (
	"context"
	"testing"
	"time"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArticles(t *testing.T, repo ArticleRepository) {
	t.Helper()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i, a := range []models.Article{
		{ID: "a-1", Slug: "go-generics", Title: "Understanding Go Generics", Excerpt: "Type parameters in practice", Category: "Programming", Tags: models.StringList{"go"}},
		{ID: "a-2", Slug: "llm-eval", Title: "Evaluating Language Models", Excerpt: "Benchmarks and beyond", Category: "AI", Tags: models.StringList{"ml"}},
		{ID: "a-3", Slug: "go-profiling", Title: "Profiling Go Services", Excerpt: "pprof from scratch", Category: "Programming", Tags: models.StringList{"go", "perf"}},
	} {
		a.Content = "body"
		a.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, &a))
	}
}

func TestArticleGetBySlug(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t), nil)
	seedArticles(t, repo)

	a, err := repo.GetBySlug(context.Background(), "go-generics")
	require.NoError(t, err)
	assert.Equal(t, "Understanding Go Generics", a.Title)
	assert.Equal(t, models.StringList{"go"}, a.Tags)

	_, err = repo.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestArticleListFilters(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t), nil)
	seedArticles(t, repo)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		all, err := repo.List(ctx, ArticleFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "go-profiling", all[0].Slug)
	})

	t.Run("search matches title case-insensitively", func(t *testing.T) {
		got, err := repo.List(ctx, ArticleFilter{Search: "GENERICS"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "go-generics", got[0].Slug)
	})

	t.Run("search matches excerpt", func(t *testing.T) {
		got, err := repo.List(ctx, ArticleFilter{Search: "pprof"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "go-profiling", got[0].Slug)
	})

	t.Run("category filter", func(t *testing.T) {
		got, err := repo.List(ctx, ArticleFilter{Category: "AI"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "llm-eval", got[0].Slug)
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := repo.List(ctx, ArticleFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "llm-eval", got[0].Slug)
	})
}

func TestArticleListRelated(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t), nil)
	seedArticles(t, repo)

	related, err := repo.ListRelated(context.Background(), "Programming", "a-1", 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "go-profiling", related[0].Slug)
}

func TestArticleIncrementViews(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t), nil)
	seedArticles(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.IncrementViews(ctx, "a-1"))
	require.NoError(t, repo.IncrementViews(ctx, "a-1"))

	a, err := repo.GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.Views)
}

func TestArticleCategories(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t), nil)
	seedArticles(t, repo)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)

	// Name-sorted with per-category counts.
	assert.Equal(t, "AI", categories[0].Name)
	assert.Equal(t, 1, categories[0].Count)
	assert.Equal(t, "Programming", categories[1].Name)
	assert.Equal(t, 2, categories[1].Count)
	assert.NotEmpty(t, categories[0].Description)
}
