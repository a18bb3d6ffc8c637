package service

import (
	"context"

	"chronicle/internal/markdown"
	"chronicle/internal/middleware"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/repository"
)

// DefaultRelatedCount is how many related articles a detail page shows.
const DefaultRelatedCount = 3

type ArticleService struct {
	articleRepo repository.ArticleRepository
	renderer    *markdown.Renderer
}

// ArticleView is an article joined with its rendered HTML body.
type ArticleView struct {
	models.Article
	ContentHTML string `json:"content_html"`
}

func NewArticleService(articleRepo repository.ArticleRepository, renderer *markdown.Renderer) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		renderer:    renderer,
	}
}

// GetBySlug fetches an article, bumps its view counter, and renders the
// markdown body. The counter bump is best effort; a failed increment never
// fails the read.
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*ArticleView, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.articleRepo.IncrementViews(ctx, article.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to increment view count",
			"slug", slug, "error", err)
	} else {
		article.Views++
		observability.ArticleViews.WithLabelValues(slug).Inc()
	}

	return &ArticleView{
		Article:     *article,
		ContentHTML: s.renderer.Render(article.Content),
	}, nil
}

// List backs the news feed and category pages.
func (s *ArticleService) List(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, error) {
	articles, err := s.articleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, nil
}

// Related returns up to n articles from the same category, newest first,
// excluding the article itself.
func (s *ArticleService) Related(ctx context.Context, article *models.Article, n int) ([]models.Article, error) {
	if n <= 0 {
		n = DefaultRelatedCount
	}
	related, err := s.articleRepo.ListRelated(ctx, article.Category, article.ID, n)
	if err != nil {
		return nil, err
	}
	if related == nil {
		related = []models.Article{}
	}
	return related, nil
}

// ListCategories returns the distinct categories with counts, name-sorted.
func (s *ArticleService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.articleRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}
