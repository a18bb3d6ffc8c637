package server

import (
	"chronicle/internal/repository"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticles handles GET /api/articles. Supports search, category, and
// pagination query parameters; backs the news feed and category pages.
func (s *Server) GetArticles(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	articles, err := s.articleService.List(c.UserContext(), repository.ArticleFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    pagination.Limit,
		Offset:   pagination.Offset,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"articles": articles,
		"limit":    pagination.Limit,
		"offset":   pagination.Offset,
	})
}

// GetArticle handles GET /api/articles/:slug. The response carries the
// rendered HTML body alongside the raw markdown, plus related articles.
func (s *Server) GetArticle(c *fiber.Ctx) error {
	view, err := s.articleService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}

	related, err := s.articleService.Related(c.UserContext(), &view.Article, service.DefaultRelatedCount)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"article": view,
		"related": related,
	})
}

// GetCategories handles GET /api/articles/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.articleService.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}
