package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/models"
	"chronicle/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ArticleFilter narrows article listings. Zero values mean "no constraint".
type ArticleFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ArticleRepository defines read-mostly persistence operations for articles.
// The public API never creates or mutates articles beyond the view counter;
// Create exists for seeding and editorial tooling.
type ArticleRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, error)
	ListRelated(ctx context.Context, category, excludeID string, limit int) ([]models.Article, error)
	IncrementViews(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, article *models.Article) error
}

type articleRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewArticleRepository returns a new ArticleRepository implementation.
// rdb may be nil; the category listing then skips its cache.
func NewArticleRepository(db *gorm.DB, rdb *redis.Client) ArticleRepository {
	return &articleRepository{db: db, rdb: rdb}
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	defer func(start time.Time) { observability.ObserveQuery("get_by_slug", "articles", start) }(time.Now())

	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", slug)
		}
		return nil, models.NewDataAccessError(err)
	}
	return &article, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, models.NewDataAccessError(err)
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]models.Article, error) {
	defer func(start time.Time) { observability.ObserveQuery("list", "articles", start) }(time.Now())

	q := r.db.WithContext(ctx).Model(&models.Article{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(excerpt) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var articles []models.Article
	if err := q.Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, models.NewDataAccessError(err)
	}
	return articles, nil
}

func (r *articleRepository) ListRelated(ctx context.Context, category, excludeID string, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ?", category, excludeID).
		Order("created_at desc").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, models.NewDataAccessError(err)
	}
	return articles, nil
}

func (r *articleRepository) IncrementViews(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		return models.NewDataAccessError(err)
	}
	return nil
}

type categoryRow struct {
	Category string
	Count    int
}

func (r *articleRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category

	err := cache.Aside(ctx, r.rdb, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		var rows []categoryRow
		err := r.db.WithContext(ctx).
			Model(&models.Article{}).
			Select("category, count(*) as count").
			Where("category <> ''").
			Group("category").
			Order("category asc").
			Scan(&rows).Error
		if err != nil {
			return models.NewDataAccessError(err)
		}

		categories = make([]models.Category, 0, len(rows))
		for _, row := range rows {
			categories = append(categories, models.Category{
				Name:        row.Category,
				Count:       row.Count,
				Description: categoryDescription(row.Category),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewDataAccessError(err)
	}
	return nil
}

// categoryDescription returns the canned blurb shown on the categories page.
func categoryDescription(name string) string {
	descriptions := map[string]string{
		"Technology":  "The latest in software, hardware, and everything between.",
		"AI":          "Machine learning, language models, and applied intelligence.",
		"Programming": "Languages, tooling, and the craft of writing software.",
		"Security":    "Vulnerabilities, defenses, and the people behind both.",
		"Science":     "Research and discoveries explained for practitioners.",
	}
	if d, ok := descriptions[name]; ok {
		return d
	}
	return "Articles about " + strings.ToLower(name) + "."
}
