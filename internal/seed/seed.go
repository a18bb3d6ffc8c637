// Package seed provides database seeding utilities for development and testing.
package seed

import (
	_ "embed"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"chronicle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed presets/articles.yml
var articlePresets []byte

// Options configuration for the seeder
type Options struct {
	CommentsPerArticle int
	ShouldClean        bool
}

// knownAccount is a fixed demo identity with a well-known password.
type knownAccount struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     models.Role
	Avatar   string
}

// The demo credential set. These accounts are what the login form accepts
// out of the box in development.
var knownAccounts = []knownAccount{
	{ID: "1", Name: "John Doe", Email: "john@example.com", Password: "password", Role: models.RoleAdmin, Avatar: "https://i.pravatar.cc/150?u=john"},
	{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Password: "password", Role: models.RoleAuthor, Avatar: "https://i.pravatar.cc/150?u=jane"},
	{ID: "3", Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: models.RoleAdmin, Avatar: "https://i.pravatar.cc/150?u=admin"},
}

type articlePreset struct {
	Slug     string   `yaml:"slug"`
	Title    string   `yaml:"title"`
	Excerpt  string   `yaml:"excerpt"`
	Category string   `yaml:"category"`
	Author   string   `yaml:"author"`
	Tags     []string `yaml:"tags"`
	Content  string   `yaml:"content"`
}

type presetFile struct {
	Articles []articlePreset `yaml:"articles"`
}

// Seed populates the database with the demo credential set, preset articles,
// and generated comments.
func Seed(db *gorm.DB, opts Options) error {
	log.Println("🌱 Seeding demo data...")
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway")
		}
	}

	users, err := seedKnownAccounts(db)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	log.Printf("✓ %d demo accounts available", len(users))

	articles, err := seedArticles(db, users)
	if err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}
	log.Printf("✓ %d articles available", len(articles))

	perArticle := opts.CommentsPerArticle
	if perArticle <= 0 {
		perArticle = 4
	}
	count, err := seedComments(db, users, articles, perArticle)
	if err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}
	log.Printf("✓ %d comments created", count)

	return nil
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{&models.Comment{}, &models.Article{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedKnownAccounts(db *gorm.DB) ([]models.User, error) {
	users := make([]models.User, 0, len(knownAccounts))
	for _, acct := range knownAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		users = append(users, models.User{
			ID:       acct.ID,
			Name:     acct.Name,
			Email:    acct.Email,
			Password: string(hash),
			Role:     acct.Role,
			Avatar:   acct.Avatar,
			Bio:      gofakeit.JobTitle() + " who writes about " + strings.ToLower(gofakeit.BuzzWord()) + ".",
		})
	}

	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func seedArticles(db *gorm.DB, users []models.User) ([]models.Article, error) {
	var presets presetFile
	if err := yaml.Unmarshal(articlePresets, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse article presets: %w", err)
	}

	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}

	articles := make([]models.Article, 0, len(presets.Articles))
	for i, p := range presets.Articles {
		author, ok := byEmail[p.Author]
		if !ok {
			return nil, fmt.Errorf("article preset %q references unknown author %q", p.Slug, p.Author)
		}

		articles = append(articles, models.Article{
			ID:           uuid.New().String(),
			Slug:         p.Slug,
			Title:        p.Title,
			Excerpt:      p.Excerpt,
			Content:      p.Content,
			Category:     p.Category,
			Tags:         models.StringList(p.Tags),
			AuthorID:     author.ID,
			AuthorName:   author.Name,
			AuthorAvatar: author.Avatar,
			ReadTime:     estimateReadTime(p.Content),
			Views:        int64(rand.Intn(5000)),
			CreatedAt:    time.Now().Add(-time.Duration(i*36+rand.Intn(24)) * time.Hour),
		})
	}

	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func seedComments(db *gorm.DB, users []models.User, articles []models.Article, perArticle int) (int, error) {
	var comments []models.Comment
	for _, article := range articles {
		n := rand.Intn(perArticle + 1)
		for i := 0; i < n; i++ {
			author := users[rand.Intn(len(users))]
			comments = append(comments, models.Comment{
				ID:           uuid.New().String(),
				ArticleID:    article.ID,
				AuthorID:     author.ID,
				AuthorName:   author.Name,
				AuthorAvatar: author.Avatar,
				Content:      gofakeit.Sentence(6 + rand.Intn(14)),
				CreatedAt:    article.CreatedAt.Add(time.Duration(i+1) * time.Duration(1+rand.Intn(300)) * time.Minute),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := db.Create(&comments).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

// estimateReadTime derives the minutes badge from word count at 200 wpm.
func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// KnownAccountEmails returns the demo login emails, for health and docs output.
func KnownAccountEmails() []string {
	emails := make([]string, 0, len(knownAccounts))
	for _, acct := range knownAccounts {
		emails = append(emails, acct.Email)
	}
	return emails
}
