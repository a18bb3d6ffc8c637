package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chronicle/internal/config"
	"chronicle/internal/database"
	"chronicle/internal/featureflags"
	"chronicle/internal/markdown"
	"chronicle/internal/models"
	"chronicle/internal/notifications"
	"chronicle/internal/repository"
	"chronicle/internal/service"
	"chronicle/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires a Server against in-memory SQLite and miniredis and
// registers its routes on a fresh Fiber app.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Port:            "0",
		Env:             "test",
		JWTSecret:       "test_secret",
		LoginDelayMS:    0,
		ProviderDelayMS: 10,
		OAuthRedirect:   "http://localhost:5173",
		GoogleClientID:  "test-google",
		GithubClientID:  "test-github",
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db, rdb)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        rdb,
		userRepo:     userRepo,
		articleRepo:  articleRepo,
		commentRepo:  commentRepo,
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
	}
	s.sessions = session.NewManager(
		userRepo,
		session.NewRedisSnapshotStore(rdb),
		notifications.NewRedisNotifier(rdb),
		nil,
		[]session.Provider{
			session.GoogleProvider(cfg.GoogleClientID, cfg.OAuthRedirect),
			session.GithubProvider(cfg.GithubClientID, cfg.OAuthRedirect),
		},
		session.Options{ProviderDelay: 10 * time.Millisecond},
	)
	s.articleService = service.NewArticleService(articleRepo, markdown.NewRenderer())
	s.commentService = service.NewCommentService(commentRepo, articleRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func createTestUser(t *testing.T, s *Server, id, name, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		Avatar:   "https://i.pravatar.cc/150?u=" + email,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func createTestArticle(t *testing.T, s *Server, slug, title, category string) *models.Article {
	t.Helper()
	article := &models.Article{
		ID:       uuid.New().String(),
		Slug:     slug,
		Title:    title,
		Excerpt:  "excerpt for " + title,
		Content:  "### 1.1. Opening\n\nbody text",
		Category: category,
	}
	require.NoError(t, s.db.Create(article).Error)
	return article
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

// loginToken signs in through the API and returns the issued token.
func loginToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
