package server

import (
	"fmt"
	"net/http"
	"testing"

	"chronicle/internal/featureflags"
	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentEndpoint(t *testing.T) {
	s, app := newTestServer(t)
	createTestUser(t, s, "2", "Jane Smith", "jane@example.com", "password")
	article := createTestArticle(t, s, "go-generics", "Understanding Go Generics", "Programming")
	commentsPath := fmt.Sprintf("/api/articles/%s/comments", article.ID)

	t.Run("anonymous caller is prompted to log in", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, commentsPath, "", map[string]string{
			"content": "Great article!",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeUnauthenticated, body["code"])
		assert.Equal(t, "You must be logged in to do that", body["error"])
	})

	token := loginToken(t, app, "jane@example.com", "password")

	t.Run("single character content is rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, commentsPath, token, map[string]string{
			"content": "x",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	t.Run("author fields come from the session, not the body", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, commentsPath, token, map[string]any{
			"content":       "Great article!",
			"author_name":   "Forged Name",
			"author_id":     "999",
			"author_avatar": "https://evil.example/x.png",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		comment := body["comment"].(map[string]any)
		assert.Equal(t, "2", comment["author_id"])
		assert.Equal(t, "Jane Smith", comment["author_name"])
		assert.Equal(t, "Great article!", comment["content"])
	})

	t.Run("unknown article is 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/articles/no-such-id/comments", token, map[string]string{
			"content": "hello there",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListCommentsEndpoint(t *testing.T) {
	s, app := newTestServer(t)
	createTestUser(t, s, "2", "Jane Smith", "jane@example.com", "password")
	article := createTestArticle(t, s, "go-generics", "Understanding Go Generics", "Programming")
	commentsPath := fmt.Sprintf("/api/articles/%s/comments", article.ID)
	token := loginToken(t, app, "jane@example.com", "password")

	t.Run("no comments is an empty array", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		comments, ok := body["comments"].([]any)
		require.True(t, ok, "comments must serialize as an array")
		assert.Empty(t, comments)
	})

	t.Run("comments come back in insertion order", func(t *testing.T) {
		for _, content := range []string{"first!", "second thoughts", "third time lucky"} {
			resp, _ := doJSON(t, app, http.MethodPost, commentsPath, token, map[string]string{
				"content": content,
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}

		_, body := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		comments := body["comments"].([]any)
		require.Len(t, comments, 3)
		assert.Equal(t, "first!", comments[0].(map[string]any)["content"])
		assert.Equal(t, "second thoughts", comments[1].(map[string]any)["content"])
		assert.Equal(t, "third time lucky", comments[2].(map[string]any)["content"])
	})

	t.Run("threading metadata is gated by the feature flag", func(t *testing.T) {
		_, body := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		assert.Equal(t, false, body["threading"])
	})
}

func TestCommentThreadingRollout(t *testing.T) {
	s, app := newTestServer(t)
	s.featureFlags = featureflags.NewManager("comment_threading=100%")
	createTestUser(t, s, "2", "Jane Smith", "jane@example.com", "password")
	article := createTestArticle(t, s, "go-generics", "Understanding Go Generics", "Programming")
	commentsPath := fmt.Sprintf("/api/articles/%s/comments", article.ID)
	token := loginToken(t, app, "jane@example.com", "password")

	_, first := doJSON(t, app, http.MethodPost, commentsPath, token, map[string]string{
		"content": "first!",
	})
	firstID := first["comment"].(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, http.MethodPost, commentsPath, token, map[string]any{
		"content":   "replying to the first",
		"parent_id": firstID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("rolled-out caller sees grouping metadata on reads", func(t *testing.T) {
		_, body := doJSON(t, app, http.MethodGet, commentsPath, token, nil)
		assert.Equal(t, true, body["threading"])

		comments := body["comments"].([]any)
		require.Len(t, comments, 2)
		assert.Equal(t, firstID, comments[1].(map[string]any)["parent_id"])
	})

	t.Run("anonymous readers get the flat view", func(t *testing.T) {
		_, body := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		assert.Equal(t, false, body["threading"])

		comments := body["comments"].([]any)
		require.Len(t, comments, 2)
		_, exposed := comments[1].(map[string]any)["parent_id"]
		assert.False(t, exposed)
	})
}

func TestDeleteCommentEndpoint(t *testing.T) {
	s, app := newTestServer(t)
	createTestUser(t, s, "1", "John Doe", "john@example.com", "password")
	createTestUser(t, s, "2", "Jane Smith", "jane@example.com", "password")
	article := createTestArticle(t, s, "go-generics", "Understanding Go Generics", "Programming")
	commentsPath := fmt.Sprintf("/api/articles/%s/comments", article.ID)

	janeToken := loginToken(t, app, "jane@example.com", "password")
	johnToken := loginToken(t, app, "john@example.com", "password")

	_, created := doJSON(t, app, http.MethodPost, commentsPath, janeToken, map[string]string{
		"content": "Great article!",
	})
	commentID := created["comment"].(map[string]any)["id"].(string)
	deletePath := "/api/comments/" + commentID

	t.Run("requires authentication", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, deletePath+"?confirm=true", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refuses without confirmation", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodDelete, deletePath, janeToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body["code"])

		// The comment is still there.
		_, listing := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		assert.Len(t, listing["comments"].([]any), 1)
	})

	t.Run("only the author may delete", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodDelete, deletePath+"?confirm=true", johnToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeUnauthorized, body["code"])
	})

	t.Run("author with confirmation deletes", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, deletePath+"?confirm=true", janeToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, listing := doJSON(t, app, http.MethodGet, commentsPath, "", nil)
		assert.Empty(t, listing["comments"].([]any))
	})
}
