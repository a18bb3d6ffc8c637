package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chronicle/internal/middleware"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/session"
	"chronicle/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "chronicle-api"
	tokenAudience = "chronicle-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, models.NewValidationError("Name, email, and password are required"))
	}
	if err := validation.ValidateName(req.Name); err != nil {
		return fail(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return fail(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return fail(c, models.NewValidationError(err.Error()))
	}

	sid := session.NewSessionID()
	store := s.sessions.Store(c.UserContext(), sid)

	user, err := store.Signup(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		s.sessions.Drop(sid)
		observability.SessionOperations.WithLabelValues("signup", "error").Inc()
		return fail(c, err)
	}
	observability.SessionOperations.WithLabelValues("signup", "ok").Inc()

	token, err := s.generateToken(sid, user.ID)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, models.NewValidationError("Email and password are required"))
	}

	sid := session.NewSessionID()
	store := s.sessions.Store(c.UserContext(), sid)

	user, err := store.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		s.sessions.Drop(sid)
		observability.SessionOperations.WithLabelValues("login", "error").Inc()
		return fail(c, err)
	}
	observability.SessionOperations.WithLabelValues("login", "ok").Inc()

	token, err := s.generateToken(sid, user.ID)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// OAuth handles POST /api/auth/oauth/:provider. The request blocks for the
// duration of the mock external handshake; a client that disconnects midway
// cancels the flow.
func (s *Server) OAuth(c *fiber.Ctx) error {
	provider := c.Params("provider")

	sid := session.NewSessionID()
	store := s.sessions.Store(c.UserContext(), sid)

	user, err := store.SignupWithProvider(c.Context(), provider)
	if err != nil {
		s.sessions.Drop(sid)
		observability.SessionOperations.WithLabelValues("oauth", "error").Inc()
		return fail(c, err)
	}
	observability.SessionOperations.WithLabelValues("oauth", "ok").Inc()

	token, err := s.generateToken(sid, user.ID)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. It succeeds whether or not the
// caller still has a live session.
func (s *Server) Logout(c *fiber.Ctx) error {
	sid, ok := s.tokenSessionID(c)
	if !ok {
		return c.JSON(fiber.Map{"message": "Logged out"})
	}

	store := s.sessions.Store(c.UserContext(), sid)
	if err := store.Logout(c.UserContext()); err != nil {
		return fail(c, err)
	}
	observability.SessionOperations.WithLabelValues("logout", "ok").Inc()

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user": currentUser(c),
	})
}

// UpdateMe handles PUT /api/auth/me
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var patch session.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if patch.Name != nil {
		if err := validation.ValidateName(*patch.Name); err != nil {
			return fail(c, models.NewValidationError(err.Error()))
		}
	}

	store := s.sessions.Store(c.UserContext(), sessionID(c))
	user, err := store.UpdateUser(c.UserContext(), patch)
	if err != nil {
		return fail(c, err)
	}
	if user == nil {
		return fail(c, models.NewUnauthenticatedError())
	}

	return c.JSON(fiber.Map{"user": user})
}

// generateToken creates a JWT binding the session id to subsequent requests.
func (s *Server) generateToken(sid, userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sid,
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// tokenSessionID extracts and validates the sid claim from the Authorization
// header without enforcing an authenticated session.
func (s *Server) tokenSessionID(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return "", false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return "", false
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", false
	}
	return sid, true
}

// AuthRequired returns middleware that resolves the token's session and
// rejects requests without a current user.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, ok := s.tokenSessionID(c)
		if !ok {
			return fail(c, models.NewUnauthenticatedError())
		}

		store := s.sessions.Store(c.UserContext(), sid)
		user := store.Current()
		if user == nil {
			// Anonymous stores have nothing worth keeping in memory.
			s.sessions.Drop(sid)
			return fail(c, models.NewUnauthenticatedError())
		}

		bindSessionUser(c, sid, user)
		return c.Next()
	}
}

// OptionalAuth resolves the token's session when a valid token is presented
// but never rejects the request. Anonymous callers pass through with no user
// in scope.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, ok := s.tokenSessionID(c)
		if !ok {
			return c.Next()
		}

		store := s.sessions.Store(c.UserContext(), sid)
		user := store.Current()
		if user == nil {
			s.sessions.Drop(sid)
			return c.Next()
		}

		bindSessionUser(c, sid, user)
		return c.Next()
	}
}

// bindSessionUser exposes the resolved session to handlers via locals and
// syncs the ids into the request context for logging and downstream services.
func bindSessionUser(c *fiber.Ctx, sid string, user *models.User) {
	c.Locals("sessionID", sid)
	c.Locals("userID", user.ID)
	c.Locals("user", user)

	ctx := context.WithValue(c.UserContext(), middleware.SessionIDKey, sid)
	ctx = context.WithValue(ctx, middleware.UserIDKey, user.ID)
	c.SetUserContext(ctx)
}
