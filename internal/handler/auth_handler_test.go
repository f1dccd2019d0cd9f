package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/devotionalai/api/internal/auth"
	"github.com/devotionalai/api/internal/config"
	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
)

func setupAuthApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	issuer := auth.NewTokenIssuer(testJWTSecret, 15*time.Minute, 24*time.Hour)
	quota := config.QuotaConfig{FreeLimit: 5, CreatorLimit: 50, ProLimit: 1000}
	authSvc := service.NewAuthService(st, issuer, quota)
	authHandler := NewAuthHandler(authSvc, validator.New())

	app := fiber.New()
	app.Post("/api/auth/register", authHandler.Register)
	app.Post("/api/auth/login", authHandler.Login)
	return app, st
}

func registerBody() fiber.Map {
	return fiber.Map{
		"email":    "a@example.com",
		"password": "correct-horse",
		"fullName": "Test User",
	}
}

func TestRegister_IssuesTokens(t *testing.T) {
	app, st := setupAuthApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", registerBody())
	assertStatus(t, resp, http.StatusCreated)

	var tokens model.TokenResponse
	parseJSON(t, resp, &tokens)
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected both tokens issued")
	}
	if tokens.TokenType != "bearer" {
		t.Errorf("tokenType = %s", tokens.TokenType)
	}

	claims, err := auth.ValidateToken(tokens.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("claims email = %s", claims.Email)
	}

	user, err := st.GetUserByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Plan != model.PlanFree || user.GenerationsLimit != 5 {
		t.Errorf("expected free plan with limit 5, got %s/%d", user.Plan, user.GenerationsLimit)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", registerBody())
	assertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", "", registerBody())
	assertStatus(t, resp, http.StatusConflict)
	if code := errorCode(t, resp); code != "CONFLICT" {
		t.Errorf("error code = %s", code)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	app, _ := setupAuthApp(t)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"bad email", fiber.Map{"email": "not-an-email", "password": "correct-horse", "fullName": "x"}},
		{"short password", fiber.Map{"email": "a@example.com", "password": "short", "fullName": "x"}},
		{"missing name", fiber.Map{"email": "a@example.com", "password": "correct-horse"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", tc.body)
			assertStatus(t, resp, http.StatusBadRequest)
			resp.Body.Close()
		})
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", registerBody())
	assertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "a@example.com",
		"password": "correct-horse",
	})
	assertStatus(t, resp, http.StatusOK)
	var tokens model.TokenResponse
	parseJSON(t, resp, &tokens)
	if tokens.AccessToken == "" {
		t.Error("expected an access token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", registerBody())
	assertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "a@example.com",
		"password": "wrong-password",
	})
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "ghost@example.com",
		"password": "correct-horse",
	})
	assertStatus(t, resp, http.StatusUnauthorized)
}
