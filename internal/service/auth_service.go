package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/devotionalai/api/internal/auth"
	"github.com/devotionalai/api/internal/config"
	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/store"
)

// AuthService handles registration and login, issuing JWT pairs.
type AuthService struct {
	users  store.UserStore
	issuer *auth.TokenIssuer
	quota  config.QuotaConfig
}

func NewAuthService(users store.UserStore, issuer *auth.TokenIssuer, quota config.QuotaConfig) *AuthService {
	return &AuthService{users: users, issuer: issuer, quota: quota}
}

// Register creates a user on the free plan and returns a token pair.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Email, string(hash), req.FullName,
		model.PlanFree, s.quota.LimitForPlan(string(model.PlanFree)))
	if err != nil {
		return nil, err
	}

	log.Info().Str("userId", user.ID).Msg("user registered")
	return s.tokenPair(user)
}

// Login verifies credentials and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokenPair(user)
}

func (s *AuthService) tokenPair(user *model.User) (*model.TokenResponse, error) {
	access, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
