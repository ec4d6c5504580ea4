package auth

import (
	"context"
	"encoding/json"
	"strings"

	"impact-backend/internal/middleware"
	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service authenticates users and manages opaque bearer tokens in Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials for an ACTIVE account and issues a token.
// Bad email, bad password and non-active accounts all return the same 401.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var u models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if u.Status != models.UserStatusActive {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	principal := middleware.Principal{
		UserID: u.ID.String(),
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	}
	payload, err := json.Marshal(principal)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.Redis.Set(ctx, middleware.TokenRedisPrefix+token, payload, middleware.TokenTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: &u}, nil
}

// Me reloads the authenticated user from the database.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.Unauthorized("Session expired")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, middleware.TokenRedisPrefix+token).Err()
}
