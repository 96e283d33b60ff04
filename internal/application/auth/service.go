package auth

import (
	"context"
	"errors"
	"strings"

	"stocktracker-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserFinder abstracts user lookup by username (for production GORM or test doubles).
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM.
type GormUserFinder struct{ DB *gorm.DB }

// FindByUsername returns nil, nil when no user has that username.
func (g *GormUserFinder) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := g.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type Service struct {
	Users UserFinder
}

// Login verifies the password against the stored bcrypt hash and returns the user.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrCredentialsRequired
	}
	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
