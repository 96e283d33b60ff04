package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stocktracker-backend/internal/application/audit"
	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/pkg/apperr"
	"stocktracker-backend/internal/pkg/constants"
	"stocktracker-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidUsername = apperr.Validation("Username must be 3-32 letters, digits, '_', '.' or '-'")
	ErrInvalidEmail    = apperr.Validation("Invalid email format")
	ErrInvalidPassword = apperr.Validation("Password must be 8-72 characters with a letter, a digit and a special character")
	ErrInvalidRole     = apperr.Validation("Role must be one of admin, staff, customer")
	ErrUsernameTaken   = apperr.Validation("Username already registered")
	ErrEmailTaken      = apperr.Validation("Email already registered")
	ErrUserNotFound    = apperr.NotFound("User not found")
	ErrSelfDelete      = apperr.Validation("Admins cannot delete their own profile")
	ErrUnauthenticated = apperr.Unauthorized("Unauthorized")
)

const bcryptCost = 10

// SessionRevoker ends every live session of a user.
type SessionRevoker interface {
	DestroyUser(ctx context.Context, userID uint) error
}

// Service holds the DB and, optionally, the session store used when deleting users.
type Service struct {
	DB       *gorm.DB
	Sessions SessionRevoker
}

// RegisterInput is the POST /users body. Role defaults to customer.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Normalize trims fields, lower-cases the email and defaults the role.
func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = constants.Customer
	}
}

// Register creates a user with a bcrypt password hash. Callers decide who may assign which role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Normalize()
	if !validation.IsValidUsername(in.Username) {
		return nil, ErrInvalidUsername
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	if !constants.IsValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	db := s.DB.WithContext(ctx)
	if taken, err := exists(db, "username = ?", in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := exists(db, "email = ?", in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("Username or email already registered")
		}
		return nil, err
	}
	log.Info().Uint("user_id", u.ID).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// View returns a user by username.
func (s *Service) View(ctx context.Context, username string) (*domain.User, error) {
	return s.first(ctx, "username = ?", strings.TrimSpace(username))
}

// UpdateEmail changes a user's email. updated_at is refreshed by GORM.
func (s *Service) UpdateEmail(ctx context.Context, username, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	u, err := s.View(ctx, username)
	if err != nil {
		return nil, err
	}
	if email == u.Email {
		return u, nil
	}
	db := s.DB.WithContext(ctx)
	if taken, err := exists(db, "email = ? AND id <> ?", email, u.ID); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if err := db.Model(u).Update("email", email).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// ListProfiles returns every user ordered by id. Password hashes never serialize.
func (s *Service) ListProfiles(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user and their positions in one transaction and records the admin action.
// Transaction records are kept. Live sessions of the user are ended afterwards.
func (s *Service) Delete(ctx context.Context, adminID, userID uint) error {
	if adminID == userID {
		return ErrSelfDelete
	}
	return s.remove(ctx, adminID, "id = ?", userID)
}

// DeleteAccount removes the account named username on behalf of actorID, who is either the
// account owner or an admin. Admin accounts cannot close themselves.
func (s *Service) DeleteAccount(ctx context.Context, actorID uint, username string) error {
	return s.remove(ctx, actorID, "username = ?", strings.TrimSpace(username))
}

func (s *Service) remove(ctx context.Context, actorID uint, query string, arg interface{}) error {
	var deleted domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(query, arg).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		own := deleted.ID == actorID
		if own && deleted.Role == constants.Admin {
			return ErrSelfDelete
		}
		removed := tx.Where("user_id = ?", deleted.ID).Delete(&domain.Position{})
		if removed.Error != nil {
			return fmt.Errorf("delete positions: %w", removed.Error)
		}
		if err := tx.Delete(&deleted).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		description := fmt.Sprintf("Deleted user %s", deleted.Username)
		if own {
			description = fmt.Sprintf("Deleted own account %s", deleted.Username)
		}
		_, err := audit.Record(tx, actorID, description, map[string]interface{}{
			"user_id":           deleted.ID,
			"username":          deleted.Username,
			"positions_removed": removed.RowsAffected,
		})
		return err
	})
	if err != nil {
		return err
	}

	if s.Sessions != nil {
		if err := s.Sessions.DestroyUser(ctx, deleted.ID); err != nil {
			log.Warn().Err(err).Uint("user_id", deleted.ID).Msg("failed to end sessions of deleted user")
		}
	}
	log.Info().Uint("actor_id", actorID).Uint("user_id", deleted.ID).Msg("user deleted")
	return nil
}

func (s *Service) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func exists(db *gorm.DB, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(&domain.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
