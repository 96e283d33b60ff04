package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/pkg/apperr"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrDescriptionRequired = apperr.Validation("Description is required")

// Service reads and writes the append-only admin_actions table.
type Service struct {
	DB *gorm.DB
}

// Record appends an admin action. It runs on db so callers can include it in their own transaction.
// details may be nil; otherwise it is stored as JSON.
func Record(db *gorm.DB, adminID uint, description string, details interface{}) (*domain.AdminAction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	action := &domain.AdminAction{AdminID: adminID, Description: description}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("encode admin action details: %w", err)
		}
		action.Details = datatypes.JSON(b)
	}
	if err := db.Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

// Record appends an admin action in its own transaction.
func (s *Service) Record(ctx context.Context, adminID uint, description string, details interface{}) (*domain.AdminAction, error) {
	return Record(s.DB.WithContext(ctx), adminID, description, details)
}

// List returns admin actions newest first, optionally only those of one admin (adminID 0 = all).
func (s *Service) List(ctx context.Context, adminID uint) ([]domain.AdminAction, error) {
	q := s.DB.WithContext(ctx)
	if adminID != 0 {
		q = q.Where("admin_id = ?", adminID)
	}
	actions := []domain.AdminAction{}
	if err := q.Order("created_at DESC, id DESC").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
