package main

import (
	"context"
	"fmt"

	catalogsvc "stocktracker-backend/internal/application/catalog"
	usersvc "stocktracker-backend/internal/application/user"
	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/infrastructure/database"
	"stocktracker-backend/internal/pkg/constants"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) error {
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("schema up to date")
	return nil
}

func ingest(ctx context.Context, db *gorm.DB, path string) (catalogsvc.IngestResult, error) {
	if err := migrate(db); err != nil {
		return catalogsvc.IngestResult{}, err
	}
	svc := &catalogsvc.Service{DB: db}
	return svc.IngestFile(ctx, path)
}

func createAdmin(ctx context.Context, db *gorm.DB, username, email, password string) (*domain.User, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	svc := &usersvc.Service{DB: db}
	u, err := svc.Register(ctx, usersvc.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     constants.Admin,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("admin created")
	return u, nil
}
