package transactions

import (
	"context"

	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// Service is the read side of the transaction log. Records are only ever written by the ledger.
type Service struct {
	DB *gorm.DB
}

// Filter narrows History. Zero values mean no filter.
type Filter struct {
	Ticker string
	Limit  int
}

// History returns the user's trades, newest first. Records of deleted users remain readable.
func (s *Service) History(ctx context.Context, userID uint, f Filter) ([]domain.TransactionRecord, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if f.Ticker != "" {
		q = q.Where("ticker = ?", validation.NormalizeTicker(f.Ticker))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	records := []domain.TransactionRecord{}
	if err := q.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
