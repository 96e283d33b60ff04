package ledger

import (
	"context"
	"errors"
	"fmt"

	"stocktracker-backend/internal/application/catalog"
	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/pkg/apperr"
	"stocktracker-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidShares      = apperr.Validation("Shares must be a positive whole number")
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrUnknownTicker      = apperr.Validation("Unknown ticker")
	ErrInsufficientShares = apperr.Validation("Insufficient shares")
	ErrPositionNotFound   = apperr.NotFound("Position not found")
)

// Holding is a position joined with the latest catalog quote of its ticker.
type Holding struct {
	PortfolioID uint            `json:"portfolio_id"`
	Ticker      string          `json:"ticker"`
	SharesOwned int64           `json:"shares_owned"`
	OpenPrice   decimal.Decimal `json:"open_price"`
	ClosePrice  decimal.Decimal `json:"close_price"`
	Difference  decimal.Decimal `json:"difference"`
	Date        string          `json:"date"`
}

// Service owns the positions table and appends to the transaction log.
//
// Each (user, ticker) is either absent or held with at least one share. A mutation takes the
// in-process key lock, then runs its read-check-write and its transaction record in one
// database transaction.
type Service struct {
	DB    *gorm.DB
	locks keyLocks
}

// Buy adds shares to the user's position in ticker, creating it if absent.
func (s *Service) Buy(ctx context.Context, userID uint, ticker string, shares int64) (domain.Position, error) {
	ticker = validation.NormalizeTicker(ticker)
	if shares < 1 {
		return domain.Position{}, ErrInvalidShares
	}
	if !validation.IsValidTicker(ticker) {
		return domain.Position{}, ErrUnknownTicker
	}

	unlock := s.locks.lock(positionKey{userID: userID, ticker: ticker})
	defer unlock()

	var pos domain.Position
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, userID); err != nil {
			return err
		}
		latest, err := catalog.Latest(tx, []string{ticker})
		if err != nil {
			return err
		}
		quote, ok := latest[ticker]
		if !ok {
			return ErrUnknownTicker
		}

		upsert := domain.Position{UserID: userID, Ticker: ticker, SharesOwned: shares}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"shares_owned": gorm.Expr("positions.shares_owned + ?", shares),
			}),
		}).Create(&upsert).Error; err != nil {
			return fmt.Errorf("upsert position: %w", err)
		}
		if err := tx.Where("user_id = ? AND ticker = ?", userID, ticker).First(&pos).Error; err != nil {
			return fmt.Errorf("reload position: %w", err)
		}

		return appendRecord(tx, userID, ticker, domain.ActionBuy, shares, quote.ClosePrice)
	})
	if err != nil {
		return domain.Position{}, err
	}
	log.Debug().Uint("user_id", userID).Str("ticker", ticker).Int64("shares", shares).Int64("owned", pos.SharesOwned).Msg("buy applied")
	return pos, nil
}

// Sell removes shares from the user's position. Selling more than is held fails with
// ErrInsufficientShares and changes nothing; selling exactly what is held deletes the position.
// It returns the shares left (0 when the position was removed).
func (s *Service) Sell(ctx context.Context, userID uint, ticker string, shares int64) (int64, error) {
	ticker = validation.NormalizeTicker(ticker)
	if shares < 1 {
		return 0, ErrInvalidShares
	}

	unlock := s.locks.lock(positionKey{userID: userID, ticker: ticker})
	defer unlock()

	var remaining int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pos domain.Position
		err := forUpdate(tx).Where("user_id = ? AND ticker = ?", userID, ticker).First(&pos).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsufficientShares
		}
		if err != nil {
			return err
		}
		if pos.SharesOwned < shares {
			return ErrInsufficientShares
		}

		var res *gorm.DB
		if pos.SharesOwned == shares {
			res = tx.Where("id = ? AND shares_owned = ?", pos.ID, shares).Delete(&domain.Position{})
		} else {
			res = tx.Model(&domain.Position{}).
				Where("id = ? AND shares_owned >= ?", pos.ID, shares).
				Update("shares_owned", gorm.Expr("shares_owned - ?", shares))
		}
		if res.Error != nil {
			return fmt.Errorf("apply sell: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientShares
		}
		remaining = pos.SharesOwned - shares

		price := decimal.Zero
		latest, err := catalog.Latest(tx, []string{ticker})
		if err != nil {
			return err
		}
		if q, ok := latest[ticker]; ok {
			price = q.ClosePrice
		} else {
			log.Warn().Str("ticker", ticker).Msg("sell recorded without a catalog price")
		}
		return appendRecord(tx, userID, ticker, domain.ActionSell, -shares, price)
	})
	if err != nil {
		return 0, err
	}
	log.Debug().Uint("user_id", userID).Str("ticker", ticker).Int64("shares", shares).Int64("owned", remaining).Msg("sell applied")
	return remaining, nil
}

// PositionsFor lists the user's positions ordered by ticker, each joined with its latest quote.
// A position whose ticker has no quote is left out. No positions is an empty slice.
func (s *Service) PositionsFor(ctx context.Context, userID uint) ([]Holding, error) {
	db := s.DB.WithContext(ctx)
	var positions []domain.Position
	if err := db.Where("user_id = ?", userID).Order("ticker ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	holdings := make([]Holding, 0, len(positions))
	if len(positions) == 0 {
		return holdings, nil
	}

	tickers := make([]string, len(positions))
	for i, p := range positions {
		tickers[i] = p.Ticker
	}
	latest, err := catalog.Latest(db, tickers)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		q, ok := latest[p.Ticker]
		if !ok {
			log.Warn().Uint("user_id", userID).Str("ticker", p.Ticker).Msg("position has no catalog quote, omitted")
			continue
		}
		holdings = append(holdings, Holding{
			PortfolioID: p.ID,
			Ticker:      p.Ticker,
			SharesOwned: p.SharesOwned,
			OpenPrice:   q.OpenPrice,
			ClosePrice:  q.ClosePrice,
			Difference:  q.Difference,
			Date:        q.TradeDate,
		})
	}
	return holdings, nil
}

// Position returns the user's current position in ticker.
func (s *Service) Position(ctx context.Context, userID uint, ticker string) (domain.Position, error) {
	ticker = validation.NormalizeTicker(ticker)
	var pos domain.Position
	err := s.DB.WithContext(ctx).Where("user_id = ? AND ticker = ?", userID, ticker).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Position{}, ErrPositionNotFound
	}
	if err != nil {
		return domain.Position{}, err
	}
	return pos, nil
}

func userExists(tx *gorm.DB, userID uint) error {
	var count int64
	if err := tx.Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func appendRecord(tx *gorm.DB, userID uint, ticker, action string, changed int64, price decimal.Decimal) error {
	rec := domain.TransactionRecord{
		UserID:        userID,
		Ticker:        ticker,
		Action:        action,
		SharesChanged: changed,
		Price:         price,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("append transaction record: %w", err)
	}
	return nil
}

// forUpdate row-locks the selected position on Postgres. SQLite has a single writer and no
// row locks.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
