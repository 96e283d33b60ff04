package catalog

import (
	"context"
	"errors"
	"fmt"

	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/pkg/apperr"
	"stocktracker-backend/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateQuote = apperr.Validation("A quote for this ticker and date already exists")
	ErrTickerNotFound = apperr.NotFound("Ticker not found")
)

// QuoteInput is one day of prices to ingest. Difference is derived, never supplied.
type QuoteInput struct {
	Ticker     string          `json:"ticker"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	TradeDate  string          `json:"date"`
}

// Service owns the stock_quotes table.
type Service struct {
	DB *gorm.DB
	// Strict turns a repeated (ticker, date) ingestion into ErrDuplicateQuote instead of a silent skip.
	Strict bool
}

// Validate normalizes the ticker and checks the input shape.
func (in *QuoteInput) Validate() error {
	in.Ticker = validation.NormalizeTicker(in.Ticker)
	if !validation.IsValidTicker(in.Ticker) {
		return apperr.Validation("Invalid ticker symbol")
	}
	if !validation.IsValidTradeDate(in.TradeDate) {
		return apperr.Validation("Date must be in YYYY-MM-DD format")
	}
	if in.OpenPrice.IsNegative() || in.ClosePrice.IsNegative() {
		return apperr.Validation("Prices must not be negative")
	}
	return nil
}

// Ingest inserts a quote unless one already exists for (ticker, date). An existing row is never
// modified: inserted is false and the stored quote is returned (or ErrDuplicateQuote in strict mode).
func (s *Service) Ingest(ctx context.Context, in QuoteInput) (domain.StockQuote, bool, error) {
	if err := in.Validate(); err != nil {
		return domain.StockQuote{}, false, err
	}
	quote := domain.StockQuote{
		Ticker:     in.Ticker,
		OpenPrice:  in.OpenPrice,
		ClosePrice: in.ClosePrice,
		Difference: in.ClosePrice.Sub(in.OpenPrice),
		TradeDate:  in.TradeDate,
	}

	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "trade_date"}},
		DoNothing: true,
	}).Create(&quote)
	if res.Error != nil {
		return domain.StockQuote{}, false, fmt.Errorf("insert quote: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return quote, true, nil
	}

	if s.Strict {
		return domain.StockQuote{}, false, ErrDuplicateQuote
	}
	var existing domain.StockQuote
	if err := s.DB.WithContext(ctx).
		Where("ticker = ? AND trade_date = ?", in.Ticker, in.TradeDate).
		First(&existing).Error; err != nil {
		return domain.StockQuote{}, false, fmt.Errorf("load existing quote: %w", err)
	}
	return existing, false, nil
}

// Lookup returns the most recent quote for ticker.
func (s *Service) Lookup(ctx context.Context, ticker string) (domain.StockQuote, error) {
	ticker = validation.NormalizeTicker(ticker)
	var quote domain.StockQuote
	err := s.DB.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("trade_date DESC").
		First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.StockQuote{}, ErrTickerNotFound
	}
	if err != nil {
		return domain.StockQuote{}, err
	}
	return quote, nil
}

// List returns every quote ordered by ticker then date.
func (s *Service) List(ctx context.Context) ([]domain.StockQuote, error) {
	quotes := []domain.StockQuote{}
	if err := s.DB.WithContext(ctx).Order("ticker ASC, trade_date ASC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// History returns all quotes of one ticker, oldest first.
func (s *Service) History(ctx context.Context, ticker string) ([]domain.StockQuote, error) {
	ticker = validation.NormalizeTicker(ticker)
	quotes := []domain.StockQuote{}
	if err := s.DB.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("trade_date ASC").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrTickerNotFound
	}
	return quotes, nil
}

// Latest returns the most recent quote for each of tickers, keyed by ticker. Tickers with no
// quote are absent from the map.
func Latest(db *gorm.DB, tickers []string) (map[string]domain.StockQuote, error) {
	out := make(map[string]domain.StockQuote, len(tickers))
	if len(tickers) == 0 {
		return out, nil
	}
	var quotes []domain.StockQuote
	err := db.Model(&domain.StockQuote{}).
		Where("ticker IN ?", tickers).
		Where("trade_date = (SELECT MAX(m.trade_date) FROM stock_quotes m WHERE m.ticker = stock_quotes.ticker)").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		out[q.Ticker] = q
	}
	return out, nil
}
