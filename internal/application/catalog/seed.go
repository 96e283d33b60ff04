package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"stocktracker-backend/internal/pkg/apperr"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// seedEntry is one element of a quotes seed file: [{"ticker","openPrice","closePrice","Date"}].
// A "difference" field may be present and is ignored; it is recomputed on ingestion.
type seedEntry struct {
	Ticker     string          `json:"ticker"`
	OpenPrice  decimal.Decimal `json:"openPrice"`
	ClosePrice decimal.Decimal `json:"closePrice"`
	Date       string          `json:"Date"`
}

// IngestResult counts the outcome of a bulk ingestion.
type IngestResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// IngestFile loads a JSON seed file and ingests every entry. Invalid entries are logged and
// counted; they do not abort the load. Duplicates count as skipped even in strict mode.
func (s *Service) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read seed file: %w", err)
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return IngestResult{}, fmt.Errorf("parse seed file: %w", err)
	}

	// Seeding is always upsert-or-skip so a re-run is a no-op.
	loader := &Service{DB: s.DB}
	var res IngestResult
	for i, e := range entries {
		_, inserted, err := loader.Ingest(ctx, QuoteInput{
			Ticker:     e.Ticker,
			OpenPrice:  e.OpenPrice,
			ClosePrice: e.ClosePrice,
			TradeDate:  e.Date,
		})
		switch {
		case err != nil && apperr.KindOf(err) != apperr.KindValidation:
			return res, err
		case err != nil:
			res.Invalid++
			log.Warn().Err(err).Int("index", i).Str("ticker", e.Ticker).Msg("seed entry rejected")
		case inserted:
			res.Inserted++
		default:
			res.Skipped++
		}
	}
	log.Info().Str("file", path).Int("inserted", res.Inserted).Int("skipped", res.Skipped).Int("invalid", res.Invalid).Msg("quotes seeded")
	return res, nil
}
