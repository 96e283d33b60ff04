package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockQuote is one day of prices for a ticker. At most one row exists per (ticker, trade_date);
// rows are written once by catalog ingestion and never rewritten.
type StockQuote struct {
	ID          uint            `gorm:"column:id;primaryKey" json:"id"`
	Ticker      string          `gorm:"column:ticker;type:varchar(10);not null;uniqueIndex:idx_quote_ticker_date,priority:1" json:"ticker"`
	OpenPrice   decimal.Decimal `gorm:"column:open_price;type:decimal(18,4);not null" json:"open_price"`
	ClosePrice  decimal.Decimal `gorm:"column:close_price;type:decimal(18,4);not null" json:"close_price"`
	Difference  decimal.Decimal `gorm:"column:difference;type:decimal(18,4);not null" json:"difference"`
	TradeDate   string          `gorm:"column:trade_date;type:varchar(10);not null;uniqueIndex:idx_quote_ticker_date,priority:2" json:"date"`
	LastUpdated time.Time       `gorm:"column:last_updated;autoUpdateTime" json:"last_updated"`
}

func (StockQuote) TableName() string {
	return "stock_quotes"
}
