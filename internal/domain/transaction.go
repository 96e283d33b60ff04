package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// TransactionRecord is an append-only audit row written in the same database transaction as
// the ledger mutation it describes. SharesChanged is signed: positive for buys, negative for sells.
// UserID carries no foreign key so the log outlives deleted accounts.
type TransactionRecord struct {
	ID            uint            `gorm:"column:id;primaryKey" json:"id"`
	UserID        uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	Ticker        string          `gorm:"column:ticker;type:varchar(10);not null" json:"ticker"`
	Action        string          `gorm:"column:action;type:varchar(4);not null;check:chk_transactions_action,action IN ('buy','sell')" json:"action"`
	SharesChanged int64           `gorm:"column:shares_changed;not null" json:"shares_changed"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(18,4);not null" json:"price"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"timestamp"`
}

func (TransactionRecord) TableName() string {
	return "transactions"
}
