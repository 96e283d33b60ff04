package transactions

import (
	"context"
	"testing"

	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/infrastructure/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	svc := &Service{DB: db}
	ctx := context.Background()

	empty, err := svc.History(ctx, 1, Filter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, r := range []domain.TransactionRecord{
		{UserID: 1, Ticker: "AAPL", Action: domain.ActionBuy, SharesChanged: 10, Price: decimal.NewFromInt(230)},
		{UserID: 1, Ticker: "TSLA", Action: domain.ActionBuy, SharesChanged: 2, Price: decimal.NewFromInt(345)},
		{UserID: 1, Ticker: "AAPL", Action: domain.ActionSell, SharesChanged: -4, Price: decimal.NewFromInt(237)},
		{UserID: 2, Ticker: "AAPL", Action: domain.ActionBuy, SharesChanged: 1, Price: decimal.NewFromInt(237)},
	} {
		r := r
		require.NoError(t, db.Create(&r).Error)
	}

	all, err := svc.History(ctx, 1, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(-4), all[0].SharesChanged)

	aapl, err := svc.History(ctx, 1, Filter{Ticker: "aapl"})
	require.NoError(t, err)
	assert.Len(t, aapl, 2)

	last, err := svc.History(ctx, 1, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, domain.ActionSell, last[0].Action)
}
