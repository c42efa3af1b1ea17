package store

import (
	"context"
	"testing"
	"time"

	"stockpulse/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.MigrateMarketModels(db))
	return New(db)
}

func bar(symbol string, ts time.Time, close float64) models.PriceBar {
	c := decimal.NewFromFloat(close)
	return models.PriceBar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      c.Sub(decimal.NewFromInt(1)),
		High:      c.Add(decimal.NewFromInt(1)),
		Low:       c.Sub(decimal.NewFromInt(2)),
		Close:     c,
		Volume:    5000,
	}
}

func TestUpsertPriceBars_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	batch := []models.PriceBar{
		bar("AAPL", ts, 200),
		bar("AAPL", ts.AddDate(0, 0, 1), 201),
	}

	require.NoError(t, st.UpsertPriceBars(ctx, batch))
	require.NoError(t, st.UpsertPriceBars(ctx, batch))

	bars, err := st.PriceBars(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2, "re-running the same batch must not create duplicate rows")
	require.True(t, bars[0].Close.Equal(decimal.NewFromInt(200)))
}

func TestUpsertPriceBars_OverlappingWindowsLastWriteWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	// Daily window writes the instant first, then an intraday window covers
	// the same instant with fresher values.
	require.NoError(t, st.UpsertPriceBars(ctx, []models.PriceBar{bar("AAPL", ts, 200)}))
	require.NoError(t, st.UpsertPriceBars(ctx, []models.PriceBar{bar("AAPL", ts, 205)}))

	bars, err := st.PriceBars(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, bars, 1, "one row per (symbol, timestamp)")
	require.True(t, bars[0].Close.Equal(decimal.NewFromInt(205)),
		"close = %s, want the most recently applied value 205", bars[0].Close)
}

func TestUpsertPriceBars_SameInstantDifferentSymbols(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.UpsertPriceBars(ctx, []models.PriceBar{
		bar("AAPL", ts, 200),
		bar("MSFT", ts, 400),
	}))

	aapl, err := st.PriceBars(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, aapl, 1)

	msft, err := st.PriceBars(ctx, "MSFT", 10)
	require.NoError(t, err)
	require.Len(t, msft, 1)
}

func TestPriceBars_NewestLimitAscendingOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	batch := make([]models.PriceBar, 10)
	for i := range batch {
		batch[i] = bar("AAPL", base.AddDate(0, 0, i), 100+float64(i))
	}
	require.NoError(t, st.UpsertPriceBars(ctx, batch))

	bars, err := st.PriceBars(ctx, "AAPL", 5)
	require.NoError(t, err)
	require.Len(t, bars, 5)

	// Newest 5 rows, returned oldest first.
	require.True(t, bars[0].Close.Equal(decimal.NewFromInt(105)))
	require.True(t, bars[4].Close.Equal(decimal.NewFromInt(109)))
	for i := 1; i < len(bars); i++ {
		require.True(t, bars[i].Timestamp.After(bars[i-1].Timestamp))
	}
}

func TestUpsertFundamentals_OverwritesLatestRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := models.FundamentalsSnapshot{
		Symbol:     "AAPL",
		MarketCap:  decimal.NullDecimal{Decimal: decimal.NewFromInt(2_900_000_000_000), Valid: true},
		PERatio:    decimal.NullDecimal{Decimal: decimal.NewFromFloat(30), Valid: true},
		ObservedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.UpsertFundamentals(ctx, first))

	second := first
	second.ID = 0
	second.MarketCap = decimal.NullDecimal{Decimal: decimal.NewFromInt(3_000_000_000_000), Valid: true}
	second.DividendYield = decimal.NullDecimal{}
	second.ObservedAt = time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertFundamentals(ctx, second))

	var count int64
	require.NoError(t, st.db.Model(&models.FundamentalsSnapshot{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "one logical latest row per symbol")

	snap, err := st.LatestFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.True(t, snap.MarketCap.Decimal.Equal(decimal.NewFromInt(3_000_000_000_000)))
	require.False(t, snap.DividendYield.Valid, "omitted metric stays null after overwrite")
}

func TestLatestFundamentals_MissingSymbolReturnsNil(t *testing.T) {
	st := newTestStore(t)

	snap, err := st.LatestFundamentals(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	require.Nil(t, snap)
}
