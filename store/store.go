package store

import (
	"context"
	"errors"
	"fmt"

	"stockpulse/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store provides typed upsert/query access to the price_bars and
// fundamentals_snapshots tables.
type Store struct {
	db *gorm.DB
}

// New creates a store around an already-connected pool.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertPriceBars writes a batch of bars keyed by (symbol, timestamp).
// Existing rows have their OHLCV fields overwritten, so re-running the same
// batch after a partial failure converges to the same end state.
func (s *Store) UpsertPriceBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume", "updated_at",
		}),
	}).Create(&bars).Error
	if err != nil {
		return fmt.Errorf("upsert price bars: %w", err)
	}
	return nil
}

// UpsertFundamentals overwrites the single fundamentals row for the symbol.
func (s *Store) UpsertFundamentals(ctx context.Context, snapshot models.FundamentalsSnapshot) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"market_cap", "pe_ratio", "dividend_yield", "observed_at", "updated_at",
		}),
	}).Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("upsert fundamentals for %s: %w", snapshot.Symbol, err)
	}
	return nil
}

// PriceBars returns the newest `limit` bars for the symbol in ascending
// timestamp order.
func (s *Store) PriceBars(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error) {
	var bars []models.PriceBar
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC").
		Limit(limit).
		Find(&bars).Error
	if err != nil {
		return nil, fmt.Errorf("query price bars for %s: %w", symbol, err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// LatestFundamentals returns the fundamentals row for the symbol, or nil
// when none has been ingested yet.
func (s *Store) LatestFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	var snapshot models.FundamentalsSnapshot
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("observed_at DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query fundamentals for %s: %w", symbol, err)
	}
	return &snapshot, nil
}
