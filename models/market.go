package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceBar is one OHLCV observation for a symbol at a fixed instant.
// (symbol, timestamp) is the unique identity; re-ingesting the same instant
// overwrites the stored fields (last write wins).
type PriceBar struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	Symbol    string          `gorm:"uniqueIndex:idx_symbol_timestamp;not null" json:"symbol"`
	Timestamp time.Time       `gorm:"uniqueIndex:idx_symbol_timestamp;not null" json:"timestamp"`
	Open      decimal.Decimal `gorm:"type:decimal(18,6)" json:"open"`
	High      decimal.Decimal `gorm:"type:decimal(18,6)" json:"high"`
	Low       decimal.Decimal `gorm:"type:decimal(18,6)" json:"low"`
	Close     decimal.Decimal `gorm:"type:decimal(18,6)" json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// FundamentalsSnapshot is the latest fundamentals observation for a symbol.
// One mutable row per symbol: each ingestion overwrites the previous values.
// The metric fields are nullable; the upstream source may omit any of them
// and nulls propagate through to the API response.
type FundamentalsSnapshot struct {
	ID            uint                `gorm:"primaryKey" json:"-"`
	Symbol        string              `gorm:"uniqueIndex;not null" json:"symbol"`
	MarketCap     decimal.NullDecimal `gorm:"type:decimal(24,2)" json:"market_cap"`
	PERatio       decimal.NullDecimal `gorm:"type:decimal(18,6)" json:"pe_ratio"`
	DividendYield decimal.NullDecimal `gorm:"type:decimal(12,8)" json:"dividend_yield"`
	ObservedAt    time.Time           `gorm:"not null" json:"observed_at"`
	CreatedAt     time.Time           `json:"-"`
	UpdatedAt     time.Time           `json:"-"`
}

// IndicatorBar is a price bar augmented with computed indicator values.
// It only ever appears in responses where every indicator is defined.
type IndicatorBar struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	SMA20     decimal.Decimal `json:"sma_20"`
	RSI14     decimal.Decimal `json:"rsi_14"`
}

// FusedView is the per-request merge of price series, indicators and latest
// fundamentals. It is never persisted.
type FusedView struct {
	Symbol       string               `json:"symbol"`
	PriceData    []IndicatorBar       `json:"price_data"`
	Fundamentals FundamentalsSnapshot `json:"fundamentals"`
}

// MigrateMarketModels runs database migrations for market data models
func MigrateMarketModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&PriceBar{},
		&FundamentalsSnapshot{},
	)
}
