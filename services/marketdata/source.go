package marketdata

import (
	"context"
	"errors"
)

// ErrNoData signals that the upstream source returned an empty result for a
// symbol. The pipeline records it per symbol; it is not a failure.
var ErrNoData = errors.New("no data returned for symbol")

// Bar is one raw OHLCV row as returned by the upstream source. Numeric
// fields are pointers because the source may return nulls; normalization
// and malformed-row accounting happen in the ingestion pipeline.
type Bar struct {
	Timestamp int64
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *float64
}

// Fundamentals is one raw fundamentals observation. Any metric may be
// absent upstream.
type Fundamentals struct {
	MarketCap     *float64
	PERatio       *float64
	DividendYield *float64
}

// Source defines the interface for fetching market data.
type Source interface {
	// FetchBars returns time-series bars for the symbol over the given
	// period ("1d", "60d", ...) and interval ("5m", "1d", ...), or ErrNoData.
	FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error)
	// FetchFundamentals returns the current fundamentals for the symbol,
	// or ErrNoData when the source knows nothing about it.
	FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
	Name() string
}
