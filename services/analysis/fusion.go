package analysis

import (
	"context"
	"errors"
	"fmt"

	"stockpulse/models"

	"github.com/shopspring/decimal"
)

// ErrNotAvailable is returned when no fused view can be built for a symbol
// because either its price series or its fundamentals are missing. The API
// layer maps it to a not-found response.
var ErrNotAvailable = errors.New("data not available")

const (
	// DefaultLimit covers the longest indicator lookback plus margin.
	DefaultLimit = 80

	SMAWindow = 20
	RSIWindow = 14
)

// Store is the read surface the fusion engine depends on.
type Store interface {
	PriceBars(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error)
	LatestFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
}

// Engine merges price series, computed indicators and latest fundamentals
// into a single per-request view.
type Engine struct {
	store Store
}

// NewEngine creates a fusion engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Fuse builds the fused view for a symbol from the newest `limit` bars
// (DefaultLimit when limit <= 0). Bars whose indicators are undefined due to
// insufficient lookback are dropped from the front, so every returned bar
// carries both SMA and RSI values. Fusion never partially succeeds: missing
// prices or missing fundamentals both yield ErrNotAvailable.
func (e *Engine) Fuse(ctx context.Context, symbol string, limit int) (*models.FusedView, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	bars, err := e.store.PriceBars(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("load price series: %w", err)
	}
	if len(bars) == 0 {
		return nil, ErrNotAvailable
	}

	fundamentals, err := e.store.LatestFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals: %w", err)
	}
	if fundamentals == nil {
		return nil, ErrNotAvailable
	}

	closes := make([]decimal.Decimal, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	sma := SMASeries(closes, SMAWindow)
	rsi := RSISeries(closes, RSIWindow)

	priceData := make([]models.IndicatorBar, 0, len(bars))
	for i, bar := range bars {
		if sma[i] == nil || rsi[i] == nil {
			continue
		}
		priceData = append(priceData, models.IndicatorBar{
			Timestamp: bar.Timestamp,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
			SMA20:     *sma[i],
			RSI14:     *rsi[i],
		})
	}

	return &models.FusedView{
		Symbol:       symbol,
		PriceData:    priceData,
		Fundamentals: *fundamentals,
	}, nil
}
