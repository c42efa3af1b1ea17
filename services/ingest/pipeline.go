package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"stockpulse/models"
	"stockpulse/services/marketdata"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Outcome classifies the result of one symbol's ingestion cycle.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeNoData Outcome = "no_data"
	OutcomeFailed Outcome = "failed"
)

// SymbolResult summarizes ingestion for a single symbol.
type SymbolResult struct {
	Symbol      string
	Outcome     Outcome
	RowsWritten int
	Malformed   int
	Err         error
}

// Report summarizes one ingestion cycle across all symbols.
type Report struct {
	Results []SymbolResult
}

// Summary renders the report as a single log line.
func (r Report) Summary() string {
	var ok, noData, failed, rows, malformed int
	var failures []string
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeOK:
			ok++
		case OutcomeNoData:
			noData++
		case OutcomeFailed:
			failed++
			failures = append(failures, res.Symbol)
		}
		rows += res.RowsWritten
		malformed += res.Malformed
	}
	s := fmt.Sprintf("ok=%d no_data=%d failed=%d rows=%d malformed=%d", ok, noData, failed, rows, malformed)
	if len(failures) > 0 {
		s += " failed_symbols=" + strings.Join(failures, ",")
	}
	return s
}

// Store is the persistence surface the pipeline writes to.
type Store interface {
	UpsertPriceBars(ctx context.Context, bars []models.PriceBar) error
	UpsertFundamentals(ctx context.Context, snapshot models.FundamentalsSnapshot) error
}

// Pipeline pulls bars and fundamentals from a market data source,
// normalizes them and upserts them. Failures are contained per symbol:
// one symbol's fetch or write error never aborts the batch.
type Pipeline struct {
	source      marketdata.Source
	store       Store
	concurrency int
	now         func() time.Time
}

// New creates an ingestion pipeline.
func New(source marketdata.Source, store Store) *Pipeline {
	return &Pipeline{
		source:      source,
		store:       store,
		concurrency: 4,
		now:         time.Now,
	}
}

// Ingest fetches and upserts price bars for every symbol. Symbols are
// processed concurrently, but each symbol's fetch and batch upsert run on a
// single goroutine, so writes for one (symbol, timestamp) key never race.
func (p *Pipeline) Ingest(ctx context.Context, symbols []string, period, interval string) Report {
	results := make([]SymbolResult, len(symbols))

	g := errgroup.Group{}
	g.SetLimit(p.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = p.ingestSymbol(ctx, symbol, period, interval)
			return nil
		})
	}
	g.Wait()

	return Report{Results: results}
}

// IngestFundamentals fetches and upserts one fundamentals snapshot per
// symbol, with the same partial-failure policy as Ingest.
func (p *Pipeline) IngestFundamentals(ctx context.Context, symbols []string) Report {
	results := make([]SymbolResult, len(symbols))

	g := errgroup.Group{}
	g.SetLimit(p.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = p.ingestSymbolFundamentals(ctx, symbol)
			return nil
		})
	}
	g.Wait()

	return Report{Results: results}
}

func (p *Pipeline) ingestSymbol(ctx context.Context, symbol, period, interval string) SymbolResult {
	rows, err := p.source.FetchBars(ctx, symbol, period, interval)
	if errors.Is(err, marketdata.ErrNoData) {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeNoData}
	}
	if err != nil {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Err: fmt.Errorf("fetch bars: %w", err)}
	}
	if len(rows) == 0 {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeNoData}
	}

	bars, malformed := normalizeBars(symbol, rows)

	if err := p.store.UpsertPriceBars(ctx, bars); err != nil {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Malformed: malformed, Err: err}
	}

	return SymbolResult{Symbol: symbol, Outcome: OutcomeOK, RowsWritten: len(bars), Malformed: malformed}
}

func (p *Pipeline) ingestSymbolFundamentals(ctx context.Context, symbol string) SymbolResult {
	fundamentals, err := p.source.FetchFundamentals(ctx, symbol)
	if errors.Is(err, marketdata.ErrNoData) {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeNoData}
	}
	if err != nil {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Err: fmt.Errorf("fetch fundamentals: %w", err)}
	}
	if fundamentals == nil {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeNoData}
	}

	snapshot := models.FundamentalsSnapshot{
		Symbol:        symbol,
		MarketCap:     toNullDecimal(fundamentals.MarketCap),
		PERatio:       toNullDecimal(fundamentals.PERatio),
		DividendYield: toNullDecimal(fundamentals.DividendYield),
		ObservedAt:    p.now().UTC(),
	}

	if err := p.store.UpsertFundamentals(ctx, snapshot); err != nil {
		return SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Err: err}
	}

	return SymbolResult{Symbol: symbol, Outcome: OutcomeOK, RowsWritten: 1}
}

// normalizeBars converts raw source rows to canonical price bars.
// Rows with a missing or non-finite numeric field, or a non-positive
// timestamp, are dropped and counted as malformed.
func normalizeBars(symbol string, rows []marketdata.Bar) ([]models.PriceBar, int) {
	bars := make([]models.PriceBar, 0, len(rows))
	malformed := 0

	for _, row := range rows {
		if row.Timestamp <= 0 || !finite(row.Open, row.High, row.Low, row.Close, row.Volume) {
			malformed++
			continue
		}
		bars = append(bars, models.PriceBar{
			Symbol:    symbol,
			Timestamp: time.Unix(row.Timestamp, 0).UTC(),
			Open:      decimal.NewFromFloat(*row.Open),
			High:      decimal.NewFromFloat(*row.High),
			Low:       decimal.NewFromFloat(*row.Low),
			Close:     decimal.NewFromFloat(*row.Close),
			Volume:    int64(*row.Volume),
		})
	}
	return bars, malformed
}

func finite(values ...*float64) bool {
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return false
		}
	}
	return true
}

func toNullDecimal(v *float64) decimal.NullDecimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}
