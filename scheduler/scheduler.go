package scheduler

import (
	"context"
	"log"
	"time"

	"stockpulse/config"
	"stockpulse/services/ingest"

	"github.com/go-co-op/gocron"
)

// cycleTimeout bounds one ingestion cycle so a wedged upstream call cannot
// stall the job slot past its next tick window.
const cycleTimeout = 4 * time.Minute

// Pipeline is the ingestion surface the scheduler drives.
type Pipeline interface {
	Ingest(ctx context.Context, symbols []string, period, interval string) ingest.Report
	IngestFundamentals(ctx context.Context, symbols []string) ingest.Report
}

// Scheduler runs the two periodic ingestion tasks: a fast price cycle and a
// slow fundamentals cycle. The tasks are independent; neither blocks the
// other or the HTTP read path, and a failing cycle is logged and retried on
// the next tick rather than terminating the scheduler.
type Scheduler struct {
	cron     *gocron.Scheduler
	pipeline Pipeline
	symbols  []string

	fastInterval time.Duration
	slowInterval time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(pipeline Pipeline, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:         gocron.NewScheduler(time.UTC),
		pipeline:     pipeline,
		symbols:      cfg.Symbols,
		fastInterval: cfg.FastInterval,
		slowInterval: cfg.SlowInterval,
	}
}

// Start registers both jobs and starts the scheduler. Each job runs once
// immediately so a freshly started instance populates data without waiting
// a full cycle.
func (s *Scheduler) Start() error {
	log.Println("Starting scheduler...")

	if _, err := s.cron.Every(s.fastInterval).StartImmediately().Do(s.runPriceCycle); err != nil {
		return err
	}
	if _, err := s.cron.Every(s.slowInterval).StartImmediately().Do(s.runFundamentalsCycle); err != nil {
		return err
	}

	s.cron.StartAsync()
	log.Printf("Scheduler started (prices every %s, fundamentals every %s, symbols=%v)",
		s.fastInterval, s.slowInterval, s.symbols)
	return nil
}

// Stop stops the scheduler. Running jobs finish their in-flight calls or
// time out via the per-cycle context.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// runPriceCycle ingests a daily window and an intraday window. The windows
// overlap at instants covered by both; the keyed upsert keeps exactly one
// row per (symbol, timestamp).
func (s *Scheduler) runPriceCycle() {
	log.Println("--- Retrieving price data ---")
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	report := s.pipeline.Ingest(ctx, s.symbols, "60d", "1d")
	log.Printf("Daily price ingest: %s", report.Summary())

	report = s.pipeline.Ingest(ctx, s.symbols, "1d", "5m")
	log.Printf("Intraday price ingest: %s", report.Summary())
}

func (s *Scheduler) runFundamentalsCycle() {
	log.Println("--- Retrieving fundamental data ---")
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	report := s.pipeline.IngestFundamentals(ctx, s.symbols)
	log.Printf("Fundamentals ingest: %s", report.Summary())
}
