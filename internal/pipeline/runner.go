// Package pipeline orchestrates the end-to-end retrain run: universe
// resolution, training, calendar synthesis and atomic publication.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/seasonal"
	"github.com/magicstocks/calendar/pkg/logger"
	"github.com/magicstocks/calendar/pkg/metrics"
)

// ErrAlreadyRunning is returned when a retrain is requested while a previous
// run is still in flight. Overlapping requests are skipped, never queued.
var ErrAlreadyRunning = errors.New("retrain already in progress")

// UniverseSource supplies the symbols to train on.
type UniverseSource interface {
	EquitySymbols(ctx context.Context, limit int) []string
	CommoditySymbols() []string
}

// CalendarTrainer fits the seasonal classifier over a symbol set.
type CalendarTrainer interface {
	Train(ctx context.Context, symbols []string) (*seasonal.TrainResult, error)
}

// ArtifactRegistry records published calendar files.
type ArtifactRegistry interface {
	Upsert(ctx context.Context, name, path string, accuracy *float64) error
}

// Options narrows a single run. Symbols overrides the universe entirely;
// Limit caps the equity universe when Symbols is empty.
type Options struct {
	Symbols []string
	Limit   int
}

// Runner executes retrain runs one at a time. A run always terminates with a
// published calendar: model-backed when training succeeds, heuristic
// otherwise.
type Runner struct {
	universe UniverseSource
	trainer  CalendarTrainer
	store    *artifact.Store
	registry ArtifactRegistry // may be nil
	metrics  *metrics.Recorder
	logger   *logger.Logger
	deadline time.Duration
	limit    int

	running atomic.Bool
}

// NewRunner creates a pipeline runner. deadline bounds a whole run; limit is
// the default equity universe cap.
func NewRunner(universe UniverseSource, trainer CalendarTrainer, store *artifact.Store, registry ArtifactRegistry, rec *metrics.Recorder, log *logger.Logger, deadline time.Duration, limit int) *Runner {
	return &Runner{
		universe: universe,
		trainer:  trainer,
		store:    store,
		registry: registry,
		metrics:  rec,
		logger:   log.WithField("module", "pipeline"),
		deadline: deadline,
		limit:    limit,
	}
}

// IsRunning reports whether a retrain run is currently in flight.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// Run executes one full retrain. Returns ErrAlreadyRunning when another run
// holds the guard.
func (r *Runner) Run(ctx context.Context, opts Options) (*artifact.Calendar, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("Retrain requested while a run is in flight, skipping")
		if r.metrics != nil {
			r.metrics.RecordSkipped()
		}
		return nil, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	if r.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.deadline)
		defer cancel()
	}

	started := time.Now()
	symbols := r.resolveSymbols(ctx, opts)
	r.logger.WithField("symbols", len(symbols)).Info("Retrain run started")

	result, err := r.trainer.Train(ctx, symbols)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordRetrain("error", time.Since(started).Seconds())
		}
		return nil, err
	}

	pred := result.Predictor
	mode := "model"
	if result.Degraded() {
		pred = seasonal.NewHeuristicAverager(result.Pooled)
		mode = "heuristic"
	}

	cal := seasonal.Synthesize(pred, result.Accuracy, time.Now().UTC())
	if err := r.publish(ctx, cal); err != nil {
		if r.metrics != nil {
			r.metrics.RecordRetrain("error", time.Since(started).Seconds())
		}
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.RecordRetrain(mode, time.Since(started).Seconds())
	}
	r.logger.WithFields(map[string]interface{}{
		"mode":     mode,
		"symbols":  result.Symbols,
		"examples": result.Examples,
		"elapsed":  time.Since(started).String(),
	}).Info("Retrain run finished")

	return cal, nil
}

// EnsureSeed publishes a neutral all-HOLD calendar when no artifact exists
// yet, so the read path is never empty before the first training run.
func (r *Runner) EnsureSeed(ctx context.Context) error {
	if r.store.Exists() {
		return nil
	}

	r.logger.Info("No calendar artifact found, publishing neutral seed")
	cal := seasonal.Synthesize(seasonal.NewHeuristicAverager(nil), nil, time.Now().UTC())
	return r.publish(ctx, cal)
}

func (r *Runner) resolveSymbols(ctx context.Context, opts Options) []string {
	if len(opts.Symbols) > 0 {
		return opts.Symbols
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = r.limit
	}

	symbols := r.universe.EquitySymbols(ctx, limit)
	return append(symbols, r.universe.CommoditySymbols()...)
}

func (r *Runner) publish(ctx context.Context, cal *artifact.Calendar) error {
	if err := r.store.Save(cal); err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.RecordArtifactWrite()
	}

	if r.registry != nil {
		name := filepath.Base(r.store.Path())
		if err := r.registry.Upsert(ctx, name, r.store.Path(), cal.ModelAccuracy); err != nil {
			// Registry is bookkeeping; a failed upsert never fails the run.
			r.logger.WithError(err).Warn("Calendar registry upsert failed")
		}
	}

	return nil
}
