// Package engine provides the API-primary evaluation engine.
// CLI is a thin wrapper around this engine.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"factory-graph/core/graph"
	"factory-graph/core/output"
	"factory-graph/internal/logging"
)

// Loader builds a store from a source, usually a definition file path
type Loader func(source string, opts ...graph.StoreOption) (*graph.Store, error)

// Engine evaluates production graphs. Each source gets its own store, so
// sources can be evaluated concurrently without sharing state.
type Engine struct {
	loader Loader
	config EngineConfig
	logger *zap.Logger
}

// EngineConfig configures the engine
type EngineConfig struct {
	// DefaultStorage is given to items declared without a storage
	DefaultStorage int64

	// MaxConcurrency bounds how many sources are evaluated at once
	MaxConcurrency int
}

// NewEngine creates an engine that reads sources with loader
func NewEngine(loader Loader, config EngineConfig) *Engine {
	if config.MaxConcurrency < 1 {
		config.MaxConcurrency = 1
	}
	return &Engine{
		loader: loader,
		config: config,
		logger: logging.Named("engine"),
	}
}

// EvaluationResult is the outcome for one source
type EvaluationResult struct {
	// Source is the evaluated source
	Source string

	// Report is set when the source loaded and evaluated
	Report *output.Report

	// Err is set when the source could not be loaded or evaluated
	Err error

	// Duration is how long loading and evaluation took
	Duration time.Duration
}

// Evaluate loads and evaluates a single source
func (e *Engine) Evaluate(ctx context.Context, source string) (*output.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store, err := e.loader(source,
		graph.WithDefaultStorage(e.config.DefaultStorage),
		graph.WithLogger(e.logger.Named("store").With(zap.String("source", source))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	return output.BuildReport(source, store)
}

// EvaluateAll evaluates every source. Results are returned in the order of
// sources; a failing source does not stop the others.
func (e *Engine) EvaluateAll(ctx context.Context, sources []string) []EvaluationResult {
	results := make([]EvaluationResult, len(sources))
	p := pool.New().WithMaxGoroutines(e.config.MaxConcurrency)

	for i, source := range sources {
		p.Go(func() {
			start := time.Now()
			report, err := e.Evaluate(ctx, source)
			results[i] = EvaluationResult{
				Source:   source,
				Report:   report,
				Err:      err,
				Duration: time.Since(start),
			}
			if err != nil {
				e.logger.Warn("evaluation failed", zap.String("source", source), zap.Error(err))
				return
			}
			e.logger.Debug("evaluated source",
				zap.String("source", source),
				zap.Bool("cyclic", report.Cyclic),
				zap.Duration("duration", results[i].Duration),
			)
		})
	}

	p.Wait()
	return results
}
