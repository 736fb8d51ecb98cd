// Package orchestrator schedules pipeline runs on a fixed cadence.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig configures the pipeline runner.
type RunnerConfig struct {
	Name           string
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RunImmediately bool // Run once immediately before starting the ticker
}

// PipelineRunner invokes the pipeline run function on a ticker. Runs never
// overlap: the loop calls the function synchronously, so a slow run simply
// delays the next tick. Infrastructure failures back the ticker off
// exponentially until a run succeeds again.
type PipelineRunner struct {
	config  RunnerConfig
	fn      func(ctx context.Context) error
	logger  *slog.Logger
	trigger chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPipelineRunner creates a new pipeline runner.
func NewPipelineRunner(config RunnerConfig, fn func(ctx context.Context) error, logger *slog.Logger) *PipelineRunner {
	return &PipelineRunner{
		config:  config,
		fn:      fn,
		logger:  logger,
		trigger: make(chan struct{}, 1),
	}
}

// Start starts the runner in a goroutine.
func (r *PipelineRunner) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.run(runCtx)
	}()
}

// Stop stops the runner and waits for the current run to finish.
func (r *PipelineRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}

	r.wg.Wait()
}

// Trigger requests a run outside the regular cadence. If a trigger is already
// pending the call is a no-op.
func (r *PipelineRunner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// run is the main loop of the runner.
func (r *PipelineRunner) run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "panic in pipeline runner", "runner", r.config.Name, "panic", rec)
		}
	}()

	if r.config.RunImmediately {
		r.runOnce(ctx)
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	backoff := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "pipeline runner stopped", "runner", r.config.Name)
			return
		case <-r.trigger:
			r.logger.InfoContext(ctx, "manual pipeline trigger", "runner", r.config.Name)
			r.runOnce(ctx)
		case <-ticker.C:
			if err := r.fn(ctx); err != nil {
				backoff = r.nextBackoff(backoff)
				r.logger.WarnContext(ctx, "pipeline run failed, backing off",
					"runner", r.config.Name, "backoff", backoff, "error", err)
				ticker.Reset(backoff)

				continue
			}

			if backoff > 0 {
				r.logger.InfoContext(ctx, "backoff cleared, resuming normal interval",
					"runner", r.config.Name)

				backoff = 0

				ticker.Reset(r.config.Interval)
			}
		}
	}
}

func (r *PipelineRunner) runOnce(ctx context.Context) {
	if err := r.fn(ctx); err != nil {
		r.logger.ErrorContext(ctx, "pipeline run failed",
			"runner", r.config.Name, "error", err)
	}
}

// nextBackoff doubles the backoff up to the configured maximum.
func (r *PipelineRunner) nextBackoff(current time.Duration) time.Duration {
	initial := r.config.InitialBackoff
	if initial == 0 {
		initial = 30 * time.Second
	}

	maxB := r.config.MaxBackoff
	if maxB == 0 {
		maxB = 5 * time.Minute
	}

	if current == 0 {
		return initial
	}

	next := current * 2
	if next > maxB {
		return maxB
	}

	return next
}
