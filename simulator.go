// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package procsim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jontk/procsim/internal/job"
	"github.com/jontk/procsim/internal/memory"
	"github.com/jontk/procsim/internal/scheduler"
	"github.com/jontk/procsim/internal/stats"
	"github.com/jontk/procsim/internal/trace"
	"github.com/jontk/procsim/internal/validate"
	"github.com/jontk/procsim/pkg/config"
	"github.com/jontk/procsim/pkg/logging"
	"github.com/jontk/procsim/pkg/metrics"
)

// JobInput is the external, pre-validation record a caller submits for
// one job. It mirrors the fields spec.md §6 requires of an input
// record; Simulator.Run converts a slice of these into the internal
// job.Job representation that carries scheduling state.
type JobInput struct {
	Name        string
	ArrivalTime int
	ServiceTime int
	MemoryReq   int
}

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithLogger attaches a logger for internal diagnostics. It is never
// used for the trace output itself, which Run writes directly to the
// io.Writer the caller supplies.
func WithLogger(logger logging.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithMetrics attaches a metrics.Collector that records run/tick/
// eviction/finish counters as Run executes.
func WithMetrics(collector metrics.Collector) Option {
	return func(s *Simulator) {
		s.metrics = collector
	}
}

// Simulator runs one scheduling simulation per Run call against a
// fixed configuration. A single Simulator can be reused across
// multiple independent runs; no state survives between them.
type Simulator struct {
	cfg     config.Config
	logger  logging.Logger
	metrics metrics.Collector
}

// New validates cfg and returns a Simulator ready to Run. It returns
// the configuration error spec.md §7 kind 1 describes if cfg names an
// unknown strategy or a non-positive quantum.
func New(cfg config.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{cfg: cfg, logger: logging.NoOpLogger{}, metrics: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run validates jobs, simulates them to completion under the
// Simulator's configured strategy and quantum, and writes the trace
// (spec.md §6) followed by the summary statistics (spec.md §4.7) to w.
// It returns the computed Summary for callers that also want it as a
// value rather than re-parsing w.
func (s *Simulator) Run(ctx context.Context, jobs []JobInput, w io.Writer) (*stats.Summary, error) {
	_, summary, _, err := s.run(ctx, jobs, w)
	return summary, err
}

// JobOutcome is one job's resource accounting at the end of a
// RunDetailed call: its input along with where it landed.
type JobOutcome struct {
	Name           string
	ArrivalTime    int
	ServiceTime    int
	MemoryReq      int
	CompletionTime int
}

// RunResult is everything RunDetailed reports beyond the trace text:
// the summary, every job's individual outcome, and the memory
// strategy's capacity and closing utilization, for callers building
// analytics on top of a run (pkg/analytics).
type RunResult struct {
	Summary     *stats.Summary
	Jobs        []JobOutcome
	CapacityKB  int
	Utilization int
}

// RunDetailed behaves exactly like Run, but additionally reports each
// job's final resource outcome and the memory strategy's capacity and
// closing utilization, for callers that score run efficiency.
func (s *Simulator) RunDetailed(ctx context.Context, jobs []JobInput, w io.Writer) (*RunResult, error) {
	internalJobs, summary, mem, err := s.run(ctx, jobs, w)
	if err != nil {
		return nil, err
	}

	outcomes := make([]JobOutcome, len(internalJobs))
	for i, j := range internalJobs {
		outcomes[i] = JobOutcome{
			Name: j.Name, ArrivalTime: j.ArrivalTime, ServiceTime: j.ServiceTime,
			MemoryReq: j.MemoryReq, CompletionTime: j.CompletionTime,
		}
	}

	return &RunResult{
		Summary:     summary,
		Jobs:        outcomes,
		CapacityKB:  capacityKB(s.cfg.Strategy),
		Utilization: mem.Utilization(),
	}, nil
}

func (s *Simulator) run(ctx context.Context, jobs []JobInput, w io.Writer) ([]*job.Job, *stats.Summary, memory.Manager, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	internalJobs := make([]*job.Job, len(jobs))
	for i, in := range jobs {
		internalJobs[i] = job.New(in.Name, in.ArrivalTime, in.ServiceTime, in.MemoryReq)
	}

	if err := validate.Jobs(internalJobs, s.cfg.Strategy); err != nil {
		logging.LogError(s.logger, err, "validate job list")
		return nil, nil, nil, err
	}

	mem, strategy, err := s.newMemoryManager()
	if err != nil {
		return nil, nil, nil, err
	}

	emitter := trace.New(w)
	sched, err := scheduler.New(internalJobs, s.cfg.Quantum, strategy, mem, emitter)
	if err != nil {
		return nil, nil, nil, err
	}
	sched.SetMetrics(s.metrics)

	start := time.Now()
	s.logger.Info("run starting", "strategy", s.cfg.Strategy, "quantum", s.cfg.Quantum, "jobs", len(internalJobs))
	if err := sched.Run(); err != nil {
		logging.LogError(s.logger, err, "run scheduler")
		return nil, nil, nil, err
	}

	summary := stats.Compute(internalJobs)
	if _, err := io.WriteString(w, summary.Format()); err != nil {
		return nil, nil, nil, err
	}
	logging.LogDuration(s.logger.With("makespan", summary.Makespan), start, "run complete")
	return internalJobs, &summary, mem, nil
}

// capacityKB reports the given strategy's total managed capacity, or
// 0 for infinite, where capacity never constrains admission.
func capacityKB(strategy config.Strategy) int {
	switch strategy {
	case config.StrategyFirstFit:
		return memory.ContiguousCapacityKB
	case config.StrategyPaged:
		return memory.PagedFrameCount * memory.PagedFrameSizeKB
	default:
		return 0
	}
}

func (s *Simulator) newMemoryManager() (memory.Manager, scheduler.Strategy, error) {
	switch s.cfg.Strategy {
	case config.StrategyInfinite:
		return memory.NewInfinite(), scheduler.Infinite, nil
	case config.StrategyFirstFit:
		return memory.NewContiguous(), scheduler.FirstFit, nil
	case config.StrategyPaged:
		return memory.NewPaged(), scheduler.Paged, nil
	default:
		return nil, 0, fmt.Errorf("procsim: unknown strategy %q", s.cfg.Strategy)
	}
}
