// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package scheduler implements the round-robin CPU scheduler coupled
// to a memory manager: the clock and arrivals (spec §4.4) and the core
// tick state machine (spec §4.5). This is the part of the simulator
// whose exact behavior the trace output is judged against.
package scheduler

import (
	"github.com/jontk/procsim/internal/job"
	"github.com/jontk/procsim/internal/memory"
	"github.com/jontk/procsim/internal/queue"
	"github.com/jontk/procsim/internal/trace"
	simerrors "github.com/jontk/procsim/pkg/errors"
	"github.com/jontk/procsim/pkg/metrics"
)

// Strategy names the memory-management discipline in effect; it
// determines both admission semantics (delegated to memory.Manager)
// and which RUNNING line shape the trace emits.
type Strategy int

const (
	Infinite Strategy = iota
	FirstFit
	Paged
)

func (s Strategy) String() string {
	switch s {
	case Infinite:
		return "infinite"
	case FirstFit:
		return "first-fit"
	case Paged:
		return "paged"
	default:
		return "unknown"
	}
}

// Scheduler runs the simulation loop to completion over a fixed job
// list, a positive quantum, and one memory strategy.
type Scheduler struct {
	jobs     []*job.Job
	quantum  int
	strategy Strategy
	mem      memory.Manager
	emitter  *trace.Emitter
	metrics  metrics.Collector

	queue      *queue.Queue
	hasArrived []bool
	time       int
	finished   int
}

// New validates the configuration and returns a Scheduler ready to Run.
func New(jobs []*job.Job, quantum int, strategy Strategy, mem memory.Manager, emitter *trace.Emitter) (*Scheduler, error) {
	if quantum <= 0 {
		return nil, simerrors.NewConfigError(simerrors.CodeNonPositiveQuantum, "quantum must be positive, got %d", quantum)
	}
	if len(jobs) == 0 {
		return nil, simerrors.NewConfigError(simerrors.CodeMissingJobList, "job list must not be empty")
	}

	return &Scheduler{
		jobs:       jobs,
		quantum:    quantum,
		strategy:   strategy,
		mem:        mem,
		emitter:    emitter,
		metrics:    metrics.NoOpCollector{},
		queue:      queue.New(),
		hasArrived: make([]bool, len(jobs)),
	}, nil
}

// SetMetrics attaches a metrics.Collector for run/tick/eviction
// counters. It is optional; a Scheduler built via New records to a
// no-op collector until this is called.
func (s *Scheduler) SetMetrics(m metrics.Collector) {
	if m == nil {
		m = metrics.NoOpCollector{}
	}
	s.metrics = m
}

// Run executes the simulation to completion, emitting trace lines as
// it goes. It returns once every job has reached FINISHED.
func (s *Scheduler) Run() error {
	s.metrics.RecordRunStart(s.strategy.String())
	for s.finished < len(s.jobs) {
		if err := s.admitArrivals(); err != nil {
			return err
		}

		if s.queue.Empty() {
			next, ok := s.nextArrival()
			if !ok {
				return simerrors.NewInvariantError(
					simerrors.CodeEmptyQueueDequeue,
					"the queue is empty only while jobs remain to arrive",
					"no job remains to arrive but %d job(s) are unfinished", len(s.jobs)-s.finished,
				)
			}
			s.time = next
			continue
		}

		if err := s.runOneTick(); err != nil {
			return err
		}
	}
	s.metrics.RecordRunComplete(s.strategy.String(), s.time)
	return nil
}

// admitArrivals enqueues, in input order, every job whose arrival lies
// in the window (time-quantum, time] and that has not yet arrived
// (spec §4.4).
func (s *Scheduler) admitArrivals() error {
	for i, j := range s.jobs {
		if s.hasArrived[i] {
			continue
		}
		if j.ArrivalTime > s.time-s.quantum && j.ArrivalTime <= s.time {
			s.hasArrived[i] = true
			j.State = job.Ready
			s.queue.Enqueue(i)
		}
	}
	return nil
}

// nextArrival returns the earliest arrival time among jobs not yet
// arrived, used to jump the clock across an idle gap without emitting
// a trace line (spec §6 S5: the idle advance lands exactly on the next
// arrival, not merely on the next quantum boundary).
func (s *Scheduler) nextArrival() (int, bool) {
	found := false
	earliest := 0
	for i, j := range s.jobs {
		if s.hasArrived[i] {
			continue
		}
		if !found || j.ArrivalTime < earliest {
			earliest = j.ArrivalTime
			found = true
		}
	}
	return earliest, found
}

// runOneTick ensures the head's residency, transitions it to RUNNING
// if newly selected, consumes one quantum, and applies the
// end-of-quantum disposition (spec §4.5 steps 2-6).
func (s *Scheduler) runOneTick() error {
	headIdx, err := s.ensureResidency()
	if err != nil {
		return err
	}
	head := s.jobs[headIdx]

	if head.State == job.Ready {
		head.State = job.Running
		if err := s.emitRunning(head); err != nil {
			return err
		}
	}

	head.CPUUsed += s.quantum
	s.time += s.quantum
	head.LastUsed = s.time - s.quantum
	s.metrics.RecordTick(s.strategy.String())

	switch {
	case head.Done():
		return s.finishHead(headIdx, head)
	case s.queue.Len() > 1:
		s.queue.Rotate()
		head.State = job.Ready
	default:
		// Sole resident job: stays at the head, stays RUNNING, no
		// re-emission (spec §4.5 step 6, third branch).
	}
	return nil
}

// ensureResidency loops admission for the queue head, rotating
// (first-fit) or evicting (paged) until it succeeds, and returns the
// index of whichever job ends up admitted (spec §4.5 step 3).
func (s *Scheduler) ensureResidency() (int, error) {
	for {
		headIdx := s.queue.Peek()
		head := s.jobs[headIdx]

		res, err := s.mem.Admit(head)
		if err != nil {
			return 0, err
		}

		switch res {
		case memory.Admitted:
			return headIdx, nil
		case memory.NeedsRotation:
			s.queue.Rotate()
		case memory.NeedsEviction:
			victimIdx, freed, err := s.mem.Evict(s.jobs, headIdx)
			if err != nil {
				return 0, err
			}
			if err := s.emitter.Evicted(s.time, freed); err != nil {
				return 0, err
			}
			s.metrics.RecordEviction(s.strategy.String())
			_ = victimIdx
		}
	}
}

func (s *Scheduler) emitRunning(head *job.Job) error {
	remaining := head.RemainingTime()
	switch s.strategy {
	case Infinite:
		return s.emitter.Running(s.time, head.Name, remaining)
	case FirstFit:
		return s.emitter.RunningAt(s.time, head.Name, remaining, s.mem.Utilization(), head.Alloc)
	case Paged:
		return s.emitter.RunningFrames(s.time, head.Name, remaining, s.mem.Utilization(), s.mem.Frames(head))
	default:
		return simerrors.NewConfigError(simerrors.CodeUnknownStrategy, "unknown strategy %v", s.strategy)
	}
}

func (s *Scheduler) finishHead(headIdx int, head *job.Job) error {
	head.State = job.Finished
	head.CompletionTime = s.time

	freed := s.mem.Release(head)
	if s.strategy == Paged && len(freed) > 0 {
		if err := s.emitter.Evicted(s.time, freed); err != nil {
			return err
		}
	}

	s.queue.Dequeue()
	procRemaining := s.queue.Len()
	if err := s.emitter.Finished(s.time, head.Name, procRemaining); err != nil {
		return err
	}
	s.finished++
	s.metrics.RecordJobFinish(s.strategy.String(), head.CompletionTime-head.ArrivalTime)
	return nil
}
