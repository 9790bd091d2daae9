// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package memory implements the three memory-allocation strategies a
// run can select: infinite, contiguous first-fit over a 2048 KB arena,
// and paged with least-recently-used eviction over 512 4 KB frames.
// All three share the Manager interface so the scheduler can branch
// once on the selected strategy at startup and otherwise stay ignorant
// of allocation internals.
package memory

import (
	"github.com/jontk/procsim/internal/job"
	simerrors "github.com/jontk/procsim/pkg/errors"
)

// Result is the outcome of an admission attempt.
type Result int

const (
	// Admitted means the job now holds enough memory to run.
	Admitted Result = iota
	// NeedsRotation means first-fit found no run of free cells large
	// enough; the scheduler must rotate the queue and retry.
	NeedsRotation
	// NeedsEviction means paged found insufficient free frames; the
	// scheduler must evict an LRU victim and retry.
	NeedsEviction
)

func (r Result) String() string {
	switch r {
	case Admitted:
		return "ADMITTED"
	case NeedsRotation:
		return "NEEDS_ROTATION"
	case NeedsEviction:
		return "NEEDS_EVICTION"
	default:
		return "UNKNOWN"
	}
}

// Manager is the strategy-specific admission/eviction interface shared
// by all three variants (spec §4.3).
type Manager interface {
	// Admit attempts to give j enough resident memory to run.
	Admit(j *job.Job) (Result, error)

	// Release frees j's allocation and returns the frame indices freed,
	// in ascending order, for the caller to report as an EVICTED trace
	// line. Strategies without frames return nil.
	Release(j *job.Job) []int

	// Utilization returns the percentage of capacity currently bound,
	// rounded up. Infinite never reports a meaningful value.
	Utilization() int

	// Frames returns j's currently held frame indices in ascending
	// order, or nil for strategies that do not page memory.
	Frames(j *job.Job) []int

	// Evict selects the LRU victim among jobs (excluding index
	// excludeIdx, and any FINISHED job), frees its memory, and returns
	// its index and the frame indices freed in ascending order.
	// Strategies without eviction never call this from the scheduler;
	// calling it anyway is an invariant violation.
	Evict(jobs []*job.Job, excludeIdx int) (victimIdx int, freed []int, err error)
}

func admissionImpossible(name string, req, capacity int) error {
	return simerrors.NewInvariantError(
		simerrors.CodeAdmissionImpossible,
		"memory_req <= capacity",
		"job %q requires %d KB, which exceeds the %d KB capacity", name, req, capacity,
	)
}

func noEvictionVictim() error {
	return simerrors.NewInvariantError(
		simerrors.CodeNoEvictionVictim,
		"an evictable resident job exists when eviction is requested",
		"no non-running resident job available to evict",
	)
}
