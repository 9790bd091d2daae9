// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package memory

import "github.com/jontk/procsim/internal/job"

// PagedFrameCount and PagedFrameSizeKB describe the 512-frame, 4 KB
// page pool (spec §3).
const (
	PagedFrameCount  = 512
	PagedFrameSizeKB = 4
)

// Paged is the frame allocator with LRU eviction (spec §4.3.3).
type Paged struct {
	occupied []bool // true = bound to some job
	bound    int
}

// NewPaged returns an empty 512-frame pool.
func NewPaged() *Paged {
	return &Paged{occupied: make([]bool, PagedFrameCount)}
}

func framesNeeded(memoryReqKB int) int {
	return (memoryReqKB + PagedFrameSizeKB - 1) / PagedFrameSizeKB
}

func (m *Paged) Admit(j *job.Job) (Result, error) {
	if len(j.Frames) > 0 {
		return Admitted, nil
	}
	required := framesNeeded(j.MemoryReq)
	if required > PagedFrameCount {
		return 0, admissionImpossible(j.Name, j.MemoryReq, PagedFrameCount*PagedFrameSizeKB)
	}

	free := PagedFrameCount - m.bound
	if free < required {
		return NeedsEviction, nil
	}

	frames := make([]int, 0, required)
	for i := 0; i < PagedFrameCount && len(frames) < required; i++ {
		if !m.occupied[i] {
			m.occupied[i] = true
			frames = append(frames, i)
		}
	}
	m.bound += required
	j.Frames = frames
	j.Alloc = job.NoAllocation
	return Admitted, nil
}

func (m *Paged) Release(j *job.Job) []int {
	if len(j.Frames) == 0 {
		return nil
	}
	freed := append([]int(nil), j.Frames...)
	for _, f := range freed {
		m.occupied[f] = false
	}
	m.bound -= len(freed)
	j.Frames = nil
	j.Alloc = job.NoAllocation
	return freed
}

func (m *Paged) Utilization() int {
	return ceilPercent(m.bound, PagedFrameCount)
}

func (m *Paged) Frames(j *job.Job) []int {
	return j.Frames
}

// Evict finds the resident, non-excluded, non-FINISHED job with the
// smallest last_used (ties broken by lowest job index), frees its
// frames, and returns its index and freed frame list.
func (m *Paged) Evict(jobs []*job.Job, excludeIdx int) (int, []int, error) {
	victim := -1
	for i, jb := range jobs {
		if i == excludeIdx || jb.State == job.Finished || len(jb.Frames) == 0 {
			continue
		}
		if victim == -1 || jb.LastUsed < jobs[victim].LastUsed {
			victim = i
		}
	}
	if victim == -1 {
		return 0, nil, noEvictionVictim()
	}
	freed := m.Release(jobs[victim])
	return victim, freed, nil
}
