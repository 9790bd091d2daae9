// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package memory

import "github.com/jontk/procsim/internal/job"

// ContiguousCapacityKB is the size of the first-fit arena (spec §3).
const ContiguousCapacityKB = 2048

// Contiguous is the first-fit allocator over a dense KB bitmap. It
// never evicts: a job that does not fit waits behind the jobs that do
// (spec §4.3.2).
type Contiguous struct {
	cells     []bool // true = allocated
	allocated int
}

// NewContiguous returns an empty 2048 KB arena.
func NewContiguous() *Contiguous {
	return &Contiguous{cells: make([]bool, ContiguousCapacityKB)}
}

func (m *Contiguous) Admit(j *job.Job) (Result, error) {
	if j.Alloc != job.NoAllocation {
		return Admitted, nil
	}
	if j.MemoryReq > ContiguousCapacityKB {
		return 0, admissionImpossible(j.Name, j.MemoryReq, ContiguousCapacityKB)
	}

	start, ok := m.firstFit(j.MemoryReq)
	if !ok {
		return NeedsRotation, nil
	}

	for i := start; i < start+j.MemoryReq; i++ {
		m.cells[i] = true
	}
	m.allocated += j.MemoryReq
	j.Alloc = start
	return Admitted, nil
}

func (m *Contiguous) firstFit(size int) (int, bool) {
	run := 0
	for i, used := range m.cells {
		if used {
			run = 0
			continue
		}
		run++
		if run == size {
			return i - size + 1, true
		}
	}
	return 0, false
}

func (m *Contiguous) Release(j *job.Job) []int {
	if j.Alloc == job.NoAllocation {
		return nil
	}
	for i := j.Alloc; i < j.Alloc+j.MemoryReq; i++ {
		m.cells[i] = false
	}
	m.allocated -= j.MemoryReq
	j.Alloc = job.NoAllocation
	return nil
}

func (m *Contiguous) Utilization() int {
	return ceilPercent(m.allocated, ContiguousCapacityKB)
}

func (m *Contiguous) Frames(j *job.Job) []int {
	return nil
}

// Evict is never invoked under first-fit; there is no eviction victim
// to select because the strategy has no eviction discipline.
func (m *Contiguous) Evict(jobs []*job.Job, excludeIdx int) (int, []int, error) {
	return 0, nil, noEvictionVictim()
}

func ceilPercent(used, capacity int) int {
	if capacity == 0 {
		return 0
	}
	return (used*100 + capacity - 1) / capacity
}
