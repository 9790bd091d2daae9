// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package memory

import "github.com/jontk/procsim/internal/job"

// Infinite grants every admission request unconditionally; it holds no
// state and never evicts (spec §4.3.1).
type Infinite struct{}

// NewInfinite returns a ready-to-use Infinite manager.
func NewInfinite() *Infinite {
	return &Infinite{}
}

func (m *Infinite) Admit(j *job.Job) (Result, error) {
	return Admitted, nil
}

func (m *Infinite) Release(j *job.Job) []int {
	return nil
}

// Utilization is undefined for Infinite; it is never queried by the
// trace emitter, since the infinite strategy emits no memory fields.
func (m *Infinite) Utilization() int {
	return 0
}

func (m *Infinite) Frames(j *job.Job) []int {
	return nil
}

func (m *Infinite) Evict(jobs []*job.Job, excludeIdx int) (int, []int, error) {
	return 0, nil, noEvictionVictim()
}
