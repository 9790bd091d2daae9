// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/procsim/internal/job"
)

func TestPagedAdmitClaimsAllFrames(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 3, 2048)

	res, err := m.Admit(a)
	require.NoError(t, err)
	assert.Equal(t, Admitted, res)
	assert.Len(t, a.Frames, PagedFrameCount)
	assert.Equal(t, 0, a.Frames[0])
	assert.Equal(t, PagedFrameCount-1, a.Frames[len(a.Frames)-1])
}

func TestPagedAdmitNeedsEvictionWhenFull(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 3, 2048)
	b := job.New("B", 0, 3, 4)

	_, _ = m.Admit(a)
	res, err := m.Admit(b)
	require.NoError(t, err)
	assert.Equal(t, NeedsEviction, res)
	assert.Empty(t, b.Frames)
}

func TestPagedReleaseEmitsAscendingFrames(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 3, 2048)
	_, _ = m.Admit(a)

	freed := m.Release(a)
	require.Len(t, freed, PagedFrameCount)
	assert.Equal(t, 0, freed[0])
	assert.Nil(t, a.Frames)
}

func TestPagedEvictPicksLowestLastUsed(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 9, 1024)
	b := job.New("B", 0, 9, 1024)
	c := job.New("C", 0, 9, 1024)

	_, _ = m.Admit(a)
	_, _ = m.Admit(b)
	a.LastUsed = 0
	b.LastUsed = 3

	jobs := []*job.Job{a, b, c}
	victim, freed, err := m.Evict(jobs, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, victim)
	assert.Len(t, freed, 256)
}

func TestPagedEvictTieBreaksOnLowestIndex(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 9, 1024)
	b := job.New("B", 0, 9, 1024)
	c := job.New("C", 0, 9, 1024)

	_, _ = m.Admit(a)
	_, _ = m.Admit(b)
	a.LastUsed = job.NoLastUsed
	b.LastUsed = job.NoLastUsed

	jobs := []*job.Job{a, b, c}
	victim, _, err := m.Evict(jobs, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, victim)
}

func TestPagedEvictExcludesHeadAndFinished(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 9, 1024)
	b := job.New("B", 0, 9, 1024)
	_, err := m.Admit(a)
	require.NoError(t, err)
	_, err = m.Admit(b)
	require.NoError(t, err)
	a.State = job.Finished

	// Both jobs hold frames: A is FINISHED and B is the excluded head.
	jobs := []*job.Job{a, b}
	_, _, err = m.Evict(jobs, 1)
	require.Error(t, err)
}

func TestPagedUtilizationRoundsUp(t *testing.T) {
	m := NewPaged()
	a := job.New("A", 0, 1, 1)
	_, _ = m.Admit(a)
	assert.Equal(t, 1, m.Utilization())
}
