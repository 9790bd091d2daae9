// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package server exposes procsim's simulation runner over HTTP: submit
// a run, fetch its trace and summary, watch it live over a WebSocket,
// and read aggregate scheduler metrics.
package server

import (
	"sync"

	"github.com/jontk/procsim/internal/stats"
	"github.com/jontk/procsim/pkg/analytics"
)

// runState is a completed or failed run's stored result. Runs execute
// synchronously within the request that created them, so there is no
// "in progress" state to track.
type runState struct {
	ID         string
	Strategy   string
	Quantum    int
	Trace      string
	Summary    *stats.Summary
	Efficiency *analytics.RunEfficiencyReport
	Err        string
}

// runStore holds every run this server process has executed, keyed by
// ID, for later retrieval by GET /runs/{id} and its sub-resources.
type runStore struct {
	mu   sync.RWMutex
	runs map[string]*runState
}

func newRunStore() *runStore {
	return &runStore{runs: make(map[string]*runState)}
}

// put stores run under a caller-generated ID, returning it. The ID is
// generated ahead of the run itself (handleCreateRun) so it can tag
// that run's log lines from the start.
func (s *runStore) put(id string, run *runState) string {
	run.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = run
	return id
}

// get retrieves a run by ID.
func (s *runStore) get(id string) (*runState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

// delete forgets a run by ID.
func (s *runStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
}
