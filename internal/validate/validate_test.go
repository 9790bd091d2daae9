// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/procsim/internal/job"
	"github.com/jontk/procsim/pkg/config"
	simerrors "github.com/jontk/procsim/pkg/errors"
)

func TestJobsAcceptsValidList(t *testing.T) {
	jobs := []*job.Job{
		job.New("P1", 0, 6, 100),
		job.New("P2", 1, 3, 100),
	}
	assert.NoError(t, Jobs(jobs, config.StrategyInfinite))
}

func TestJobsRejectsNonPositiveServiceTime(t *testing.T) {
	jobs := []*job.Job{job.New("P1", 0, 0, 100)}
	err := Jobs(jobs, config.StrategyInfinite)
	require.Error(t, err)
	assert.Equal(t, simerrors.CodeNonPositiveService, simerrors.CodeOf(err))
}

func TestJobsRejectsDuplicateNames(t *testing.T) {
	jobs := []*job.Job{
		job.New("P1", 0, 3, 100),
		job.New("P1", 1, 3, 100),
	}
	err := Jobs(jobs, config.StrategyInfinite)
	require.Error(t, err)
	assert.Equal(t, simerrors.CodeDuplicateName, simerrors.CodeOf(err))
}

func TestJobsRejectsNameTooLong(t *testing.T) {
	jobs := []*job.Job{job.New("P123456789", 0, 3, 100)}
	err := Jobs(jobs, config.StrategyInfinite)
	require.Error(t, err)
	assert.Equal(t, simerrors.CodeNameTooLong, simerrors.CodeOf(err))
}

func TestJobsRejectsMemoryExceedingFirstFitCapacity(t *testing.T) {
	jobs := []*job.Job{job.New("P1", 0, 3, 2049)}
	err := Jobs(jobs, config.StrategyFirstFit)
	require.Error(t, err)
	assert.Equal(t, simerrors.CodeMemoryExceedsCapacity, simerrors.CodeOf(err))
}

func TestJobsRejectsMemoryExceedingPagedCapacity(t *testing.T) {
	jobs := []*job.Job{job.New("P1", 0, 3, 2049)}
	err := Jobs(jobs, config.StrategyPaged)
	require.Error(t, err)
	assert.Equal(t, simerrors.CodeMemoryExceedsCapacity, simerrors.CodeOf(err))
}

func TestJobsAllowsLargeMemoryUnderInfiniteStrategy(t *testing.T) {
	jobs := []*job.Job{job.New("P1", 0, 3, 1_000_000)}
	assert.NoError(t, Jobs(jobs, config.StrategyInfinite))
}
