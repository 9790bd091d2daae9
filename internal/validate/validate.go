// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package validate checks a job list against the input-error rules
// spec.md §6-7 define, before a run is allowed to start.
package validate

import (
	"regexp"

	"github.com/jontk/procsim/internal/job"
	"github.com/jontk/procsim/internal/memory"
	"github.com/jontk/procsim/pkg/config"
	simerrors "github.com/jontk/procsim/pkg/errors"
)

const maxNameLength = 8

var nameRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Jobs validates every record in jobs against spec.md §6's input
// contract: unique 1-8 character alphanumeric names, non-negative
// arrival times, positive service times, and memory requirements
// bounded by the capacity the selected strategy enforces.
func Jobs(jobs []*job.Job, strategy config.Strategy) error {
	seen := make(map[string]bool, len(jobs))

	for _, j := range jobs {
		if j.Name == "" || !nameRE.MatchString(j.Name) {
			return simerrors.NewInputError(
				simerrors.CodeMalformedRecord, j.Name,
				"job name %q must be alphanumeric", j.Name,
			)
		}
		if len(j.Name) > maxNameLength {
			return simerrors.NewInputError(
				simerrors.CodeNameTooLong, j.Name,
				"job name %q exceeds %d characters", j.Name, maxNameLength,
			)
		}
		if seen[j.Name] {
			return simerrors.NewInputError(
				simerrors.CodeDuplicateName, j.Name,
				"job name %q is not unique across the run", j.Name,
			)
		}
		seen[j.Name] = true

		if j.ArrivalTime < 0 {
			return simerrors.NewInputError(
				simerrors.CodeMalformedRecord, j.Name,
				"job %q has a negative arrival time %d", j.Name, j.ArrivalTime,
			)
		}
		if j.ServiceTime <= 0 {
			return simerrors.NewInputError(
				simerrors.CodeNonPositiveService, j.Name,
				"job %q has a non-positive service time %d", j.Name, j.ServiceTime,
			)
		}
		if j.MemoryReq <= 0 {
			return simerrors.NewInputError(
				simerrors.CodeMalformedRecord, j.Name,
				"job %q has a non-positive memory requirement %d", j.Name, j.MemoryReq,
			)
		}

		if err := checkCapacity(j, strategy); err != nil {
			return err
		}
	}
	return nil
}

func checkCapacity(j *job.Job, strategy config.Strategy) error {
	var capacity int
	switch strategy {
	case config.StrategyFirstFit:
		capacity = memory.ContiguousCapacityKB
	case config.StrategyPaged:
		capacity = memory.PagedFrameCount * memory.PagedFrameSizeKB
	default:
		return nil
	}
	if j.MemoryReq > capacity {
		return simerrors.NewInputError(
			simerrors.CodeMemoryExceedsCapacity, j.Name,
			"job %q requires %d KB, which exceeds the %d KB capacity", j.Name, j.MemoryReq, capacity,
		)
	}
	return nil
}
