// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package stats computes the end-of-run performance summary (spec §4.7):
// average turnaround, worst-case and average overhead, and makespan.
package stats

import (
	"fmt"
	"math"

	"github.com/jontk/procsim/internal/job"
)

// Summary holds the three reported statistics.
type Summary struct {
	AvgTurnaround int
	MaxOverhead   float64
	AvgOverhead   float64
	Makespan      int
}

// Compute derives a Summary from a job list whose every entry has
// reached FINISHED. Passing a non-FINISHED job is a caller bug.
func Compute(jobs []*job.Job) Summary {
	n := len(jobs)
	var turnaroundSum int
	var overheadSum float64
	var maxOverhead float64
	var makespan int

	for _, j := range jobs {
		turnaround := j.CompletionTime - j.ArrivalTime
		turnaroundSum += turnaround

		overhead := float64(turnaround) / float64(j.ServiceTime)
		overheadSum += overhead
		if overhead > maxOverhead {
			maxOverhead = overhead
		}
		if j.CompletionTime > makespan {
			makespan = j.CompletionTime
		}
	}

	return Summary{
		AvgTurnaround: ceilDivInt(turnaroundSum, n),
		MaxOverhead:   roundTo2(maxOverhead),
		AvgOverhead:   roundTo2(overheadSum / float64(n)),
		Makespan:      makespan,
	}
}

// Format renders the three statistics lines exactly as spec.md §6
// requires: integer turnaround and makespan, two-decimal overheads.
func (s Summary) Format() string {
	return fmt.Sprintf(
		"Turnaround time %d\nTime overhead %.2f %.2f\nMakespan %d\n",
		s.AvgTurnaround, s.MaxOverhead, s.AvgOverhead, s.Makespan,
	)
}

func ceilDivInt(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
