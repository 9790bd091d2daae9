// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package analytics

import "fmt"

// JobComparison is the result of comparing two already-scored jobs,
// from the same run or different ones.
type JobComparison struct {
	JobA                   string  `json:"job_a"`
	JobB                   string  `json:"job_b"`
	OverallEfficiencyDelta float64 `json:"overall_efficiency_delta"` // B - A; positive means B is better
	CPUEfficiencyDelta     float64 `json:"cpu_efficiency_delta"`
	MemoryEfficiencyDelta  float64 `json:"memory_efficiency_delta"`
	Winner                 string  `json:"winner"` // JobA's name, JobB's name, or "tie"
	Summary                string  `json:"summary"`
}

// tieThreshold is the overall-efficiency delta below which two jobs
// are called a tie rather than crediting noise as a win.
const tieThreshold = 0.5

// CompareJobs compares two already-scored jobs.
func CompareJobs(a, b JobEfficiency) JobComparison {
	cmp := JobComparison{
		JobA: a.Name, JobB: b.Name,
		OverallEfficiencyDelta: round2(b.Overall - a.Overall),
		CPUEfficiencyDelta:     round2(b.CPUEfficiency - a.CPUEfficiency),
		MemoryEfficiencyDelta:  round2(b.MemoryEfficiency - a.MemoryEfficiency),
	}

	switch {
	case cmp.OverallEfficiencyDelta > tieThreshold:
		cmp.Winner = b.Name
	case cmp.OverallEfficiencyDelta < -tieThreshold:
		cmp.Winner = a.Name
	default:
		cmp.Winner = "tie"
	}

	cmp.Summary = fmt.Sprintf(
		"%s scored %.2f%% overall, %s scored %.2f%%: %s",
		a.Name, a.Overall, b.Name, b.Overall, cmp.winnerSummary(),
	)
	return cmp
}

func (cmp JobComparison) winnerSummary() string {
	if cmp.Winner == "tie" {
		return "effectively tied"
	}
	return cmp.Winner + " was more efficient"
}
