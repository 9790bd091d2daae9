// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"math"

	"github.com/jontk/procsim"
)

// ResourceWeights defines the relative importance of CPU and memory
// efficiency in a job's overall score.
type ResourceWeights struct {
	CPU    float64
	Memory float64
}

// DefaultResourceWeights returns standard weights for efficiency
// calculation.
func DefaultResourceWeights() ResourceWeights {
	return ResourceWeights{
		CPU:    0.6, // overhead is driven by CPU wait, so it carries more weight
		Memory: 0.4,
	}
}

// EfficiencyCalculator scores a finished job's resource use: how much
// of its turnaround went to running rather than waiting, and how much
// of the managed capacity its footprint and the arena's utilization
// justify.
type EfficiencyCalculator struct {
	weights ResourceWeights
}

// NewEfficiencyCalculator creates a calculator with default weights.
func NewEfficiencyCalculator() *EfficiencyCalculator {
	return &EfficiencyCalculator{weights: DefaultResourceWeights()}
}

// NewEfficiencyCalculatorWithWeights creates a calculator with custom
// weights, normalized to sum to 1.0.
func NewEfficiencyCalculatorWithWeights(weights ResourceWeights) *EfficiencyCalculator {
	total := weights.CPU + weights.Memory
	if total > 0 {
		weights.CPU /= total
		weights.Memory /= total
	}
	return &EfficiencyCalculator{weights: weights}
}

// CalculateCPUEfficiency is the share of a job's turnaround time spent
// actually running, as a percentage: a job that never waited scores
// 100%, one that waited as long as it ran scores 50%.
func (ec *EfficiencyCalculator) CalculateCPUEfficiency(j procsim.JobOutcome) float64 {
	turnaround := j.CompletionTime - j.ArrivalTime
	if turnaround <= 0 {
		return 100.0
	}
	return math.Min(float64(j.ServiceTime)/float64(turnaround)*100.0, 100.0)
}

// CalculateMemoryEfficiency scores a job's memory footprint against
// the capacity the run's strategy manages. capacityKB is 0 for the
// infinite strategy, where capacity never constrains admission and the
// job scores full marks. Otherwise the score blends the job's own
// share of capacity with how busy the arena ran as a whole, so a job
// that required a large share of a heavily-used arena scores higher
// than one that sat in mostly-idle capacity.
func (ec *EfficiencyCalculator) CalculateMemoryEfficiency(memoryReq, capacityKB, utilizationPercent int) float64 {
	if capacityKB <= 0 {
		return 100.0
	}
	share := math.Min(float64(memoryReq)/float64(capacityKB)*100.0, 100.0)
	return math.Min((share+float64(utilizationPercent))/2.0, 100.0)
}

// CalculateOverallEfficiency blends CPU and memory efficiency per the
// calculator's weights.
func (ec *EfficiencyCalculator) CalculateOverallEfficiency(cpuEff, memEff float64) float64 {
	return cpuEff*ec.weights.CPU + memEff*ec.weights.Memory
}

// BuildRunReport scores every job in result and identifies the best
// and worst performer by overall efficiency.
func (ec *EfficiencyCalculator) BuildRunReport(result *procsim.RunResult) RunEfficiencyReport {
	report := RunEfficiencyReport{Jobs: make([]JobEfficiency, 0, len(result.Jobs))}

	var sum float64
	var worst, best JobEfficiency
	for i, j := range result.Jobs {
		cpuEff := ec.CalculateCPUEfficiency(j)
		memEff := ec.CalculateMemoryEfficiency(j.MemoryReq, result.CapacityKB, result.Utilization)
		overall := ec.CalculateOverallEfficiency(cpuEff, memEff)

		je := JobEfficiency{
			Name: j.Name, CPUEfficiency: round2(cpuEff),
			MemoryEfficiency: round2(memEff), Overall: round2(overall),
		}
		report.Jobs = append(report.Jobs, je)
		sum += overall

		if i == 0 || overall < worst.Overall {
			worst = je
		}
		if i == 0 || overall > best.Overall {
			best = je
		}
	}

	if n := len(result.Jobs); n > 0 {
		report.AverageOverall = round2(sum / float64(n))
		report.WorstJob = worst.Name
		report.BestJob = best.Name
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
