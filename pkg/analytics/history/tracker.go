// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package history tracks a server's efficiency scores across
// successive runs and reports whether they are trending up, down, or
// holding steady.
package history

import (
	"math"
	"sync"

	"github.com/jontk/procsim/pkg/analytics"
)

// DefaultWindow is the number of recent runs Tracker retains when none
// is specified.
const DefaultWindow = 20

// Sample is one completed run's efficiency snapshot, retained in the
// order it was recorded.
type Sample struct {
	RunID          string  `json:"run_id"`
	AverageOverall float64 `json:"average_overall"`
}

// Trend describes the direction average efficiency is moving across
// the tracker's retained samples.
type Trend struct {
	Direction   string  `json:"direction"` // "improving", "degrading", or "stable"
	SlopePerRun float64 `json:"slope_per_run"`
}

// improvingSlope and degradingSlope bound the least-squares slope
// Trend calls "stable" rather than a real trend.
const (
	improvingSlope = 0.5
	degradingSlope = -0.5
)

// Tracker keeps a bounded window of recent run efficiency samples and
// reports the trend and any outliers among them.
type Tracker struct {
	mu      sync.Mutex
	window  int
	samples []Sample
}

// NewTracker creates a tracker retaining at most window samples.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{window: window}
}

// Record appends a run's report as a new sample, evicting the oldest
// sample once the window is full.
func (t *Tracker) Record(runID string, report analytics.RunEfficiencyReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, Sample{RunID: runID, AverageOverall: report.AverageOverall})
	if len(t.samples) > t.window {
		t.samples = t.samples[len(t.samples)-t.window:]
	}
}

// Samples returns a copy of the currently retained samples, oldest
// first.
func (t *Tracker) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Trend computes the least-squares slope of average efficiency across
// recorded samples. Fewer than two samples reports "stable" with a
// zero slope, since a trend needs at least two points.
func (t *Tracker) Trend() Trend {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) < 2 {
		return Trend{Direction: "stable"}
	}

	slope := leastSquaresSlope(t.samples)
	direction := "stable"
	switch {
	case slope > improvingSlope:
		direction = "improving"
	case slope < degradingSlope:
		direction = "degrading"
	}
	return Trend{Direction: direction, SlopePerRun: round2(slope)}
}

// Anomalies returns samples whose average efficiency deviates from the
// window's mean by more than two standard deviations. Fewer than three
// samples never reports an anomaly, since a deviation needs a
// meaningful baseline to compare against.
func (t *Tracker) Anomalies() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) < 3 {
		return nil
	}

	mean, stddev := meanAndStddev(t.samples)
	if stddev == 0 {
		return nil
	}

	var anomalies []Sample
	for _, s := range t.samples {
		if math.Abs(s.AverageOverall-mean) > 2*stddev {
			anomalies = append(anomalies, s)
		}
	}
	return anomalies
}

func leastSquaresSlope(samples []Sample) float64 {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range samples {
		x := float64(i)
		y := s.AverageOverall
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func meanAndStddev(samples []Sample) (mean, stddev float64) {
	n := float64(len(samples))
	var sum float64
	for _, s := range samples {
		sum += s.AverageOverall
	}
	mean = sum / n

	var variance float64
	for _, s := range samples {
		d := s.AverageOverall - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
