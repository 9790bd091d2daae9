// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package scenario loads a job list and run configuration from a
// JSON or YAML document, either from local bytes or fetched from a
// remote URL, and converts it into the records procsim.Simulator.Run
// consumes.
package scenario

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jontk/procsim"
	"github.com/jontk/procsim/pkg/config"
)

// JobRecord is one job as it appears in a scenario document. MemoryReq
// is a string so documents can use unit suffixes (ParseKB); JobInputs
// converts it to the KB integer job.Job carries.
type JobRecord struct {
	Name        string `json:"name" yaml:"name"`
	ArrivalTime int    `json:"arrival_time" yaml:"arrival_time"`
	ServiceTime int    `json:"service_time" yaml:"service_time"`
	MemoryReq   string `json:"memory_req" yaml:"memory_req"`
}

// Document is the top-level shape of a scenario file: the run
// configuration plus the job list.
type Document struct {
	Strategy config.Strategy `json:"strategy" yaml:"strategy"`
	Quantum  int             `json:"quantum" yaml:"quantum"`
	Jobs     []JobRecord     `json:"jobs" yaml:"jobs"`
}

// Format names a scenario document's encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Decode parses raw scenario bytes in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("scenario: unknown format %d", format)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario: decode failed: %w", err)
	}
	return &doc, nil
}

// Config extracts the run configuration the document describes.
func (d *Document) Config() config.Config {
	return config.Config{Strategy: d.Strategy, Quantum: d.Quantum}
}

// JobInputs converts the document's job records into the inputs
// procsim.Simulator.Run accepts, resolving each MemoryReq string to
// kilobytes.
func (d *Document) JobInputs() ([]procsim.JobInput, error) {
	jobs := make([]procsim.JobInput, len(d.Jobs))
	for i, rec := range d.Jobs {
		kb, err := ParseKB(rec.MemoryReq)
		if err != nil {
			return nil, fmt.Errorf("scenario: job %q: %w", rec.Name, err)
		}
		jobs[i] = procsim.JobInput{
			Name:        rec.Name,
			ArrivalTime: rec.ArrivalTime,
			ServiceTime: rec.ServiceTime,
			MemoryReq:   kb,
		}
	}
	return jobs, nil
}
