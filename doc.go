// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

/*
Package procsim simulates a single-CPU round-robin process scheduler
coupled to one of three memory-allocation strategies: infinite memory,
contiguous first-fit over a fixed arena, or paged allocation with LRU
eviction over a fixed frame pool.

# Overview

A run takes a fixed list of jobs, each with an arrival time, a service
time, and a memory requirement, and replays the scheduler tick by tick
until every job has finished. The simulation is deterministic: the
same job list, quantum, and strategy always produce the same trace and
the same summary statistics.

# Basic usage

	import (
	    "context"
	    "os"

	    "github.com/jontk/procsim"
	    "github.com/jontk/procsim/pkg/config"
	)

	func main() {
	    cfg := config.NewDefault()
	    cfg.Strategy = config.StrategyFirstFit
	    cfg.Quantum = 3

	    sim, err := procsim.New(*cfg)
	    if err != nil {
	        panic(err)
	    }

	    jobs := []procsim.JobInput{
	        {Name: "P1", ArrivalTime: 0, ServiceTime: 6, MemoryReq: 1200},
	        {Name: "P2", ArrivalTime: 1, ServiceTime: 3, MemoryReq: 1200},
	    }

	    if _, err := sim.Run(context.Background(), jobs, os.Stdout); err != nil {
	        panic(err)
	    }
	}

# Errors

New rejects an unknown strategy or a non-positive quantum with
config.ErrUnknownStrategy or config.ErrNonPositiveQuantum. Run's own
errors come in three kinds, distinguished by pkg/errors' Category: a
configuration error (empty job list) or an input error (malformed job
record) aborts before any trace line is written, while an invariant
error reports a bug found mid-run. Callers that need to branch on which kind occurred should use
errors.As against *errors.SimError and inspect its Category or call
its Fatal method.

# Logging

WithLogger attaches a pkg/logging.Logger for internal diagnostics.
This is independent of the trace output, which Run always writes
verbatim to the io.Writer the caller supplies.
*/
package procsim
