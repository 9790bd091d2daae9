// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package trace emits the line-oriented event log in the exact grammar
// spec.md §6 defines. It holds no state beyond the output stream: it
// never decides what happened, only how to print it.
package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Emitter writes trace lines to an underlying stream.
type Emitter struct {
	w io.Writer
}

// New wraps w as a trace destination.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Running emits a RUNNING line with no memory fields, used by the
// infinite strategy.
func (e *Emitter) Running(t int, name string, remaining int) error {
	_, err := fmt.Fprintf(e.w, "%d,RUNNING,process-name=%s,remaining-time=%d\n", t, name, remaining)
	return err
}

// RunningAt emits a RUNNING line with a contiguous allocation start
// index, used by the first-fit strategy.
func (e *Emitter) RunningAt(t int, name string, remaining, memUsagePct, allocatedAt int) error {
	_, err := fmt.Fprintf(e.w, "%d,RUNNING,process-name=%s,remaining-time=%d,mem-usage=%d%%,allocated-at=%d\n",
		t, name, remaining, memUsagePct, allocatedAt)
	return err
}

// RunningFrames emits a RUNNING line with a frame list, used by the
// paged strategy.
func (e *Emitter) RunningFrames(t int, name string, remaining, memUsagePct int, frames []int) error {
	_, err := fmt.Fprintf(e.w, "%d,RUNNING,process-name=%s,remaining-time=%d,mem-usage=%d%%,mem-frames=%s\n",
		t, name, remaining, memUsagePct, formatFrames(frames))
	return err
}

// Finished emits a FINISHED line. procRemaining is the count of jobs
// still in the queue after removing the finishing job.
func (e *Emitter) Finished(t int, name string, procRemaining int) error {
	_, err := fmt.Fprintf(e.w, "%d,FINISHED,process-name=%s,proc-remaining=%d\n", t, name, procRemaining)
	return err
}

// Evicted emits an EVICTED line listing the frames freed.
func (e *Emitter) Evicted(t int, frames []int) error {
	_, err := fmt.Fprintf(e.w, "%d,EVICTED,evicted-frames=%s\n", t, formatFrames(frames))
	return err
}

func formatFrames(frames []int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range frames {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(f))
	}
	b.WriteByte(']')
	return b.String()
}
