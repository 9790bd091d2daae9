// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package streaming serves a simulation's trace output live over a
// WebSocket connection as it is produced, instead of buffering the
// whole run before responding.
package streaming

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jontk/procsim"
)

// TraceStreamer upgrades a request to a WebSocket and streams one
// message per trace line a simulation run produces.
type TraceStreamer struct {
	sim      *procsim.Simulator
	upgrader websocket.Upgrader
}

// NewTraceStreamer builds a TraceStreamer over sim.
func NewTraceStreamer(sim *procsim.Simulator) *TraceStreamer {
	return &TraceStreamer{
		sim: sim,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Message is one event sent over the WebSocket connection.
type Message struct {
	Type      string    `json:"type"`
	Line      string    `json:"line,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ServeHTTP satisfies http.Handler by delegating to HandleWebSocket,
// so a TraceStreamer can be registered directly as a route handler.
func (ts *TraceStreamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ts.HandleWebSocket(w, r)
}

// HandleWebSocket upgrades the connection, reads one JSON job-list
// request, runs the simulation, and streams each trace line (and the
// closing summary lines) as they are produced.
func (ts *TraceStreamer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ts.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var req runRequest
	if err := conn.ReadJSON(&req); err != nil {
		ts.sendError(conn, "invalid run request: "+err.Error())
		return
	}

	go ts.keepAlive(ctx, conn)
	ts.streamRun(ctx, conn, req)
}

type runRequest struct {
	Jobs []procsim.JobInput `json:"jobs"`
}

// streamRun runs the simulation against a line-forwarding writer and
// relays each completed line over the connection as it arrives.
func (ts *TraceStreamer) streamRun(ctx context.Context, conn *websocket.Conn, req runRequest) {
	lines := make(chan string)
	done := make(chan error, 1)

	go func() {
		_, err := ts.sim.Run(ctx, req.Jobs, &lineWriter{lines: lines})
		close(lines)
		done <- err
	}()

	for line := range lines {
		ts.sendMessage(conn, Message{Type: "line", Line: line, Timestamp: time.Now()})
	}

	if err := <-done; err != nil {
		ts.sendError(conn, err.Error())
		return
	}
	ts.sendMessage(conn, Message{Type: "stream_closed", Timestamp: time.Now()})
}

// lineWriter forwards each Write call (the trace Emitter writes one
// complete line per call) onto a channel of strings.
type lineWriter struct {
	lines chan<- string
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	lw.lines <- strings.TrimRight(string(p), "\n")
	return len(p), nil
}

func (ts *TraceStreamer) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}

func (ts *TraceStreamer) sendError(conn *websocket.Conn, message string) {
	ts.sendMessage(conn, Message{Type: "error", Error: message, Timestamp: time.Now()})
}

func (ts *TraceStreamer) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
