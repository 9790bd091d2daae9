// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jontk/procsim"
	"github.com/jontk/procsim/internal/openapispec"
	"github.com/jontk/procsim/internal/scenario"
	"github.com/jontk/procsim/pkg/analytics"
	"github.com/jontk/procsim/pkg/analytics/history"
	"github.com/jontk/procsim/pkg/config"
	procctx "github.com/jontk/procsim/pkg/context"
	"github.com/jontk/procsim/pkg/logging"
	"github.com/jontk/procsim/pkg/metrics"
	"github.com/jontk/procsim/pkg/performance"
	"github.com/jontk/procsim/pkg/pool"
	"github.com/jontk/procsim/pkg/streaming"
)

// Server wires the HTTP API around a run store and the dependencies
// every run needs: a logger and a metrics collector shared across runs.
type Server struct {
	store      *runStore
	logger     logging.Logger
	metrics    metrics.Collector
	caches     *performance.CacheManager
	cache      *performance.ResponseCache
	efficiency *analytics.EfficiencyCalculator
	history    *history.Tracker
	fetcher    *scenario.Fetcher
	conns      *pool.ConnectionManager
	router     *mux.Router
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger sets the logger every run and request uses.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics collector every run records into.
func WithMetrics(collector metrics.Collector) Option {
	return func(s *Server) { s.metrics = collector }
}

// WithCacheProfile sizes every cache this server manages for the given
// workload profile instead of the balanced default.
func WithCacheProfile(profile performance.PerformanceProfile) Option {
	return func(s *Server) {
		s.caches = performance.NewCacheManager(performance.GetCacheConfigForProfile(profile))
		s.cache = s.caches.GetCache("analytics")
	}
}

// New builds a Server with its routes registered.
func New(opts ...Option) *Server {
	caches := performance.NewCacheManager(performance.DefaultCacheConfig())
	s := &Server{
		store:      newRunStore(),
		logger:     logging.NoOpLogger{},
		metrics:    metrics.NoOpCollector{},
		caches:     caches,
		cache:      caches.GetCache("analytics"),
		efficiency: analytics.NewEfficiencyCalculator(),
		history:    history.NewTracker(history.DefaultWindow),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.fetcher = scenario.NewFetcher(s.logger)
	s.conns = pool.NewConnectionManager(s.fetcher.Pool(), nil, s.logger)
	s.conns.Start()

	s.router = mux.NewRouter().StrictSlash(true)
	s.routes()
	return s
}

// Close stops the Server's background connection-pool maintenance. A
// serve process should defer this alongside shutting down its
// http.Server.
func (s *Server) Close() {
	s.conns.Stop()
}

// ServeHTTP satisfies http.Handler, delegating to the registered router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/runs", s.handleCreateRun).Methods(http.MethodPost)
	s.router.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods(http.MethodDelete)
	s.router.HandleFunc("/runs/{id}/trace", s.handleGetTrace).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id}/analytics", s.handleGetAnalytics).Methods(http.MethodGet)
	s.router.HandleFunc("/analytics/trend", s.handleAnalyticsTrend).Methods(http.MethodGet)
	s.router.HandleFunc("/analytics/cache", s.handleInvalidateAnalyticsCache).Methods(http.MethodDelete)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	s.router.HandleFunc("/stream", s.handleStream)
}

// jobPayload is one job entry in a run-creation request.
type jobPayload struct {
	Name        string `json:"name"`
	ArrivalTime int    `json:"arrival_time"`
	ServiceTime int    `json:"service_time"`
	MemoryReq   int    `json:"memory_req"`
}

// createRunRequest is a POST /runs request body. A request supplies
// either an inline Jobs list or a ScenarioURL for the server to fetch
// and decode itself; ScenarioURL, when set, overrides Strategy/Quantum
// with the fetched document's own run configuration.
type createRunRequest struct {
	Strategy    string       `json:"strategy"`
	Quantum     int          `json:"quantum"`
	Jobs        []jobPayload `json:"jobs"`
	ScenarioURL string       `json:"scenario_url"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var req createRunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id := uuid.NewString()
	ctx, cancel := procctx.WithTimeout(r.Context(), procctx.OpWrite, nil)
	defer cancel()
	ctx = context.WithValue(ctx, "run_id", id)
	runLogger := s.logger.WithContext(ctx)

	var cfg config.Config
	var jobs []procsim.JobInput
	if req.ScenarioURL != "" {
		doc, err := s.fetcher.FetchRemote(ctx, req.ScenarioURL)
		if err != nil {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("fetching scenario: %v", err))
			return
		}
		cfg = doc.Config()
		jobs, err = doc.JobInputs()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		if err := openapispec.ValidateRunRequest(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg = config.Config{Strategy: config.Strategy(req.Strategy), Quantum: req.Quantum}
		jobs = make([]procsim.JobInput, len(req.Jobs))
		for i, j := range req.Jobs {
			jobs[i] = procsim.JobInput{
				Name: j.Name, ArrivalTime: j.ArrivalTime,
				ServiceTime: j.ServiceTime, MemoryReq: j.MemoryReq,
			}
		}
	}

	sim, err := procsim.New(cfg, procsim.WithLogger(runLogger), procsim.WithMetrics(s.metrics))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var trace bytes.Buffer
	result, runErr := sim.RunDetailed(ctx, jobs, &trace)
	if runErr != nil {
		runErr = procctx.WrapContextError(runErr, "run simulation", procctx.DefaultTimeoutConfig().Write)
	}

	run := &runState{Strategy: string(cfg.Strategy), Quantum: cfg.Quantum, Trace: trace.String()}
	if runErr != nil {
		run.Err = runErr.Error()
	} else {
		run.Summary = result.Summary
		report := s.efficiency.BuildRunReport(result)
		run.Efficiency = &report
	}
	s.store.put(id, run)
	if runErr == nil {
		s.history.Record(id, *run.Efficiency)
	}

	if runErr != nil {
		status := http.StatusUnprocessableEntity
		if procctx.IsContextError(ctx.Err()) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, map[string]string{"id": id, "error": runErr.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, runResponse(run))
}

type runResponseBody struct {
	ID         string      `json:"id"`
	Strategy   string      `json:"strategy"`
	Quantum    int         `json:"quantum"`
	Summary    interface{} `json:"summary,omitempty"`
	Efficiency interface{} `json:"efficiency,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func runResponse(run *runState) runResponseBody {
	return runResponseBody{
		ID: run.ID, Strategy: run.Strategy, Quantum: run.Quantum,
		Summary: run.Summary, Efficiency: run.Efficiency, Error: run.Err,
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, runResponse(run))
}

// handleDeleteRun forgets a completed run and evicts its cached
// analytics response so nothing can serve a stale hit under the same
// ID afterward.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.get(id); !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.store.delete(id)
	s.cache.Delete("run.analytics", map[string]interface{}{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// handleInvalidateAnalyticsCache drops every cached analytics response
// across all runs, forcing the next GET .../analytics for each to
// recompute from its stored summary — an operator's escape hatch for
// when GetDetailedStats shows entries living longer than expected.
func (s *Server) handleInvalidateAnalyticsCache(w http.ResponseWriter, r *http.Request) {
	removed := s.cache.InvalidatePattern("run.analytics:*")
	writeJSON(w, http.StatusOK, map[string]int{"invalidated": removed})
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, run.Trace)
}

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cacheParams := map[string]interface{}{"id": id}

	if cached, hit := s.cache.Get("run.analytics", cacheParams); hit {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	run, ok := s.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if run.Summary == nil {
		writeError(w, http.StatusUnprocessableEntity, "run did not complete")
		return
	}

	body, _ := json.Marshal(map[string]interface{}{
		"avg_turnaround": run.Summary.AvgTurnaround,
		"max_overhead":   run.Summary.MaxOverhead,
		"avg_overhead":   run.Summary.AvgOverhead,
		"makespan":       run.Summary.Makespan,
		"efficiency":     run.Efficiency,
	})
	s.cache.Set("run.analytics", cacheParams, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleAnalyticsTrend reports whether average run efficiency across
// the server's recent history is improving, degrading, or holding
// steady, plus any run whose score stands out as an outlier.
func (s *Server) handleAnalyticsTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trend":     s.history.Trend(),
		"anomalies": s.history.Anomalies(),
		"samples":   s.history.Samples(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	cacheStats := interface{}(s.cache.GetStats())
	if r.URL.Query().Get("detailed") == "true" {
		cacheStats = s.cache.GetDetailedStats()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  s.metrics.GetStats(),
		"cache": cacheStats,
	})
}

// handleStream upgrades to a WebSocket that runs one simulation live,
// configured by the strategy and quantum query parameters (defaulting
// to infinite memory and a quantum of 1).
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	strategy := config.Strategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = config.StrategyInfinite
	}
	quantum := 1
	if q, err := strconv.Atoi(r.URL.Query().Get("quantum")); err == nil && q > 0 {
		quantum = q
	}

	sim, err := procsim.New(config.Config{Strategy: strategy, Quantum: quantum},
		procsim.WithLogger(s.logger), procsim.WithMetrics(s.metrics))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := procctx.WithTimeout(r.Context(), procctx.OpWatch, nil)
	defer cancel()

	streaming.NewTraceStreamer(sim).HandleWebSocket(w, r.WithContext(ctx))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
