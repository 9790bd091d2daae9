// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jontk/procsim/pkg/auth"
	"github.com/jontk/procsim/pkg/middleware"
)

// Handler wraps the Server in the standard middleware chain: request
// ID assignment, structured logging, metrics, optional authentication,
// and panic recovery. Pass auth.NewNoAuth() for deployments that don't
// require an API key.
//
// /stream upgrades the connection to a WebSocket via http.Hijacker,
// which http.TimeoutHandler's response writer does not support, so the
// timeout is applied to every other route only.
func (s *Server) Handler(verifier auth.Verifier, timeout time.Duration) http.Handler {
	base := middleware.Chain(
		middleware.WithRequestID(func() string { return uuid.NewString() }),
		middleware.WithRecovery(s.logger),
		middleware.WithLogging(s.logger),
		middleware.WithMetrics(s.metrics),
		middleware.WithAuth(verifier),
	)(s)

	timed := middleware.WithTimeout(timeout)(base)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stream" {
			base.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})
}
