// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/procsim/pkg/logging"
)

func TestFetchRemoteSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(jsonDoc))
	}))
	defer srv.Close()

	f := NewFetcher(logging.NoOpLogger{})
	doc, err := f.FetchRemote(context.Background(), srv.URL+"/scenario.json")
	require.NoError(t, err)
	require.Len(t, doc.Jobs, 2)
}

func TestFetchRemoteRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(jsonDoc))
	}))
	defer srv.Close()

	f := NewFetcher(logging.NoOpLogger{})
	doc, err := f.FetchRemote(context.Background(), srv.URL+"/scenario.json")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 2)
	require.Len(t, doc.Jobs, 2)
}

func TestFetchRemoteGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(logging.NoOpLogger{})
	_, err := f.FetchRemote(context.Background(), srv.URL+"/scenario.json")
	assert.Error(t, err)
}
