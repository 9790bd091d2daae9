// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyAuthAcceptsMatchingKey(t *testing.T) {
	v := NewAPIKeyAuth("X-API-Key", "secret")
	assert.Equal(t, "api-key", v.Type())

	req, err := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")

	assert.NoError(t, v.Verify(req))
}

func TestAPIKeyAuthRejectsMissingOrWrongKey(t *testing.T) {
	v := NewAPIKeyAuth("X-API-Key", "secret")

	req, err := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify(req), ErrUnauthorized)

	req.Header.Set("X-API-Key", "wrong")
	assert.ErrorIs(t, v.Verify(req), ErrUnauthorized)
}

func TestAPIKeyAuthDefaultsHeaderName(t *testing.T) {
	v := NewAPIKeyAuth("", "secret")

	req, err := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")

	assert.NoError(t, v.Verify(req))
}

func TestNoAuthAlwaysAccepts(t *testing.T) {
	v := NewNoAuth()
	assert.Equal(t, "none", v.Type())

	req, err := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(req))
}

func TestVerifierInterface(t *testing.T) {
	var _ Verifier = &APIKeyAuth{}
	var _ Verifier = &NoAuth{}
}
