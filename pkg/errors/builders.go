// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// NewConfigError creates a configuration error (spec §7 kind 1):
// unknown strategy, non-positive quantum, or missing job list.
func NewConfigError(code Code, format string, args ...interface{}) *SimError {
	e := newError(code, CategoryConfiguration, fmt.Sprintf(format, args...))
	return e
}

// NewInputError creates an input error (spec §7 kind 2): a malformed
// job record or one that violates a capacity bound. field names which
// job or record the error refers to.
func NewInputError(code Code, field string, format string, args ...interface{}) *SimError {
	e := newError(code, CategoryInput, fmt.Sprintf(format, args...))
	e.Details = field
	return e
}

// NewInvariantError creates an invariant-violation error (spec §7
// kind 3): a bug in the scheduler's own bookkeeping, never a user
// mistake. invariant names the violated rule for the diagnostic.
func NewInvariantError(code Code, invariant string, format string, args ...interface{}) *SimError {
	e := newError(code, CategoryInvariant, fmt.Sprintf(format, args...))
	e.Details = invariant
	return e
}

func newError(code Code, category Category, message string) *SimError {
	return &SimError{
		Code:      code,
		Category:  category,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// As reports whether err is (or wraps) a *SimError, writing it into target.
func As(err error, target **SimError) bool {
	return stderrors.As(err, target)
}

// CodeOf extracts the Code from any error, or "" if err is not a SimError.
func CodeOf(err error) Code {
	var e *SimError
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}
