// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package openapispec validates pkg/server's request bodies against an
// OpenAPI 3 schema built in code, instead of hand-rolled field checks.
package openapispec

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// jobSchema describes one entry in a run-creation request's job list.
func jobSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(8)).
		WithProperty("arrival_time", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("service_time", openapi3.NewIntegerSchema().WithMin(1)).
		WithProperty("memory_req", openapi3.NewIntegerSchema().WithMin(1)).
		WithRequired([]string{"name", "arrival_time", "service_time", "memory_req"})
}

// RunRequestSchema describes the POST /runs request body: a strategy
// name, a quantum length, and the job list.
func RunRequestSchema() *openapi3.Schema {
	jobs := openapi3.NewArraySchema()
	jobs.Items = openapi3.NewSchemaRef("", jobSchema())

	return openapi3.NewObjectSchema().
		WithProperty("strategy", openapi3.NewStringSchema().
			WithEnum("infinite", "first-fit", "paged")).
		WithProperty("quantum", openapi3.NewIntegerSchema().WithMin(1)).
		WithPropertyRef("jobs", openapi3.NewSchemaRef("", jobs)).
		WithRequired([]string{"strategy", "quantum", "jobs"})
}

// ValidateRunRequest checks raw JSON request-body bytes against
// RunRequestSchema before the caller unmarshals it into a typed
// request struct, so a malformed body is rejected with a schema
// violation message rather than a zero-valued struct field.
func ValidateRunRequest(body []byte) error {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("openapispec: request body is not valid JSON: %w", err)
	}
	if err := RunRequestSchema().VisitJSON(doc); err != nil {
		return fmt.Errorf("openapispec: request body does not satisfy schema: %w", err)
	}
	return nil
}
