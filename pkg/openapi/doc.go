// Package openapi exposes the contracts used to turn an OpenAPI operation into
// a submittable form: sources, raw documents, and the operation/schema
// wrappers produced by the parser. The kin-openapi backed implementations live
// under internal/openapi so callers never depend on kin-openapi types.
package openapi
