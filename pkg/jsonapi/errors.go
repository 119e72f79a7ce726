package jsonapi

import (
	"fmt"
	"strconv"
)

// ErrorBuilder provides a fluent API for building Error objects.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new ErrorBuilder with the given status, code, and title.
func NewError(status int, code, title string) *ErrorBuilder {
	return &ErrorBuilder{
		err: Error{
			Status: strconv.Itoa(status),
			Code:   code,
			Title:  title,
		},
	}
}

// Detail sets the error detail message.
func (b *ErrorBuilder) Detail(detail string) *ErrorBuilder {
	b.err.Detail = detail
	return b
}

// Detailf sets the error detail message with formatting.
func (b *ErrorBuilder) Detailf(format string, args ...any) *ErrorBuilder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// Pointer sets the JSON pointer to the source of the error.
// Example: "/data/attributes/email"
func (b *ErrorBuilder) Pointer(pointer string) *ErrorBuilder {
	if b.err.Source == nil {
		b.err.Source = &ErrorSource{}
	}
	b.err.Source.Pointer = pointer
	return b
}

// Meta adds metadata to the error.
func (b *ErrorBuilder) Meta(key string, value any) *ErrorBuilder {
	if b.err.Meta == nil {
		b.err.Meta = make(Meta)
	}
	b.err.Meta[key] = value
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() Error {
	return b.err
}

// StatusCode returns the HTTP status code as an int.
func (e Error) StatusCode() int {
	code, _ := strconv.Atoi(e.Status)
	return code
}

// Common error constructors

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(detail string) Error {
	return NewError(400, "bad_request", "Bad Request").Detail(detail).Build()
}

// ErrNotJSON creates a 415 error for unsupported request media types.
func ErrNotJSON(contentType string) Error {
	return NewError(415, "not_json", "Unsupported Media Type").
		Detailf("expected JSON request body, got %q", contentType).
		Build()
}

// ErrUnauthorized creates a 401 Unauthorized error.
func ErrUnauthorized(detail string) Error {
	if detail == "" {
		detail = "Authentication required"
	}
	return NewError(401, "unauthorized", "Unauthorized").Detail(detail).Build()
}

// ErrNotFound creates a 404 Not Found error for a resource id.
func ErrNotFound(id string) Error {
	return NewError(404, "not_found", "Not Found").
		Detailf("resource %s not found", id).
		Build()
}

// ErrRelationshipNotFound creates a 404 error for an unknown relationship.
func ErrRelationshipNotFound(id, rel string) Error {
	return NewError(404, "relationship_not_found", "Not Found").
		Detailf("resource %s has no relationship %q", id, rel).
		Build()
}

// ErrValidation creates a 400 error for a sanitization failure. The pointer
// names the offending field so callers can correct the request.
func ErrValidation(code, field, reason string) Error {
	return NewError(400, code, "Invalid Submission").
		Detail(reason).
		Pointer("/data/" + field).
		Build()
}

// ErrDanglingReference creates a 500 error for referential-integrity decay:
// a stored linkage whose target no longer resolves.
func ErrDanglingReference(id, rel string) Error {
	return NewError(500, "dangling_reference", "Dangling Reference").
		Detailf("relationship %q of resource %s references a resource that no longer exists", rel, id).
		Build()
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(detail string) Error {
	if detail == "" {
		detail = "An internal error occurred"
	}
	return NewError(500, "internal_error", "Internal Server Error").Detail(detail).Build()
}

// ErrSchemaUnavailable creates a 502 error for schema source faults.
func ErrSchemaUnavailable(typeID string) Error {
	return NewError(502, "schema_unavailable", "Schema Unavailable").
		Detailf("the schema for type %q could not be loaded", typeID).
		Build()
}
