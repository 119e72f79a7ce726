package app

import "fmt"

// Validation failure codes. These travel to the client verbatim so callers
// can correct the request programmatically.
const (
	CodeMissingAttribute      = "missing-attribute"
	CodeMalformedAttribute    = "malformed-attribute"
	CodeUnknownAttribute      = "unknown-attribute"
	CodeUnknownRelationship   = "unknown-relationship"
	CodeMalformedRelationship = "malformed-relationship"
	CodeDanglingReference     = "dangling-reference"
	CodeTypeMismatch          = "type-mismatch"
	CodeTypeNotAllowed        = "type-not-allowed"
	CodeReadOnlyRelationship  = "read-only-relationship"
	CodeArityMismatch         = "arity-mismatch"
)

// ValidationError is a client fault found during sanitization. Field is a
// slash path under the submission data ("attributes/name",
// "relationships/children"); Reason is human-readable.
type ValidationError struct {
	Field  string
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s (%s): %s", e.Field, e.Code, e.Reason)
}

func validationErr(code, field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that the operation's target id does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %s not found", e.ID)
}

// RelationshipNotFoundError reports that the resource exists but declares no
// relationship with the requested name.
type RelationshipNotFoundError struct {
	ID  string
	Rel string
}

func (e *RelationshipNotFoundError) Error() string {
	return fmt.Sprintf("resource %s has no relationship %q", e.ID, e.Rel)
}

// DanglingReferenceError reports referential-integrity decay found at render
// time: a stored linkage whose target no longer resolves. Distinct from
// NotFoundError because the requested resource itself exists.
type DanglingReferenceError struct {
	ID     string
	Rel    string
	Target string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("relationship %q of resource %s references missing resource %s", e.Rel, e.ID, e.Target)
}

// SchemaFetchError reports that the schema source was unreachable or
// returned a non-success status.
type SchemaFetchError struct {
	TypeID string
	Err    error
}

func (e *SchemaFetchError) Error() string {
	return fmt.Sprintf("fetch schema for %q: %v", e.TypeID, e.Err)
}

func (e *SchemaFetchError) Unwrap() error { return e.Err }

// SchemaFormatError reports that a fetched schema document could not be
// parsed into the expected shape.
type SchemaFormatError struct {
	TypeID string
	Err    error
}

func (e *SchemaFormatError) Error() string {
	return fmt.Sprintf("malformed schema for %q: %v", e.TypeID, e.Err)
}

func (e *SchemaFormatError) Unwrap() error { return e.Err }
