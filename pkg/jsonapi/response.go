package jsonapi

import (
	"encoding/json"
	"net/http"
)

// WriteResource writes a resource document. Documents are bare resource
// objects in this dialect.
func WriteResource(w http.ResponseWriter, status int, r Resource) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(r)
}

// WriteRelationship writes a single relationship block.
func WriteRelationship(w http.ResponseWriter, status int, rel Relationship) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rel)
}

// WriteMeta writes an object response with arbitrary members.
func WriteMeta(w http.ResponseWriter, status int, meta Meta) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(meta)
}

// WriteError writes an error document. The HTTP status is derived from the
// first error's status field.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		errs = []Error{ErrInternal("")}
	}

	status := errs[0].StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorDocument{Errors: errs})
}

// WriteNoContent writes a 204 No Content response (typically for DELETE).
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
