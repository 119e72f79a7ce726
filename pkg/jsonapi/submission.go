package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Submission is a create or update request body.
type Submission struct {
	Data SubmissionData `json:"data"`
}

// SubmissionData is the client-supplied resource payload. Attributes and
// Relationships stay loosely typed; the sanitizer gives them shape.
type SubmissionData struct {
	Type          string                       `json:"type"`
	ID            string                       `json:"id,omitempty"`
	Attributes    map[string]any               `json:"attributes"`
	Relationships map[string]RelationshipInput `json:"relationships"`
}

// RelationshipInput is one submitted relationship value: a linkage ref or an
// array of linkage refs under data.
type RelationshipInput struct {
	Data json.RawMessage `json:"data"`
}

// LinkageRef is a submitted linkage: target id plus optional type hint.
type LinkageRef struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Refs decodes the relationship input. isMany reports whether the client
// submitted an array (to-many shape) rather than a single object.
func (r RelationshipInput) Refs() (refs []LinkageRef, isMany bool, err error) {
	trimmed := bytes.TrimSpace(r.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &refs); err != nil {
			return nil, true, fmt.Errorf("decode linkage array: %w", err)
		}
		for i, ref := range refs {
			if ref.ID == "" {
				return nil, true, fmt.Errorf("linkage %d has no id", i)
			}
		}
		return refs, true, nil
	}

	var ref LinkageRef
	if err := json.Unmarshal(trimmed, &ref); err != nil {
		return nil, false, fmt.Errorf("decode linkage: %w", err)
	}
	if ref.ID == "" {
		return nil, false, fmt.Errorf("linkage has no id")
	}
	return []LinkageRef{ref}, false, nil
}

// DecodeSubmission parses a request body. The data member and its type are
// required for creation; updates pass requireType false.
func DecodeSubmission(body []byte, requireType bool) (Submission, error) {
	var sub Submission
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&sub); err != nil {
		return Submission{}, fmt.Errorf("decode submission: %w", err)
	}
	if requireType && sub.Data.Type == "" {
		return Submission{}, fmt.Errorf("submission data has no type")
	}
	return sub, nil
}
