// Package jsonapi provides the JSON:API-flavored document types used on the
// wire. The dialect diverges from the upstream specification in two ways:
// resource documents are returned bare (not wrapped in a data member), and
// linkage objects carry an href resolving to the target resource.
package jsonapi

// Resource is the externally visible form of one resource.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
	Meta          ResourceMeta            `json:"meta"`
}

// ResourceMeta carries the resource timestamps.
type ResourceMeta struct {
	Created      string `json:"created"`
	LastModified string `json:"last-modified"`
	Dangling     []string `json:"dangling,omitempty"` // relationship names holding broken linkages
}

// Relationship is one rendered relationship block: the href of the
// relationship sub-resource plus a single linkage, an array of linkages, or
// null for an unset to-one.
type Relationship struct {
	Self string `json:"self,omitempty"`
	Data any    `json:"data"`
}

// Linkage points at one resource.
type Linkage struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	Href string `json:"href,omitempty"`
	Meta Meta   `json:"meta,omitempty"`
}

// Meta represents arbitrary metadata.
type Meta map[string]any

// Error represents a JSON:API error object.
type Error struct {
	Status string       `json:"status"`
	Code   string       `json:"code"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
	Meta   Meta         `json:"meta,omitempty"`
}

// ErrorSource indicates the source of an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// ErrorDocument is the top-level shape of an error response.
type ErrorDocument struct {
	Errors []Error `json:"errors"`
}

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// resourcesBase is the path under which resources are addressed.
const resourcesBase = "/api/store/resources"

// ResourceHref returns the canonical href of a resource.
func ResourceHref(id string) string {
	return resourcesBase + "/" + id
}

// RelationshipHref returns the href of a relationship sub-resource.
func RelationshipHref(id, rel string) string {
	return resourcesBase + "/" + id + "/" + rel
}
