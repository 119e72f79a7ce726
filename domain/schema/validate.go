package schema

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"time"
)

// Validate checks a decoded JSON value against the attribute shape and
// returns a human-readable reason on mismatch. Values are expected in
// encoding/json's default decoding (numbers as float64).
func (a Attr) Validate(value any) error {
	switch a.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %s", jsonTypeName(value))
		}
		return a.validateString(s)
	case "integer":
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected integer, got %s", jsonTypeName(value))
		}
		if f != math.Trunc(f) {
			return fmt.Errorf("expected integer, got non-integral number %v", f)
		}
		return a.validateNumber(f)
	case "number":
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %s", jsonTypeName(value))
		}
		return a.validateNumber(f)
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %s", jsonTypeName(value))
		}
		return a.validateEnum(value)
	case "array":
		arr, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %s", jsonTypeName(value))
		}
		if a.Items != nil {
			for i, item := range arr {
				if err := a.Items.Validate(item); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
		}
		return nil
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %s", jsonTypeName(value))
		}
		for k, prop := range a.Properties {
			v, present := obj[k]
			if !present {
				continue
			}
			if err := prop.Validate(v); err != nil {
				return fmt.Errorf("property %q: %w", k, err)
			}
		}
		return nil
	}
	return fmt.Errorf("unvalidatable attribute type %q", a.Type)
}

func (a Attr) validateString(s string) error {
	if a.MinLength != nil && len(s) < *a.MinLength {
		return fmt.Errorf("shorter than minimum length %d", *a.MinLength)
	}
	if a.MaxLength != nil && len(s) > *a.MaxLength {
		return fmt.Errorf("longer than maximum length %d", *a.MaxLength)
	}
	if a.Pattern != "" {
		// Pattern compiled at parse time; compile error cannot happen here.
		re := regexp.MustCompile(a.Pattern)
		if !re.MatchString(s) {
			return fmt.Errorf("does not match pattern %q", a.Pattern)
		}
	}
	if a.Format != "" {
		if err := validateFormat(a.Format, s); err != nil {
			return err
		}
	}
	return a.validateEnum(s)
}

func (a Attr) validateNumber(f float64) error {
	if a.Minimum != nil && f < *a.Minimum {
		return fmt.Errorf("below minimum %v", *a.Minimum)
	}
	if a.Maximum != nil && f > *a.Maximum {
		return fmt.Errorf("above maximum %v", *a.Maximum)
	}
	return a.validateEnum(f)
}

func (a Attr) validateEnum(value any) error {
	if len(a.Enum) == 0 {
		return nil
	}
	for _, allowed := range a.Enum {
		if reflect.DeepEqual(value, allowed) {
			return nil
		}
	}
	return fmt.Errorf("value %v not in enum", value)
}

var uuidRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func validateFormat(format, s string) error {
	switch format {
	case "email":
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Errorf("not a valid email address")
		}
	case "uri":
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" && u.Path == "" {
			return fmt.Errorf("not a valid URI")
		}
	case "uuid":
		if !uuidRE.MatchString(s) {
			return fmt.Errorf("not a valid UUID")
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("not a valid RFC 3339 timestamp")
		}
	}
	// Unknown formats are ignored, matching JSON Schema's default stance.
	return nil
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}
