package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaKind is the closed set of JSON Schema shapes the generator handles.
// Anything outside this set parses as KindAny, which every converter renders
// as its opaque type.
type SchemaKind int

const (
	KindAny SchemaKind = iota
	KindRef
	KindObject
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindEnum
	KindOneOf
	KindAnyOf
	KindAllOf
)

func (k SchemaKind) String() string {
	switch k {
	case KindRef:
		return "ref"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindEnum:
		return "enum"
	case KindOneOf:
		return "oneOf"
	case KindAnyOf:
		return "anyOf"
	case KindAllOf:
		return "allOf"
	default:
		return "any"
	}
}

// Property is a named member of an object schema. Property order follows the
// source document so generated declarations are stable across runs.
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is a tagged view over the JSON Schema subset the generator supports.
// Only the fields relevant to Kind are populated; Enum may additionally be set
// on string and number schemas.
type Schema struct {
	Kind SchemaKind

	Ref         string
	Properties  []Property
	Required    []string
	Items       *Schema
	Enum        []any
	OneOf       []*Schema
	AnyOf       []*Schema
	AllOf       []*Schema
	Description string

	// AdditionalProperties is the value schema for property-less objects.
	// nil means the object is fully open unless AdditionalClosed is set.
	AdditionalProperties *Schema
	AdditionalClosed     bool
}

// IsRequired reports membership in the schema's required list. The check is a
// membership test, not order-sensitive.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	// JSON Schema allows bare booleans and null in schema position; both carry
	// no shape information.
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*s = Schema{Kind: KindAny}
		return nil
	}

	var raw struct {
		Ref                  string          `json:"$ref"`
		Type                 string          `json:"type"`
		Properties           json.RawMessage `json:"properties"`
		Required             []string        `json:"required"`
		AdditionalProperties json.RawMessage `json:"additionalProperties"`
		Items                *Schema         `json:"items"`
		Enum                 []any           `json:"enum"`
		OneOf                []*Schema       `json:"oneOf"`
		AnyOf                []*Schema       `json:"anyOf"`
		AllOf                []*Schema       `json:"allOf"`
		Description          string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	out := Schema{
		Ref:         raw.Ref,
		Required:    raw.Required,
		Items:       raw.Items,
		Enum:        raw.Enum,
		OneOf:       raw.OneOf,
		AnyOf:       raw.AnyOf,
		AllOf:       raw.AllOf,
		Description: raw.Description,
	}

	if len(raw.Properties) > 0 {
		props, err := parseProperties(raw.Properties)
		if err != nil {
			return err
		}
		out.Properties = props
	}
	if len(raw.AdditionalProperties) > 0 {
		switch string(bytes.TrimSpace(raw.AdditionalProperties)) {
		case "true":
			// open map, same as absent
		case "false":
			out.AdditionalClosed = true
		default:
			var ap Schema
			if err := json.Unmarshal(raw.AdditionalProperties, &ap); err != nil {
				return fmt.Errorf("schema: additionalProperties: %w", err)
			}
			out.AdditionalProperties = &ap
		}
	}

	out.Kind = classify(raw.Ref, raw.Type, &out)
	*s = out
	return nil
}

// classify picks the variant tag using the same dispatch order as conversion:
// $ref first, then the declared type, then composites, then a bare enum.
func classify(ref, typ string, s *Schema) SchemaKind {
	if ref != "" {
		return KindRef
	}
	switch typ {
	case "object":
		return KindObject
	case "array":
		return KindArray
	case "string":
		return KindString
	case "number":
		return KindNumber
	case "integer":
		return KindInteger
	case "boolean":
		return KindBoolean
	case "null":
		return KindNull
	}
	switch {
	case len(s.OneOf) > 0:
		return KindOneOf
	case len(s.AnyOf) > 0:
		return KindAnyOf
	case len(s.AllOf) > 0:
		return KindAllOf
	case len(s.Enum) > 0:
		return KindEnum
	}
	return KindAny
}

// parseProperties decodes a properties object preserving document key order,
// which encoding/json's map decoding would discard.
func parseProperties(raw json.RawMessage) ([]Property, error) {
	byName := map[string]*Schema{}
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("schema: properties: %w", err)
	}
	order, err := objectKeyOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: properties: %w", err)
	}
	props := make([]Property, 0, len(order))
	for _, name := range order {
		props = append(props, Property{Name: name, Schema: byName[name]})
	}
	return props, nil
}

// objectKeyOrder scans a JSON object and returns its keys in document order.
func objectKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if dd, ok := tok.(json.Delim); ok {
			switch dd {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
