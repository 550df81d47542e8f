package spec

import (
	"encoding/json"
	"testing"
)

func mustSchema(t *testing.T, src string) *Schema {
	t.Helper()
	var s Schema
	if err := json.Unmarshal([]byte(src), &s); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return &s
}

func TestSchemaClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		want SchemaKind
	}{
		{"ref", `{"$ref": "#/components/schemas/User"}`, KindRef},
		{"object", `{"type": "object"}`, KindObject},
		{"array", `{"type": "array", "items": {"type": "string"}}`, KindArray},
		{"string", `{"type": "string"}`, KindString},
		{"number", `{"type": "number"}`, KindNumber},
		{"integer", `{"type": "integer"}`, KindInteger},
		{"boolean", `{"type": "boolean"}`, KindBoolean},
		{"null", `{"type": "null"}`, KindNull},
		{"bare enum", `{"enum": ["a", "b"]}`, KindEnum},
		{"oneOf", `{"oneOf": [{"type": "string"}]}`, KindOneOf},
		{"anyOf", `{"anyOf": [{"type": "string"}]}`, KindAnyOf},
		{"allOf", `{"allOf": [{"type": "object"}]}`, KindAllOf},
		{"empty", `{}`, KindAny},
		{"unknown type", `{"type": "tuple"}`, KindAny},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := mustSchema(t, tc.src)
			if s.Kind != tc.want {
				t.Errorf("kind: want %v got %v", tc.want, s.Kind)
			}
		})
	}
}

// $ref wins over a sibling type keyword; a typed schema with an enum keeps its
// declared type as the kind.
func TestSchemaClassificationPrecedence(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{"$ref": "#/components/schemas/User", "type": "object"}`)
	if s.Kind != KindRef {
		t.Errorf("ref should win: got %v", s.Kind)
	}

	s = mustSchema(t, `{"type": "string", "enum": ["a", "b"]}`)
	if s.Kind != KindString {
		t.Errorf("declared type should win over enum: got %v", s.Kind)
	}
	if len(s.Enum) != 2 {
		t.Errorf("enum values must survive: %v", s.Enum)
	}
}

func TestSchemaBareBoolAndNull(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"true", "false", "null"} {
		s := mustSchema(t, src)
		if s.Kind != KindAny {
			t.Errorf("schema %s: want KindAny got %v", src, s.Kind)
		}
	}
}

func TestSchemaPropertyOrderFollowsDocument(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{
		"type": "object",
		"properties": {
			"zulu": {"type": "string"},
			"alpha": {"type": "integer"},
			"mike": {"type": "boolean"}
		},
		"required": ["alpha"]
	}`)

	want := []string{"zulu", "alpha", "mike"}
	if len(s.Properties) != len(want) {
		t.Fatalf("want %d properties, got %d", len(want), len(s.Properties))
	}
	for i, name := range want {
		if s.Properties[i].Name != name {
			t.Errorf("property %d: want %q got %q", i, name, s.Properties[i].Name)
		}
	}
	if !s.IsRequired("alpha") || s.IsRequired("zulu") {
		t.Errorf("required membership wrong: %v", s.Required)
	}
}

func TestSchemaAdditionalProperties(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{"type": "object", "additionalProperties": true}`)
	if s.AdditionalClosed || s.AdditionalProperties != nil {
		t.Errorf("true should behave like absent")
	}

	s = mustSchema(t, `{"type": "object", "additionalProperties": false}`)
	if !s.AdditionalClosed {
		t.Errorf("false should mark the object closed")
	}

	s = mustSchema(t, `{"type": "object", "additionalProperties": {"type": "integer"}}`)
	if s.AdditionalProperties == nil || s.AdditionalProperties.Kind != KindInteger {
		t.Errorf("schema-valued additionalProperties lost: %+v", s.AdditionalProperties)
	}
}

func TestSchemaNestedParsing(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {"id": {"type": "integer"}}
		}
	}`)
	if s.Kind != KindArray || s.Items == nil {
		t.Fatalf("array parse failed: %+v", s)
	}
	if s.Items.Kind != KindObject || len(s.Items.Properties) != 1 {
		t.Errorf("items parse failed: %+v", s.Items)
	}
}
