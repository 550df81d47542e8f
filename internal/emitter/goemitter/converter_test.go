package goemitter

import (
	"strings"
	"testing"

	"github.com/openrpckit/openrpcgen/internal/spec"
	"github.com/openrpckit/openrpcgen/internal/typereg"
)

func newTestConverter(schemas map[string]*spec.Schema) *Converter {
	return NewConverter(spec.Components{Schemas: schemas}, typereg.New())
}

func TestConvertPrimitives(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	cases := []struct {
		schema *spec.Schema
		want   string
	}{
		{&spec.Schema{Kind: spec.KindString}, "string"},
		{&spec.Schema{Kind: spec.KindInteger}, "int64"},
		{&spec.Schema{Kind: spec.KindNumber}, "float64"},
		{&spec.Schema{Kind: spec.KindBoolean}, "bool"},
		{&spec.Schema{Kind: spec.KindNull}, "interface{}"},
		{&spec.Schema{Kind: spec.KindAny}, "interface{}"},
		{nil, "interface{}"},
	}
	for _, tc := range cases {
		if got := conv.Convert(tc.schema, ""); got != tc.want {
			t.Errorf("Convert(%+v): want %q got %q", tc.schema, tc.want, got)
		}
	}
}

func TestConvertArray(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	s := &spec.Schema{Kind: spec.KindArray, Items: &spec.Schema{Kind: spec.KindString}}
	if got := conv.Convert(s, ""); got != "[]string" {
		t.Errorf("got %q", got)
	}
	s = &spec.Schema{Kind: spec.KindArray}
	if got := conv.Convert(s, ""); got != "[]interface{}" {
		t.Errorf("itemless array: got %q", got)
	}
}

func TestConvertObjectRegistersDecl(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	s := &spec.Schema{
		Kind: spec.KindObject,
		Properties: []spec.Property{
			{Name: "userId", Schema: &spec.Schema{Kind: spec.KindInteger}},
			{Name: "name", Schema: &spec.Schema{Kind: spec.KindString}},
		},
		Required: []string{"userId"},
	}
	if got := conv.Convert(s, "User"); got != "User" {
		t.Fatalf("got %q", got)
	}
	decls := conv.Registry().Decls()
	if len(decls) != 1 {
		t.Fatalf("want 1 decl, got %d", len(decls))
	}
	decl := decls[0]
	if !strings.Contains(decl, "UserID int64 `json:\"userId\"`") {
		t.Errorf("required field wrong:\n%s", decl)
	}
	if !strings.Contains(decl, "Name *string `json:\"name,omitempty\"`") {
		t.Errorf("optional field should be a pointer with omitempty:\n%s", decl)
	}

	// Converting the same schema under the same name must not duplicate.
	conv.Convert(s, "User")
	if got := len(conv.Registry().Decls()); got != 1 {
		t.Errorf("duplicate registration: %d decls", got)
	}
}

func TestConvertObjectWithoutName(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	s := &spec.Schema{
		Kind:       spec.KindObject,
		Properties: []spec.Property{{Name: "x", Schema: &spec.Schema{Kind: spec.KindString}}},
	}
	if got := conv.Convert(s, ""); got != "map[string]interface{}" {
		t.Errorf("nameless object: got %q", got)
	}

	open := &spec.Schema{Kind: spec.KindObject}
	if got := conv.Convert(open, "Ignored"); got != "map[string]interface{}" {
		t.Errorf("property-less object: got %q", got)
	}

	typed := &spec.Schema{Kind: spec.KindObject, AdditionalProperties: &spec.Schema{Kind: spec.KindInteger}}
	if got := conv.Convert(typed, ""); got != "map[string]int64" {
		t.Errorf("typed map: got %q", got)
	}
}

func TestConvertNestedCompositeNames(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	s := &spec.Schema{
		Kind: spec.KindObject,
		Properties: []spec.Property{
			{Name: "profile", Schema: &spec.Schema{
				Kind:       spec.KindObject,
				Properties: []spec.Property{{Name: "bio", Schema: &spec.Schema{Kind: spec.KindString}}},
			}},
			{Name: "orders", Schema: &spec.Schema{
				Kind: spec.KindArray,
				Items: &spec.Schema{
					Kind:       spec.KindObject,
					Properties: []spec.Property{{Name: "total", Schema: &spec.Schema{Kind: spec.KindNumber}}},
				},
			}},
		},
		Required: []string{"profile", "orders"},
	}
	conv.Convert(s, "User")

	reg := conv.Registry()
	for _, name := range []string{"User", "UserProfile", "UserOrder"} {
		if !reg.Has(name) {
			t.Errorf("missing composite decl %q", name)
		}
	}
	decls := reg.Decls()
	if len(decls) != 3 {
		t.Fatalf("want 3 decls, got %d", len(decls))
	}
	if !strings.Contains(decls[0], "Orders []UserOrder `json:\"orders\"`") {
		t.Errorf("array-of-objects field wrong:\n%s", decls[0])
	}
}

func TestResolveRef(t *testing.T) {
	t.Parallel()

	schemas := map[string]*spec.Schema{
		"Pet": {
			Kind:       spec.KindObject,
			Properties: []spec.Property{{Name: "name", Schema: &spec.Schema{Kind: spec.KindString}}},
		},
	}
	conv := newTestConverter(schemas)

	if got := conv.ResolveRef("#/components/schemas/Pet"); got != "Pet" {
		t.Errorf("got %q", got)
	}
	if !conv.Registry().Has("Pet") {
		t.Errorf("ref target not registered")
	}
	if got := conv.ResolveRef("#/components/schemas/Missing"); got != "interface{}" {
		t.Errorf("missing target: got %q", got)
	}
	if got := conv.ResolveRef("#/definitions/Pet"); got != "interface{}" {
		t.Errorf("foreign prefix: got %q", got)
	}
}

// A schema that references itself must terminate with a single declaration.
func TestResolveRefCycle(t *testing.T) {
	t.Parallel()

	schemas := map[string]*spec.Schema{
		"Node": {
			Kind: spec.KindObject,
			Properties: []spec.Property{
				{Name: "value", Schema: &spec.Schema{Kind: spec.KindString}},
				{Name: "children", Schema: &spec.Schema{
					Kind:  spec.KindArray,
					Items: &spec.Schema{Kind: spec.KindRef, Ref: "#/components/schemas/Node"},
				}},
			},
			Required: []string{"value"},
		},
	}
	conv := newTestConverter(schemas)

	if got := conv.ResolveRef("#/components/schemas/Node"); got != "Node" {
		t.Fatalf("got %q", got)
	}
	decls := conv.Registry().Decls()
	if len(decls) != 1 {
		t.Fatalf("cycle should register exactly one decl, got %d", len(decls))
	}
	if !strings.Contains(decls[0], "Children []Node `json:\"children,omitempty\"`") {
		t.Errorf("self reference wrong:\n%s", decls[0])
	}
}

func TestConvertEnums(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	cases := []struct {
		values []any
		want   string
	}{
		{[]any{"a", "b"}, "string"},
		{[]any{float64(1), float64(2)}, "int64"},
		{[]any{"a", float64(1)}, "interface{}"},
		{[]any{nil, "a"}, "interface{}"},
		{nil, "interface{}"},
	}
	for _, tc := range cases {
		s := &spec.Schema{Kind: spec.KindEnum, Enum: tc.values}
		if got := conv.Convert(s, ""); got != tc.want {
			t.Errorf("enum %v: want %q got %q", tc.values, tc.want, got)
		}
	}

	// Enum on a typed schema narrows the same way.
	s := &spec.Schema{Kind: spec.KindString, Enum: []any{"x"}}
	if got := conv.Convert(s, ""); got != "string" {
		t.Errorf("typed enum: got %q", got)
	}
}

func TestConvertUnionsDegrade(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	one := &spec.Schema{Kind: spec.KindOneOf, OneOf: []*spec.Schema{{Kind: spec.KindString}}}
	if got := conv.Convert(one, ""); got != "interface{}" {
		t.Errorf("oneOf: got %q", got)
	}
	anyOf := &spec.Schema{Kind: spec.KindAnyOf, AnyOf: []*spec.Schema{{Kind: spec.KindString}}}
	if got := conv.Convert(anyOf, ""); got != "interface{}" {
		t.Errorf("anyOf: got %q", got)
	}
}

func TestConvertAllOfMerges(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	s := &spec.Schema{
		Kind: spec.KindAllOf,
		AllOf: []*spec.Schema{
			{
				Kind: spec.KindObject,
				Properties: []spec.Property{
					{Name: "id", Schema: &spec.Schema{Kind: spec.KindInteger}},
					{Name: "label", Schema: &spec.Schema{Kind: spec.KindString}},
				},
				Required: []string{"id"},
			},
			{
				Kind: spec.KindObject,
				Properties: []spec.Property{
					// Overrides the earlier label but keeps its position.
					{Name: "label", Schema: &spec.Schema{Kind: spec.KindInteger}},
					{Name: "extra", Schema: &spec.Schema{Kind: spec.KindBoolean}},
				},
				Required: []string{"label"},
			},
		},
	}
	if got := conv.Convert(s, "Merged"); got != "Merged" {
		t.Fatalf("got %q", got)
	}
	decl := conv.Registry().Decls()[0]
	idIdx := strings.Index(decl, "ID ")
	labelIdx := strings.Index(decl, "Label ")
	extraIdx := strings.Index(decl, "Extra ")
	if idIdx < 0 || labelIdx < 0 || extraIdx < 0 || !(idIdx < labelIdx && labelIdx < extraIdx) {
		t.Errorf("merge order wrong:\n%s", decl)
	}
	if !strings.Contains(decl, "Label int64 `json:\"label\"`") {
		t.Errorf("later branch should win the collision:\n%s", decl)
	}
}

func TestConvertAllOfDegrades(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(nil)
	withRef := &spec.Schema{
		Kind: spec.KindAllOf,
		AllOf: []*spec.Schema{
			{Kind: spec.KindRef, Ref: "#/components/schemas/Base"},
			{Kind: spec.KindObject, Properties: []spec.Property{{Name: "x", Schema: &spec.Schema{Kind: spec.KindString}}}},
		},
	}
	if got := conv.Convert(withRef, "WithRef"); got != "interface{}" {
		t.Errorf("ref branch should abandon the merge: got %q", got)
	}

	empty := &spec.Schema{Kind: spec.KindAllOf, AllOf: []*spec.Schema{{Kind: spec.KindString}}}
	if got := conv.Convert(empty, "Empty"); got != "interface{}" {
		t.Errorf("propertyless merge: got %q", got)
	}
}
