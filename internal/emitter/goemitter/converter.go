package goemitter

import (
	"fmt"
	"strings"

	"github.com/openrpckit/openrpcgen/internal/naming"
	"github.com/openrpckit/openrpcgen/internal/spec"
	"github.com/openrpckit/openrpcgen/internal/typereg"
)

// opaque is the fallback for every shape the converter cannot express. No
// conversion path fails: a malformed sub-schema must not abort a whole-spec
// run.
const opaque = "interface{}"

// Converter turns JSON Schema subtrees into Go type expressions, accumulating
// named struct declarations in its registry. One Converter exists per
// generation run; the registry is shared across all conversions in that run so
// a schema referenced by several methods is emitted exactly once.
type Converter struct {
	schemas map[string]*spec.Schema
	reg     *typereg.Registry
}

func NewConverter(components spec.Components, reg *typereg.Registry) *Converter {
	return &Converter{schemas: components.Schemas, reg: reg}
}

// Registry exposes the run's accumulated declarations.
func (c *Converter) Registry() *typereg.Registry { return c.reg }

// Convert returns the Go type expression for s. When typeName is non-empty
// and s is an object with properties, the declaration is registered under
// that name and the name is returned.
func (c *Converter) Convert(s *spec.Schema, typeName string) string {
	if s == nil {
		return opaque
	}
	switch s.Kind {
	case spec.KindRef:
		return c.ResolveRef(s.Ref)
	case spec.KindObject:
		return c.convertObject(s, typeName)
	case spec.KindArray:
		return c.convertArray(s)
	case spec.KindString:
		if len(s.Enum) > 0 {
			return c.convertEnum(s.Enum)
		}
		return "string"
	case spec.KindInteger:
		if len(s.Enum) > 0 {
			return c.convertEnum(s.Enum)
		}
		return "int64"
	case spec.KindNumber:
		if len(s.Enum) > 0 {
			return c.convertEnum(s.Enum)
		}
		return "float64"
	case spec.KindBoolean:
		return "bool"
	case spec.KindNull:
		return opaque
	case spec.KindEnum:
		return c.convertEnum(s.Enum)
	case spec.KindOneOf, spec.KindAnyOf:
		// Go has no untagged unions; branches collapse to the opaque type.
		return opaque
	case spec.KindAllOf:
		return c.convertAllOf(s.AllOf, typeName)
	default:
		return opaque
	}
}

// ResolveRef returns the Go type name for a local schema reference,
// registering the target's declaration on first sight. The name is valid as a
// forward declaration, so a ref inside a cycle resolves without re-entering
// conversion. Unresolvable references degrade to the opaque type.
func (c *Converter) ResolveRef(ref string) string {
	const prefix = "#/components/schemas/"
	if !strings.HasPrefix(ref, prefix) {
		return opaque
	}
	name := ref[strings.LastIndex(ref, "/")+1:]
	if c.reg.Has(name) {
		return name
	}
	target, ok := c.schemas[name]
	if !ok {
		return opaque
	}
	c.Convert(target, name)
	return name
}

func (c *Converter) convertObject(s *spec.Schema, typeName string) string {
	if len(s.Properties) == 0 {
		if s.AdditionalProperties != nil {
			return "map[string]" + c.Convert(s.AdditionalProperties, "")
		}
		return "map[string]interface{}"
	}

	if typeName == "" {
		// No hint means no stable name to register under; degrade to an open
		// map rather than invent one.
		return "map[string]interface{}"
	}
	if !c.reg.Reserve(typeName) {
		return typeName
	}
	fields := c.StructFields(s.Properties, s, typeName)
	c.reg.Bind(typeName, structDecl(typeName, fields))
	return typeName
}

// StructFields renders the field lines for an object schema's properties.
// parent is the enclosing declaration's name; nested objects and arrays of
// objects get composite named types derived from it.
func (c *Converter) StructFields(props []spec.Property, s *spec.Schema, parent string) []string {
	fields := make([]string, 0, len(props))
	for _, p := range props {
		required := s.IsRequired(p.Name)
		goName := naming.FieldIdentifier(p.Name)
		goType := c.FieldType(p.Schema, goName, parent)
		fields = append(fields, fieldLine(p.Name, goName, goType, required))
	}
	return fields
}

// FieldType determines the Go type for a struct field. With a parent name,
// nested object schemas and arrays of objects are materialized as named
// composite types instead of anonymous maps.
func (c *Converter) FieldType(prop *spec.Schema, goName, parent string) string {
	if prop == nil {
		return opaque
	}
	if parent == "" {
		return c.Convert(prop, "")
	}
	switch prop.Kind {
	case spec.KindObject:
		if len(prop.Properties) > 0 {
			return c.Convert(prop, naming.CompositeTypeName(parent, goName))
		}
	case spec.KindArray:
		items := prop.Items
		if items != nil && items.Kind == spec.KindObject && len(items.Properties) > 0 {
			// Singular form of the field name: Items -> Item, Results -> Result.
			base := goName
			if strings.HasSuffix(base, "s") && len(base) > 1 {
				base = base[:len(base)-1]
			}
			return "[]" + c.Convert(items, parent+base)
		}
	}
	return c.Convert(prop, "")
}

func (c *Converter) convertArray(s *spec.Schema) string {
	if s.Items == nil {
		return "[]interface{}"
	}
	return "[]" + c.Convert(s.Items, "")
}

// convertEnum maps homogeneous enums to their backing primitive; mixed or
// empty value lists degrade to the opaque type. Named const blocks are not
// generated for inline enums.
func (c *Converter) convertEnum(values []any) string {
	if len(values) == 0 {
		return opaque
	}
	allStrings, allNumbers := true, true
	for _, v := range values {
		switch v.(type) {
		case string:
			allNumbers = false
		case float64, int, int64:
			allStrings = false
		case nil:
			allStrings = false
		default:
			return opaque
		}
	}
	switch {
	case allStrings:
		return "string"
	case allNumbers:
		return "int64"
	default:
		return opaque
	}
}

// convertAllOf merges all branch properties and required sets into one
// synthetic object schema. Later branches overwrite earlier ones on key
// collision, keeping the first occurrence's position. A ref branch abandons
// the merge: cross-reference merging is not attempted and the whole composite
// degrades to the opaque type.
func (c *Converter) convertAllOf(branches []*spec.Schema, typeName string) string {
	var merged []spec.Property
	position := map[string]int{}
	var required []string
	seenRequired := map[string]struct{}{}

	for _, branch := range branches {
		if branch == nil {
			continue
		}
		if branch.Kind == spec.KindRef {
			return opaque
		}
		for _, p := range branch.Properties {
			if i, ok := position[p.Name]; ok {
				merged[i] = p
				continue
			}
			position[p.Name] = len(merged)
			merged = append(merged, p)
		}
		for _, r := range branch.Required {
			if _, ok := seenRequired[r]; ok {
				continue
			}
			seenRequired[r] = struct{}{}
			required = append(required, r)
		}
	}

	if len(merged) == 0 {
		return opaque
	}
	synthetic := &spec.Schema{
		Kind:       spec.KindObject,
		Properties: merged,
		Required:   required,
	}
	return c.convertObject(synthetic, typeName)
}

func structDecl(name string, fields []string) string {
	return fmt.Sprintf("type %s struct {\n%s\n}", name, strings.Join(fields, "\n"))
}

// fieldLine renders one struct field. Optional scalar and struct fields become
// pointers so absence is representable; slices, maps, and the opaque type are
// already nullable.
func fieldLine(jsonName, goName, goType string, required bool) string {
	if !required && !strings.HasPrefix(goType, "*") && !strings.HasPrefix(goType, "[]") &&
		!strings.HasPrefix(goType, "map[") && !strings.HasPrefix(goType, "interface") {
		goType = "*" + goType
	}
	omitempty := ""
	if !required {
		omitempty = ",omitempty"
	}
	return fmt.Sprintf("\t%s %s `json:\"%s%s\"`", goName, goType, jsonName, omitempty)
}
