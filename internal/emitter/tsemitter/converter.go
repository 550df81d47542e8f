package tsemitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openrpckit/openrpcgen/internal/naming"
	"github.com/openrpckit/openrpcgen/internal/spec"
	"github.com/openrpckit/openrpcgen/internal/typereg"
)

// opaque is the TypeScript fallback for shapes the converter cannot express.
// Conversion never fails; one malformed sub-schema must not abort the run.
const opaque = "any"

// Converter turns JSON Schema subtrees into TypeScript type expressions,
// accumulating named interface declarations in its registry. The traversal
// mirrors the Go converter; only the emission rules differ (TypeScript has
// inline object literals and literal unions).
type Converter struct {
	schemas map[string]*spec.Schema
	reg     *typereg.Registry
}

func NewConverter(components spec.Components, reg *typereg.Registry) *Converter {
	return &Converter{schemas: components.Schemas, reg: reg}
}

func (c *Converter) Registry() *typereg.Registry { return c.reg }

// Convert returns the TypeScript type expression for s, registering an
// exported interface under typeName when s is an object with properties.
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
	case spec.KindNumber, spec.KindInteger:
		if len(s.Enum) > 0 {
			return c.convertEnum(s.Enum)
		}
		return "number"
	case spec.KindBoolean:
		return "boolean"
	case spec.KindNull:
		return "null"
	case spec.KindEnum:
		return c.convertEnum(s.Enum)
	case spec.KindOneOf:
		return c.convertUnion(s.OneOf)
	case spec.KindAnyOf:
		return c.convertUnion(s.AnyOf)
	case spec.KindAllOf:
		return c.convertAllOf(s.AllOf, typeName)
	default:
		return opaque
	}
}

// ResolveRef returns the type name for a local schema reference, registering
// the target's declaration on first sight. The name is valid before its body
// is bound, which is what breaks reference cycles. Unresolvable references
// degrade to the opaque type.
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
		switch {
		case s.AdditionalProperties != nil:
			return fmt.Sprintf("Record<string, %s>", c.Convert(s.AdditionalProperties, ""))
		case s.AdditionalClosed:
			return "Record<string, never>"
		default:
			return "Record<string, any>"
		}
	}

	if typeName != "" {
		if !c.reg.Reserve(typeName) {
			return typeName
		}
		fields := c.interfaceFields(s, typeName)
		decl := fmt.Sprintf("export interface %s {\n%s\n}", typeName, strings.Join(fields, "\n"))
		c.reg.Bind(typeName, decl)
		return typeName
	}

	// Inline literal; only used transiently, e.g. while merging allOf
	// branches or for unnamed union members.
	fields := c.interfaceFields(s, "")
	return "{\n" + strings.Join(fields, "\n") + "\n}"
}

func (c *Converter) interfaceFields(s *spec.Schema, parent string) []string {
	fields := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		optional := "?"
		if s.IsRequired(p.Name) {
			optional = ""
		}
		propType := c.fieldType(p.Schema, p.Name, parent)
		name := p.Name
		if needsQuotes(name) {
			name = strconv.Quote(name)
		}
		fields = append(fields, fmt.Sprintf("  %s%s: %s;", name, optional, propType))
	}
	return fields
}

// fieldType derives the member type, materializing named interfaces for
// nested objects and arrays of objects when a parent name is available.
func (c *Converter) fieldType(prop *spec.Schema, jsonName, parent string) string {
	if prop == nil {
		return opaque
	}
	if parent == "" {
		return c.Convert(prop, "")
	}
	ident := naming.FieldIdentifier(jsonName)
	switch prop.Kind {
	case spec.KindObject:
		if len(prop.Properties) > 0 {
			return c.Convert(prop, naming.CompositeTypeName(parent, jsonName))
		}
	case spec.KindArray:
		items := prop.Items
		if items != nil && items.Kind == spec.KindObject && len(items.Properties) > 0 {
			base := ident
			if strings.HasSuffix(base, "s") && len(base) > 1 {
				base = base[:len(base)-1]
			}
			return c.Convert(items, parent+base) + "[]"
		}
	}
	return c.Convert(prop, "")
}

func (c *Converter) convertArray(s *spec.Schema) string {
	if s.Items == nil {
		return "any[]"
	}
	itemType := c.Convert(s.Items, "")
	if strings.Contains(itemType, "|") || strings.Contains(itemType, "&") {
		return fmt.Sprintf("Array<%s>", itemType)
	}
	return itemType + "[]"
}

// convertEnum renders homogeneous enums as literal unions; mixed or empty
// value lists degrade to the opaque type.
func (c *Converter) convertEnum(values []any) string {
	if len(values) == 0 {
		return opaque
	}
	literals := make([]string, 0, len(values))
	allStrings, allNumbers := true, true
	for _, v := range values {
		switch val := v.(type) {
		case string:
			allNumbers = false
			literals = append(literals, strconv.Quote(val))
		case float64:
			allStrings = false
			literals = append(literals, strconv.FormatFloat(val, 'f', -1, 64))
		default:
			return opaque
		}
	}
	if !allStrings && !allNumbers {
		return opaque
	}
	return strings.Join(literals, " | ")
}

// convertUnion combines branches as an unordered union. No discriminant is
// inferred; branches are structurally independent.
func (c *Converter) convertUnion(branches []*spec.Schema) string {
	if len(branches) == 0 {
		return opaque
	}
	parts := make([]string, 0, len(branches))
	for _, b := range branches {
		parts = append(parts, c.Convert(b, ""))
	}
	return strings.Join(parts, " | ")
}

// convertAllOf merges branch properties into one synthetic object schema,
// later branches winning key collisions. A ref branch abandons the merge and
// the composite degrades to the opaque type.
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

// needsQuotes reports whether a property name must be quoted in a TypeScript
// interface.
func needsQuotes(name string) bool {
	if name == "" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			continue
		}
		return true
	}
	return false
}
