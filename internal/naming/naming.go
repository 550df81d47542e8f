// Package naming converts JSON field, method, and namespace names into
// exported target-language identifiers. All transformations are deterministic:
// the same input always yields the same identifier.
package naming

import "strings"

// acronyms are rendered fully upper-cased inside identifiers (userId -> UserID).
var acronyms = map[string]struct{}{
	"id": {}, "url": {}, "uri": {}, "api": {}, "http": {}, "https": {},
	"json": {}, "rpc": {}, "sql": {}, "db": {}, "ip": {}, "ui": {},
	"uuid": {}, "html": {}, "xml": {}, "csv": {},
}

// FieldIdentifier converts a JSON field name to an exported identifier,
// upper-casing recognized acronyms:
//
//	userId    -> UserID
//	created_at -> CreatedAt
//	url       -> URL
func FieldIdentifier(jsonName string) string {
	words := splitWords(jsonName)
	if len(words) == 0 {
		return capitalizeFirst(jsonName)
	}
	var b strings.Builder
	for _, word := range words {
		lower := strings.ToLower(word)
		if _, ok := acronyms[lower]; ok {
			b.WriteString(strings.ToUpper(lower))
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(strings.ToLower(word[1:]))
	}
	return b.String()
}

// CompositeTypeName derives the name for a type nested under a parent
// declaration, e.g. ("UserServiceUpdateArgs", "data") -> "UserServiceUpdateArgsData".
// Sibling fields with distinct identifier forms keep composite names
// collision-free; the registry itself does not rename.
func CompositeTypeName(parentName, fieldName string) string {
	return parentName + FieldIdentifier(fieldName)
}

// ServiceName converts a method namespace to a service type name
// (user -> UserService, default -> DefaultService).
func ServiceName(namespace string) string {
	return capitalizeFirst(namespace) + "Service"
}

// MethodIdentifier converts a method-name suffix to an exported method name.
// Dot-separated sub-suffixes each contribute a capitalized part
// (query.advanced -> QueryAdvanced). Unlike FieldIdentifier, only the first
// letter of each part is adjusted so the suffix keeps its original casing
// (getById -> GetById). An empty suffix falls back to "Handle".
func MethodIdentifier(suffix string) string {
	if suffix == "" {
		return "Handle"
	}
	if strings.Contains(suffix, ".") {
		parts := strings.Split(suffix, ".")
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(capitalizeFirst(p))
		}
		return b.String()
	}
	return capitalizeFirst(suffix)
}

// splitWords splits on snake-case underscores when present, else on camelCase
// boundaries. A new word starts at an uppercase letter following a
// non-uppercase letter.
func splitWords(name string) []string {
	if name == "" {
		return nil
	}
	if strings.Contains(name, "_") {
		var words []string
		for _, w := range strings.Split(name, "_") {
			if w != "" {
				words = append(words, w)
			}
		}
		return words
	}
	var words []string
	start := 0
	for i := 1; i < len(name); i++ {
		if isUpper(name[i]) && !isUpper(name[i-1]) {
			words = append(words, name[start:i])
			start = i
		}
	}
	words = append(words, name[start:])
	return words
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
