// Package errcat builds the per-run catalog of distinct RPC error
// definitions.
package errcat

import (
	"fmt"
	"strings"

	"github.com/openrpckit/openrpcgen/internal/spec"
)

// Entry is one distinct error, keyed by its numeric code.
type Entry struct {
	Code     int
	Message  string
	TypeName string
	Data     *spec.Schema
}

// Option configures catalog building.
type Option func(*config)

type config struct {
	fallbackPrefix string
}

// WithFallbackPrefix sets the prefix used for code-based names when an error
// has no message ("RPCError" -> RPCError404).
func WithFallbackPrefix(prefix string) Option {
	return func(c *config) { c.fallbackPrefix = prefix }
}

// Build walks all methods' error lists in method-then-declaration order and
// keeps the first occurrence of each numeric code. Later duplicates are
// dropped even when their messages differ.
func Build(methods []spec.Method, opts ...Option) []Entry {
	cfg := config{fallbackPrefix: "RPCError"}
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := map[int]struct{}{}
	var entries []Entry
	for _, m := range methods {
		for _, e := range m.Errors {
			if e == nil {
				continue
			}
			if _, dup := seen[e.Code]; dup {
				continue
			}
			seen[e.Code] = struct{}{}
			entries = append(entries, Entry{
				Code:     e.Code,
				Message:  e.Message,
				TypeName: typeName(e.Code, e.Message, cfg.fallbackPrefix),
				Data:     e.Data,
			})
		}
	}
	return entries
}

// typeName derives a type name from the error message by keeping only
// alphanumeric runs, capitalizing each, and appending an Error suffix. Empty
// messages fall back to a code-based name.
func typeName(code int, message, fallbackPrefix string) string {
	if message != "" {
		var b strings.Builder
		for _, word := range splitAlnum(message) {
			b.WriteString(strings.ToUpper(word[:1]))
			b.WriteString(strings.ToLower(word[1:]))
		}
		if b.Len() > 0 {
			return b.String() + "Error"
		}
	}
	// JSON-RPC reserved codes are negative; a bare minus sign would not form
	// a legal identifier.
	if code < 0 {
		return fmt.Sprintf("%sNeg%d", fallbackPrefix, -code)
	}
	return fmt.Sprintf("%s%d", fallbackPrefix, code)
}

func splitAlnum(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)
	return strings.Fields(mapped)
}
