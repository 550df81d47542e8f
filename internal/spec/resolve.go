package spec

import "strings"

// MethodOption configures how ResolvedMethods builds the method view.
type MethodOption func(*methodConfig)

type methodConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
}

// WithIncludeTags keeps only methods that carry at least one of the given tags.
func WithIncludeTags(tags []string) MethodOption {
	return func(c *methodConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes methods that carry any of the given tags.
func WithExcludeTags(tags []string) MethodOption {
	return func(c *methodConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// ResolvedMethods returns the document's methods with content-descriptor and
// error references resolved against the component tables. Resolution is a pure
// lookup; the component tables and the original methods are never mutated.
// An unresolvable reference degrades to an empty descriptor so a single bad
// entry cannot abort the run.
func (d *Document) ResolvedMethods(opts ...MethodOption) []Method {
	cfg := &methodConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	out := make([]Method, 0, len(d.Methods))
	for _, m := range d.Methods {
		if !cfg.keep(&m) {
			continue
		}
		resolved := m
		if len(m.Params) > 0 {
			params := make([]*Param, 0, len(m.Params))
			for _, p := range m.Params {
				params = append(params, d.resolveParam(p))
			}
			resolved.Params = params
		}
		if m.Result != nil {
			resolved.Result = d.resolveParam(m.Result)
		}
		if len(m.Errors) > 0 {
			errs := make([]*ErrorDef, 0, len(m.Errors))
			for _, e := range m.Errors {
				errs = append(errs, d.resolveError(e))
			}
			resolved.Errors = errs
		}
		out = append(out, resolved)
	}
	return out
}

func (c *methodConfig) keep(m *Method) bool {
	if len(c.excludeTags) > 0 {
		for _, t := range m.Tags {
			if _, skip := c.excludeTags[t.Name]; skip {
				return false
			}
		}
	}
	if len(c.includeTags) == 0 {
		return true
	}
	for _, t := range m.Tags {
		if _, ok := c.includeTags[t.Name]; ok {
			return true
		}
	}
	return false
}

const (
	contentDescriptorPrefix = "#/components/contentDescriptors/"
	errorPrefix             = "#/components/errors/"
)

func (d *Document) resolveParam(p *Param) *Param {
	if p == nil || p.Ref == "" {
		return p
	}
	if strings.HasPrefix(p.Ref, contentDescriptorPrefix) {
		name := p.Ref[strings.LastIndex(p.Ref, "/")+1:]
		if cd, ok := d.Components.ContentDescriptors[name]; ok && cd != nil {
			return cd
		}
	}
	return &Param{}
}

func (d *Document) resolveError(e *ErrorDef) *ErrorDef {
	if e == nil || e.Ref == "" {
		return e
	}
	if strings.HasPrefix(e.Ref, errorPrefix) {
		name := e.Ref[strings.LastIndex(e.Ref, "/")+1:]
		if def, ok := d.Components.Errors[name]; ok && def != nil {
			return def
		}
	}
	return &ErrorDef{}
}
