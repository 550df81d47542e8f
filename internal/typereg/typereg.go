// Package typereg holds the named type declarations accumulated during one
// generation run. A Registry is owned by exactly one converter instance and is
// discarded when the run's render context has been produced.
package typereg

// Registry is an arena of named declarations with reserve-then-fill
// semantics: a name is claimed before its body is materialized, so a schema
// that references itself (directly or through a cycle) resolves to the
// reserved name instead of recursing. Reserving an already-claimed name is a
// no-op that reports false; the registry never renames, collision avoidance is
// the caller's responsibility via structural name derivation.
type Registry struct {
	order  []string
	bodies map[string]string
}

func New() *Registry {
	return &Registry{bodies: make(map[string]string)}
}

// Reserve claims name and reports whether this call claimed it. The caller
// that wins the claim must eventually Bind the declaration body.
func (r *Registry) Reserve(name string) bool {
	if _, ok := r.bodies[name]; ok {
		return false
	}
	r.bodies[name] = ""
	r.order = append(r.order, name)
	return true
}

// Bind attaches the declaration text for a previously reserved name.
func (r *Registry) Bind(name, decl string) {
	if _, ok := r.bodies[name]; !ok {
		r.order = append(r.order, name)
	}
	r.bodies[name] = decl
}

// Has reports whether name has been reserved or bound.
func (r *Registry) Has(name string) bool {
	_, ok := r.bodies[name]
	return ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.order) }

// Decls returns all non-empty declaration bodies in registration order.
// Reservation order, not completion order, governs output position, so the
// emitted file is stable across runs.
func (r *Registry) Decls() []string {
	decls := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if body := r.bodies[name]; body != "" {
			decls = append(decls, body)
		}
	}
	return decls
}
