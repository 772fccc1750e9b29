package provider

// Registry holds the process-wide set of registered providers. It is
// constructed once at startup from configuration and read-only afterwards, so
// concurrent reads on the hot path need no locking. Registration order
// doubles as the priority ranking used for selection tie-breaks.
type Registry struct {
	providers []Provider
	byID      map[string]Provider
}

// NewRegistry builds a registry from the given providers. A provider whose
// id collides with an earlier registration is dropped; the first registration
// wins so priority order stays stable.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byID: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		id := p.Info().ID
		if _, exists := r.byID[id]; exists {
			continue
		}
		r.byID[id] = p
		r.providers = append(r.providers, p)
	}
	return r
}

// All returns the registered providers in priority order. The slice is a
// snapshot and safe for caller mutation.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider registered under id, if any.
func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// IDs returns the registered provider ids in priority order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.providers))
	for i, p := range r.providers {
		ids[i] = p.Info().ID
	}
	return ids
}

// Len returns the number of registered providers.
func (r *Registry) Len() int { return len(r.providers) }
