package provider

import (
	"fmt"

	"fabula/model"
)

// Router selects a provider from the configured set based on capabilities.
//
// The preferred provider wins whenever it has the requested capability.
// Otherwise the router falls back through the remaining providers in the
// order they were registered, so a text-only default provider can still be
// paired with an image-capable one for scene illustrations.
type Router struct {
	providers map[string]model.Provider
	order     []string
	preferred string
}

// NewRouter creates a router over the given providers. order lists provider
// IDs in fallback priority; IDs missing from providers are ignored.
func NewRouter(providers map[string]model.Provider, order []string, preferred string) *Router {
	return &Router{
		providers: providers,
		order:     order,
		preferred: preferred,
	}
}

// SetPreferred changes the preferred provider ID.
func (r *Router) SetPreferred(id string) {
	r.preferred = id
}

// Preferred returns the current preferred provider, or nil if it is not
// registered.
func (r *Router) Preferred() model.Provider {
	return r.providers[r.preferred]
}

// Get returns the provider registered under id.
func (r *Router) Get(id string) (model.Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// ForCapability returns the best provider advertising the capability, along
// with its ID. The preferred provider is checked first, then the fallback
// order.
func (r *Router) ForCapability(c model.Capability) (string, model.Provider, error) {
	if p, ok := r.providers[r.preferred]; ok && model.HasCapability(p, c) {
		return r.preferred, p, nil
	}

	for _, id := range r.order {
		if id == r.preferred {
			continue
		}
		if p, ok := r.providers[id]; ok && model.HasCapability(p, c) {
			return id, p, nil
		}
	}

	if c == model.CapabilityImage {
		return "", nil, model.ErrNoImageProvider
	}
	return "", nil, fmt.Errorf("no provider with capability %q is configured", c)
}
