package service

import (
	"fmt"
	"sort"
	"strings"
)

// ProviderRegistry looks up federated providers by name.
type ProviderRegistry struct {
	providers map[string]FederatedProvider
}

func NewProviderRegistry(providers ...FederatedProvider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]FederatedProvider, len(providers))}
	for _, p := range providers {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

func (r *ProviderRegistry) Get(name string) (FederatedProvider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
