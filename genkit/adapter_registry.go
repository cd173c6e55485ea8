package genkit

import "sort"

// AdapterRegistry manages available agent adapters. It is the central place
// where `attrgen rules` discovers supported AI agents.
type AdapterRegistry struct {
	adapters map[string]AgentAdapter
}

// NewAdapterRegistry creates a new registry pre-populated with the built-in
// adapters (Kiro, CodeBuddy, Cursor).
func NewAdapterRegistry() *AdapterRegistry {
	registry := &AdapterRegistry{
		adapters: make(map[string]AgentAdapter),
	}

	registry.Register(&KiroAdapter{})
	registry.Register(&CodeBuddyAdapter{})
	registry.Register(&CursorAdapter{})

	return registry
}

// Register adds an adapter to the registry. An adapter with the same name
// replaces the existing one, so built-ins can be overridden.
func (r *AdapterRegistry) Register(adapter AgentAdapter) {
	r.adapters[adapter.Name()] = adapter
}

// Get retrieves an adapter by name.
func (r *AdapterRegistry) Get(name string) (AgentAdapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// List returns all registered adapter names in alphabetical order.
func (r *AdapterRegistry) List() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
