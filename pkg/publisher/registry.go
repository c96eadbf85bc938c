package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Registry holds the available publish providers.
type Registry struct {
	providers map[string]Publisher
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Publisher)}
}

// Register adds a provider; registering the same name twice is an error.
func (r *Registry) Register(p Publisher) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("publisher name cannot be empty")
	}
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("publisher %q is already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider with the given name.
func (r *Registry) Get(name string) (Publisher, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown publisher %q (available: %v)", name, r.Names())
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Publish validates and dispatches the request to the named provider,
// stamping provider, target, and completion time on the result.
func (r *Registry) Publish(ctx context.Context, name string, req PublishRequest) (PublishResult, error) {
	p, err := r.Get(name)
	if err != nil {
		return PublishResult{}, err
	}

	if err := p.Validate(req); err != nil {
		return PublishResult{}, fmt.Errorf("validation failed: %w", err)
	}

	result, err := p.Publish(ctx, req)
	result.Provider = p.Name()
	result.Target = req.Target
	result.PublishedAt = time.Now()
	return result, err
}

// WriteResult writes the publish result as indented JSON to path.
func WriteResult(path string, result PublishResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal publish result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write publish result: %w", err)
	}
	return nil
}
