package game

import (
	"fmt"
	"sort"
	"sync"

	"matka-bot/internal/model"
)

// Registry manages category registration and lookup.
// It is safe for concurrent use.
type Registry struct {
	categories map[model.GameCategory]Category
	mu         sync.RWMutex
}

// NewRegistry creates an empty category registry.
func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[model.GameCategory]Category),
	}
}

// Register adds a category to the registry.
// A category with the same name is replaced.
func (r *Registry) Register(c Category) error {
	if c == nil {
		return fmt.Errorf("cannot register nil category")
	}
	if c.Name() == "" {
		return fmt.Errorf("category name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.Name()] = c
	return nil
}

// Get retrieves a category by name.
func (r *Registry) Get(name model.GameCategory) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[name]
	return c, ok
}

// List returns all registered categories sorted by name.
// The returned slice is a copy.
func (r *Registry) List() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Names returns all registered category names sorted.
func (r *Registry) Names() []model.GameCategory {
	list := r.List()
	names := make([]model.GameCategory, len(list))
	for i, c := range list {
		names[i] = c.Name()
	}
	return names
}

// Count returns the number of registered categories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.categories)
}

// DefaultRegistry holds the built-in categories.
var DefaultRegistry = NewRegistry()

// Register adds a category to the default registry.
func Register(c Category) error {
	return DefaultRegistry.Register(c)
}

// GetCategory retrieves a category from the default registry.
func GetCategory(name model.GameCategory) (Category, bool) {
	return DefaultRegistry.Get(name)
}
