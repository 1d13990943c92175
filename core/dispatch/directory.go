package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/koryxa/dispatch/core/model"
)

// ProviderDirectory supplies the candidate pool. The dispatch core only ever
// reads providers; an external collaborator keeps them up to date.
type ProviderDirectory interface {
	List(ctx context.Context) ([]model.Provider, error)
}

// MemoryDirectory is an in-memory ProviderDirectory fed by the API layer.
type MemoryDirectory struct {
	mu        sync.RWMutex
	providers map[string]model.Provider
}

// NewMemoryDirectory creates a directory seeded with the given providers.
func NewMemoryDirectory(seed ...model.Provider) *MemoryDirectory {
	d := &MemoryDirectory{providers: make(map[string]model.Provider, len(seed))}
	for _, p := range seed {
		d.providers[p.ID] = p
	}
	return d
}

// Upsert inserts or replaces a provider record.
func (d *MemoryDirectory) Upsert(p model.Provider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.providers[p.ID] = p
	d.mu.Unlock()
	return nil
}

// List returns all providers in a stable order.
func (d *MemoryDirectory) List(_ context.Context) ([]model.Provider, error) {
	d.mu.RLock()
	out := make([]model.Provider, 0, len(d.providers))
	for _, p := range d.providers {
		out = append(out, p)
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
