package http

import (
	"sync"

	"github.com/odyssey-erp/glreport/internal/ledger"
)

// Registry holds loaded datasets in memory, evicting the oldest once full.
type Registry struct {
	mu      sync.RWMutex
	max     int
	order   []string
	items   map[string]*ledger.Dataset
	onEvict func(*ledger.Dataset)
}

// NewRegistry keeps at most max datasets. onEvict, when set, runs for every
// dataset that leaves the registry, outside the lock.
func NewRegistry(max int, onEvict func(*ledger.Dataset)) *Registry {
	if max < 1 {
		max = 1
	}
	return &Registry{max: max, items: make(map[string]*ledger.Dataset), onEvict: onEvict}
}

// Put stores ds and returns how many datasets are held afterwards.
func (r *Registry) Put(ds *ledger.Dataset) int {
	r.mu.Lock()
	var evicted []*ledger.Dataset
	if _, exists := r.items[ds.ID]; !exists {
		r.order = append(r.order, ds.ID)
	}
	r.items[ds.ID] = ds
	for len(r.order) > r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		evicted = append(evicted, r.items[oldest])
		delete(r.items, oldest)
	}
	n := len(r.items)
	r.mu.Unlock()

	r.evict(evicted...)
	return n
}

// Get looks a dataset up by id.
func (r *Registry) Get(id string) (*ledger.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.items[id]
	return ds, ok
}

// Delete removes a dataset. It reports whether the id was known.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	ds, ok := r.items[id]
	if ok {
		delete(r.items, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if ok {
		r.evict(ds)
	}
	return ok
}

// List returns the held datasets, newest first.
func (r *Registry) List() []*ledger.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ledger.Dataset, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.items[r.order[i]])
	}
	return out
}

// Len returns the number of held datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry) evict(datasets ...*ledger.Dataset) {
	if r.onEvict == nil {
		return
	}
	for _, ds := range datasets {
		r.onEvict(ds)
	}
}
