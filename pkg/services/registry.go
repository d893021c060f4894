package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry tracks the health of named sources. It is safe for concurrent
// use.
type Registry struct {
	mu       sync.RWMutex
	statuses map[string]*Status
	now      func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		statuses: make(map[string]*Status),
		now:      time.Now,
	}
}

// Register adds a source. It returns an error if the name is already
// registered.
func (r *Registry) Register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.statuses[name]; exists {
		return fmt.Errorf("source %q already registered", name)
	}
	r.statuses[name] = &Status{Name: name, Healthy: true}
	return nil
}

// Unregister removes a source. It is a no-op if the name is not found.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.statuses, name)
}

// List returns the registered source names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.statuses))
	for name := range r.statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the named source's status.
func (r *Registry) Status(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

// AllStatus returns a copy of every status, sorted by name.
func (r *Registry) AllStatus() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Status, 0, len(r.statuses))
	for _, s := range r.statuses {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// record updates the status for one completed load.
func (r *Registry) record(name string, started time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.statuses[name]
	if !ok {
		return
	}
	s.LastRun = started
	s.LastLatency = r.now().Sub(started)
	s.RunCount++
	s.LastError = err
	s.Healthy = err == nil
	if err != nil {
		s.ErrorCount++
	}
}

// Track registers svc (if needed) and returns a loader that records every
// call in the registry.
func Track[In, Out any](r *Registry, svc Service[In, Out]) func(ctx context.Context, in In) (Out, error) {
	name := svc.Name()
	if _, ok := r.Status(name); !ok {
		_ = r.Register(name)
	}
	return func(ctx context.Context, in In) (Out, error) {
		started := r.now()
		out, err := svc.Load(ctx, in)
		r.record(name, started, err)
		return out, err
	}
}
