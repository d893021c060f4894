package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"

	"gitlab.com/tinyland/lab/infoboard/pkg/query"
)

// ErrDuplicateKey is wrapped by DuplicateKeyError.
var ErrDuplicateKey = errors.New("store: duplicate key")

// DuplicateKeyError reports an Add whose derived key is already present.
type DuplicateKeyError struct {
	Slot string
	Key  any
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("store: duplicate key %v in %s", e.Key, e.Slot)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// Props is a store's namespaced state container. Each slot holds a frozen
// value that is replaced, never modified, on write.
type Props struct {
	namespace string

	mu     sync.RWMutex
	slots  map[string]bool
	values map[string]any
}

func newProps(namespace string) *Props {
	return &Props{
		namespace: namespace,
		slots:     make(map[string]bool),
		values:    make(map[string]any),
	}
}

// Namespace returns the owning store's name.
func (p *Props) Namespace() string { return p.namespace }

// Slots returns the number of bound slots.
func (p *Props) Slots() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.slots)
}

func (p *Props) bind(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.slots[name] {
		panic(fmt.Sprintf("store: slot %q already bound in %s", name, p.namespace))
	}
	p.slots[name] = true
}

func (p *Props) load(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	return v, ok
}

// freeze deep-copies v so the caller's copy and the stored copy share no
// mutable memory.
func freeze[T any](v T) (T, error) {
	c, err := copystructure.Copy(v)
	if err != nil {
		return v, fmt.Errorf("store: freeze %T: %w", v, err)
	}
	if c == nil {
		var zero T
		return zero, nil
	}
	out, ok := c.(T)
	if !ok {
		return v, fmt.Errorf("store: freeze %T: copy has type %T", v, c)
	}
	return out, nil
}

// Single is a slot holding one value.
type Single[T any] struct {
	props *Props
	name  string
}

// BindSingle creates a single-value slot in s. It panics if name is already
// bound in s.
func BindSingle[T any](s *Store, name string) *Single[T] {
	s.props.bind(name)
	return &Single[T]{props: s.props, name: name}
}

// Get returns the stored snapshot and whether one has been set. The value
// must be treated as read-only.
func (s *Single[T]) Get() (T, bool) {
	v, ok := s.props.load(s.name)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Set freezes v and stores it, replacing the previous snapshot.
func (s *Single[T]) Set(v T) error {
	frozen, err := freeze(v)
	if err != nil {
		return err
	}
	s.props.mu.Lock()
	defer s.props.mu.Unlock()
	s.props.values[s.name] = frozen
	return nil
}

// Clear removes the stored value.
func (s *Single[T]) Clear() {
	s.props.mu.Lock()
	defer s.props.mu.Unlock()
	delete(s.props.values, s.name)
}

// keyed is the immutable state behind a Multiple slot.
type keyed[K comparable, T any] struct {
	order []K
	items map[K]T
}

func (k *keyed[K, T]) values() []T {
	out := make([]T, 0, len(k.order))
	for _, key := range k.order {
		out = append(out, k.items[key])
	}
	return out
}

// list exposes a keyed slot to Path lookups.
func (k *keyed[K, T]) list() any { return k.values() }

// Multiple is a slot holding items indexed by a key derived from each item.
// Iteration follows insertion order.
type Multiple[K comparable, T any] struct {
	props *Props
	name  string
	key   func(item T) K
}

// BindMultiple creates a keyed multi-value slot in s. It panics if name is
// already bound in s.
func BindMultiple[K comparable, T any](s *Store, name string, key func(item T) K) *Multiple[K, T] {
	s.props.bind(name)
	return &Multiple[K, T]{props: s.props, name: name, key: key}
}

// current returns the slot state. Caller holds props.mu.
func (m *Multiple[K, T]) current() *keyed[K, T] {
	if v, ok := m.props.values[m.name]; ok {
		return v.(*keyed[K, T])
	}
	return &keyed[K, T]{items: map[K]T{}}
}

func (m *Multiple[K, T]) snapshot() *keyed[K, T] {
	m.props.mu.RLock()
	defer m.props.mu.RUnlock()
	return m.current()
}

// Add stores item under its key. It fails with a *DuplicateKeyError if the
// key is already present.
func (m *Multiple[K, T]) Add(item T) error {
	frozen, err := freeze(item)
	if err != nil {
		return err
	}
	k := m.key(frozen)

	m.props.mu.Lock()
	defer m.props.mu.Unlock()

	cur := m.current()
	if _, dup := cur.items[k]; dup {
		return &DuplicateKeyError{Slot: m.props.namespace + "." + m.name, Key: k}
	}
	next := &keyed[K, T]{
		order: append(append(make([]K, 0, len(cur.order)+1), cur.order...), k),
		items: make(map[K]T, len(cur.items)+1),
	}
	for key, v := range cur.items {
		next.items[key] = v
	}
	next.items[k] = frozen
	m.props.values[m.name] = next
	return nil
}

// Put stores item under its key, replacing any existing item in place.
func (m *Multiple[K, T]) Put(item T) error {
	frozen, err := freeze(item)
	if err != nil {
		return err
	}
	k := m.key(frozen)

	m.props.mu.Lock()
	defer m.props.mu.Unlock()

	cur := m.current()
	next := &keyed[K, T]{
		order: make([]K, 0, len(cur.order)+1),
		items: make(map[K]T, len(cur.items)+1),
	}
	next.order = append(next.order, cur.order...)
	if _, exists := cur.items[k]; !exists {
		next.order = append(next.order, k)
	}
	for key, v := range cur.items {
		next.items[key] = v
	}
	next.items[k] = frozen
	m.props.values[m.name] = next
	return nil
}

// Replace swaps the whole slot for items. If two items share a key the slot
// is left unchanged and a *DuplicateKeyError is returned.
func (m *Multiple[K, T]) Replace(items []T) error {
	frozen, err := freeze(items)
	if err != nil {
		return err
	}
	next := &keyed[K, T]{
		order: make([]K, 0, len(frozen)),
		items: make(map[K]T, len(frozen)),
	}
	for _, item := range frozen {
		k := m.key(item)
		if _, dup := next.items[k]; dup {
			return &DuplicateKeyError{Slot: m.props.namespace + "." + m.name, Key: k}
		}
		next.order = append(next.order, k)
		next.items[k] = item
	}

	m.props.mu.Lock()
	defer m.props.mu.Unlock()
	m.props.values[m.name] = next
	return nil
}

// Remove deletes the item stored under key and reports whether it existed.
func (m *Multiple[K, T]) Remove(key K) bool {
	return m.RemoveWhere(func(item T) bool { return m.key(item) == key }) > 0
}

// RemoveWhere deletes every item matching pred and returns how many were
// removed.
func (m *Multiple[K, T]) RemoveWhere(pred func(item T) bool) int {
	m.props.mu.Lock()
	defer m.props.mu.Unlock()

	cur := m.current()
	next := &keyed[K, T]{items: make(map[K]T, len(cur.items))}
	for _, k := range cur.order {
		if item := cur.items[k]; !pred(item) {
			next.order = append(next.order, k)
			next.items[k] = item
		}
	}
	removed := len(cur.order) - len(next.order)
	if removed > 0 {
		m.props.values[m.name] = next
	}
	return removed
}

// Get returns the item stored under key.
func (m *Multiple[K, T]) Get(key K) (T, bool) {
	v, ok := m.snapshot().items[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *Multiple[K, T]) Contains(key K) bool {
	_, ok := m.snapshot().items[key]
	return ok
}

// Len returns the number of stored items.
func (m *Multiple[K, T]) Len() int {
	return len(m.snapshot().order)
}

// Values returns the items in insertion order. The slice is new on every
// call; the items are shared read-only snapshots.
func (m *Multiple[K, T]) Values() []T {
	return m.snapshot().values()
}

// Query returns an Enumerable over the current items.
func (m *Multiple[K, T]) Query() query.Enumerable[T] {
	return query.From(m.Values())
}

// Clear removes every item.
func (m *Multiple[K, T]) Clear() {
	m.props.mu.Lock()
	defer m.props.mu.Unlock()
	delete(m.props.values, m.name)
}
