package query

import "slices"

// List is the mutable sequence variant. It is not safe for concurrent use.
type List[T any] struct {
	items []T
}

// NewList returns a List holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Add appends items to the list.
func (l *List[T]) Add(items ...T) {
	l.items = append(l.items, items...)
}

// Remove deletes the first item matching pred and reports whether one was
// found.
func (l *List[T]) Remove(pred func(item T) bool) bool {
	i := slices.IndexFunc(l.items, pred)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// RemoveAt deletes the item at index i. Out of range indices are ignored.
func (l *List[T]) RemoveAt(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the list contents.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// Query returns an Enumerable over a snapshot of the list, so later Add or
// Remove calls do not affect it.
func (l *List[T]) Query() Enumerable[T] {
	return Enumerable[T]{items: l.Items()}
}

// Grouping is a List tagged with the key it was grouped under. Only GroupBy
// produces them.
type Grouping[K comparable, T any] struct {
	List[T]
	Key K
}
