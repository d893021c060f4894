// Package query provides a small LINQ-style sequence library used by the
// dashboard stores to derive filtered, sorted, and paged views of in-memory
// collections (upcoming calendar events, next departures, latest headlines).
//
// An Enumerable is an immutable view over an ordered slice. Every operator
// returns a new Enumerable backed by a fresh slice; the source is never
// mutated. All operators run through a single iteration kernel (see each)
// that visits items in order, emits values into a pluggable aggregator, and
// honors an early-exit signal.
package query

// step is the outcome of visiting one item: the value to hand to the
// aggregator (only when emit is set) and whether iteration should stop
// after this item.
type step[R any] struct {
	value R
	emit  bool
	halt  bool
}

// each is the iteration kernel shared by every operator. visit produces a
// step per item; emitted values are folded into acc with fold. Iteration ends
// after the first step whose halt flag is set.
func each[T, R, A any](src []T, acc A, visit func(item T, index int) step[R], fold func(acc A, v R) A) A {
	for i, item := range src {
		s := visit(item, i)
		if s.emit {
			acc = fold(acc, s.value)
		}
		if s.halt {
			break
		}
	}
	return acc
}

// collect is the append aggregator.
func collect[R any](acc []R, v R) []R {
	return append(acc, v)
}

// identity emits every item unchanged.
func identity[T any](item T, _ int) step[T] {
	return step[T]{value: item, emit: true}
}

// Enumerable is an immutable, order-preserving view over a sequence of T.
// The zero value is an empty sequence.
type Enumerable[T any] struct {
	items []T
}

// From wraps items. The slice is not copied, but no operator ever writes to
// it, so callers only need to avoid mutating it themselves.
func From[T any](items []T) Enumerable[T] {
	return Enumerable[T]{items: items}
}

// Of builds an Enumerable from its arguments.
func Of[T any](items ...T) Enumerable[T] {
	return Enumerable[T]{items: items}
}

// Where keeps the items for which pred(item, index) is true.
func (e Enumerable[T]) Where(pred func(item T, index int) bool) Enumerable[T] {
	out := each(e.items, []T(nil), func(item T, i int) step[T] {
		return step[T]{value: item, emit: pred(item, i)}
	}, collect[T])
	return Enumerable[T]{items: out}
}

// Take returns the first n items. Iteration stops as soon as n items have
// been collected. Take(0) is empty; n larger than the sequence returns all.
func (e Enumerable[T]) Take(n int) Enumerable[T] {
	if n <= 0 {
		return Enumerable[T]{}
	}
	taken := 0
	out := each(e.items, make([]T, 0, min(n, len(e.items))), func(item T, _ int) step[T] {
		taken++
		return step[T]{value: item, emit: true, halt: taken >= n}
	}, collect[T])
	return Enumerable[T]{items: out}
}

// Skip drops the first n items.
func (e Enumerable[T]) Skip(n int) Enumerable[T] {
	out := each(e.items, []T(nil), func(item T, i int) step[T] {
		return step[T]{value: item, emit: i >= n}
	}, collect[T])
	return Enumerable[T]{items: out}
}

// OrderByFunc sorts ascending by compare, which follows the cmp.Compare
// convention. The sort is stable: items that compare equal keep their
// original relative order.
func (e Enumerable[T]) OrderByFunc(compare func(a, b T) int) Enumerable[T] {
	out := each(e.items, make([]T, 0, len(e.items)), identity[T], insertSorted(compare))
	return Enumerable[T]{items: out}
}

// OrderByDescendingFunc sorts descending by compare. Ties keep their
// original relative order.
func (e Enumerable[T]) OrderByDescendingFunc(compare func(a, b T) int) Enumerable[T] {
	return e.OrderByFunc(func(a, b T) int { return compare(b, a) })
}

// FirstOrDefault returns the first item matching pred, or the first item if
// pred is nil. The bool is false when nothing matched.
func (e Enumerable[T]) FirstOrDefault(pred func(item T) bool) (T, bool) {
	type hit struct {
		item  T
		found bool
	}
	h := each(e.items, hit{}, func(item T, _ int) step[T] {
		ok := pred == nil || pred(item)
		return step[T]{value: item, emit: ok, halt: ok}
	}, func(_ hit, v T) hit {
		return hit{item: v, found: true}
	})
	return h.item, h.found
}

// Count returns the number of items, or the number matching pred.
func (e Enumerable[T]) Count(pred func(item T) bool) int {
	return each(e.items, 0, func(item T, _ int) step[T] {
		return step[T]{value: item, emit: pred == nil || pred(item)}
	}, func(n int, _ T) int { return n + 1 })
}

// Any reports whether any item matches pred (or whether the sequence is
// non-empty when pred is nil).
func (e Enumerable[T]) Any(pred func(item T) bool) bool {
	_, ok := e.FirstOrDefault(pred)
	return ok
}

// ToArray materializes the sequence into a new slice.
func (e Enumerable[T]) ToArray() []T {
	return each(e.items, make([]T, 0, len(e.items)), identity[T], collect[T])
}

// ToList materializes the sequence into a mutable List.
func (e Enumerable[T]) ToList() *List[T] {
	return &List[T]{items: e.ToArray()}
}

// Len returns the length of the sequence.
func (e Enumerable[T]) Len() int {
	return len(e.items)
}
