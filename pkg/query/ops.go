package query

import (
	"cmp"
	"slices"
	"sort"

	"golang.org/x/exp/constraints"
)

// Number is the set of types Sum can add.
type Number interface {
	constraints.Integer | constraints.Float
}

// Select maps every item through selector, preserving order and length.
func Select[T, U any](e Enumerable[T], selector func(item T, index int) U) Enumerable[U] {
	out := each(e.items, make([]U, 0, len(e.items)), func(item T, i int) step[U] {
		return step[U]{value: selector(item, i), emit: true}
	}, collect[U])
	return Enumerable[U]{items: out}
}

// OrderBy sorts ascending by the key returned from key. Stable.
func OrderBy[T any, K cmp.Ordered](e Enumerable[T], key func(item T) K) Enumerable[T] {
	return e.OrderByFunc(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// OrderByDescending sorts descending by the key returned from key. Stable.
func OrderByDescending[T any, K cmp.Ordered](e Enumerable[T], key func(item T) K) Enumerable[T] {
	return e.OrderByDescendingFunc(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// GroupBy buckets items by key equality. Buckets appear in the order their
// key was first seen; items keep their insertion order within a bucket.
func GroupBy[T any, K comparable](e Enumerable[T], key func(item T) K) Enumerable[*Grouping[K, T]] {
	b := each(e.items, newBuckets[K, T](), identity[T], func(b *buckets[K, T], item T) *buckets[K, T] {
		k := key(item)
		g, ok := b.index[k]
		if !ok {
			g = &Grouping[K, T]{Key: k}
			b.index[k] = g
			b.order = append(b.order, g)
		}
		g.Add(item)
		return b
	})
	return Enumerable[*Grouping[K, T]]{items: b.order}
}

// Aggregate left-folds the sequence starting from seed.
func Aggregate[T, A any](e Enumerable[T], seed A, reducer func(acc A, item T) A) A {
	return each(e.items, seed, identity[T], reducer)
}

// Sum adds selector(item) over the sequence.
func Sum[T any, N Number](e Enumerable[T], selector func(item T) N) N {
	return Aggregate(e, N(0), func(acc N, item T) N { return acc + selector(item) })
}

// SumOf adds the items of a numeric sequence.
func SumOf[N Number](e Enumerable[N]) N {
	return Sum(e, func(n N) N { return n })
}

// insertSorted returns an aggregator that places each value before the first
// already-placed value that sorts strictly after it. Equal values therefore
// land after their predecessors, which keeps the ordering stable. The
// insertion point is found by binary search over the sorted prefix.
func insertSorted[T any](compare func(a, b T) int) func(acc []T, v T) []T {
	return func(acc []T, v T) []T {
		at := sort.Search(len(acc), func(i int) bool {
			return compare(acc[i], v) > 0
		})
		return slices.Insert(acc, at, v)
	}
}

type buckets[K comparable, T any] struct {
	index map[K]*Grouping[K, T]
	order []*Grouping[K, T]
}

func newBuckets[K comparable, T any]() *buckets[K, T] {
	return &buckets[K, T]{index: make(map[K]*Grouping[K, T])}
}
