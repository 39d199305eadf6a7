// Package diff reconciles an existing ordered collection against a new
// snapshot with a merge-join over a caller-supplied key, keeping unchanged
// items and their identity intact.
package diff

import (
	"slices"
	"strings"
)

// Strategy tells Sync how to key, create and refresh items.
//
// K is the key type, C the materialized item type and S the snapshot entry
// type.
type Strategy[K, C, S any] struct {
	// ExistingKey extracts the key of a materialized item.
	ExistingKey func(C) K

	// SnapshotKey extracts the key of a snapshot entry.
	SnapshotKey func(S) K

	// Compare orders keys. It must be consistent for both key sources.
	Compare func(a, b K) int

	// Create builds an item for a snapshot entry with no existing match.
	Create func(S) C

	// Update refreshes a matched item. It returns the item to keep and
	// whether it changed; returning the input unchanged with false keeps
	// the item's identity.
	Update func(C, S) (C, bool)
}

// Result is the outcome of a Sync.
type Result[C any] struct {
	// Items holds the synchronized items in snapshot order. When Changed is
	// false it is the existing slice itself.
	Items []C

	// Changed reports whether anything was added, removed, updated or
	// reordered.
	Changed bool

	Added     int
	Removed   int
	Updated   int
	Unchanged int
}

type keyed[K any] struct {
	key   K
	index int
}

// Sync merges snapshot into existing. Both sides are sorted by key (stably,
// so duplicate keys pair up in their original order) and walked together
// once; the output follows snapshot order.
func Sync[K, C, S any](existing []C, snapshot []S, s Strategy[K, C, S]) Result[C] {
	olds := make([]keyed[K], len(existing))
	for i, c := range existing {
		olds[i] = keyed[K]{key: s.ExistingKey(c), index: i}
	}
	news := make([]keyed[K], len(snapshot))
	for i, e := range snapshot {
		news[i] = keyed[K]{key: s.SnapshotKey(e), index: i}
	}
	byKey := func(a, b keyed[K]) int { return s.Compare(a.key, b.key) }
	slices.SortStableFunc(olds, byKey)
	slices.SortStableFunc(news, byKey)

	var res Result[C]
	items := make([]C, len(snapshot))
	origin := make([]int, len(snapshot))

	i, j := 0, 0
	for i < len(olds) || j < len(news) {
		var c int
		switch {
		case i == len(olds):
			c = 1
		case j == len(news):
			c = -1
		default:
			c = s.Compare(olds[i].key, news[j].key)
		}

		switch {
		case c < 0:
			res.Removed++
			i++
		case c > 0:
			at := news[j].index
			items[at] = s.Create(snapshot[at])
			origin[at] = -1
			res.Added++
			j++
		default:
			at := news[j].index
			updated, changed := s.Update(existing[olds[i].index], snapshot[at])
			items[at] = updated
			origin[at] = olds[i].index
			if changed {
				res.Updated++
			} else {
				res.Unchanged++
			}
			i++
			j++
		}
	}

	res.Changed = res.Added > 0 || res.Removed > 0 || res.Updated > 0
	if !res.Changed {
		for k, o := range origin {
			if o != k {
				res.Changed = true
				break
			}
		}
	}
	if res.Changed {
		res.Items = items
	} else {
		res.Items = existing
	}
	return res
}

// OrdinalCompare compares strings byte by byte.
func OrdinalCompare(a, b string) int {
	return strings.Compare(a, b)
}

// OrdinalIgnoreCaseCompare compares strings after upper-casing both.
func OrdinalIgnoreCaseCompare(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}
