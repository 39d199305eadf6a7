package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name    string
	version string
}

type entry struct {
	name    string
	version string
}

var created int

func strategy() Strategy[string, *item, entry] {
	return Strategy[string, *item, entry]{
		ExistingKey: func(i *item) string { return i.name },
		SnapshotKey: func(e entry) string { return e.name },
		Compare:     OrdinalCompare,
		Create: func(e entry) *item {
			created++
			return &item{name: e.name, version: e.version}
		},
		Update: func(i *item, e entry) (*item, bool) {
			if i.version == e.version {
				return i, false
			}
			return &item{name: i.name, version: e.version}, true
		},
	}
}

func entries(names ...string) []entry {
	out := make([]entry, len(names))
	for i, n := range names {
		out[i] = entry{name: n, version: "1.0"}
	}
	return out
}

func names(items []*item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestSync_FromEmpty(t *testing.T) {
	res := Sync(nil, entries("c", "a", "b"), strategy())
	assert.True(t, res.Changed)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, []string{"c", "a", "b"}, names(res.Items), "output follows snapshot order")
}

func TestSync_PreservesIdentityAroundChanges(t *testing.T) {
	first := Sync(nil, entries("A", "B"), strategy())
	b := first.Items[1]

	second := Sync(first.Items, entries("B", "C"), strategy())
	require.True(t, second.Changed)
	assert.Equal(t, []string{"B", "C"}, names(second.Items))
	assert.Same(t, b, second.Items[0])
	assert.Equal(t, 1, second.Added)
	assert.Equal(t, 1, second.Removed)
	assert.Equal(t, 1, second.Unchanged)
	assert.Zero(t, second.Updated)
}

func TestSync_Idempotent(t *testing.T) {
	snapshot := entries("x", "y", "z")
	first := Sync(nil, snapshot, strategy())

	before := created
	second := Sync(first.Items, snapshot, strategy())
	assert.False(t, second.Changed)
	assert.Equal(t, before, created, "no items created")
	assert.Equal(t, 3, second.Unchanged)
	require.Len(t, second.Items, 3)
	assert.Same(t, &first.Items[0], &second.Items[0], "unchanged result reuses the existing slice")
	for i := range first.Items {
		assert.Same(t, first.Items[i], second.Items[i])
	}
}

func TestSync_Update(t *testing.T) {
	first := Sync(nil, entries("a", "b"), strategy())
	snapshot := entries("a", "b")
	snapshot[1].version = "2.0"

	res := Sync(first.Items, snapshot, strategy())
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Updated)
	assert.Same(t, first.Items[0], res.Items[0])
	assert.Equal(t, "2.0", res.Items[1].version)
	assert.Equal(t, "1.0", first.Items[1].version, "existing items are not mutated")
}

func TestSync_ReorderIsAChange(t *testing.T) {
	first := Sync(nil, entries("a", "b"), strategy())
	res := Sync(first.Items, entries("b", "a"), strategy())
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Unchanged)
	assert.Same(t, first.Items[1], res.Items[0])
	assert.Same(t, first.Items[0], res.Items[1])
}

func TestSync_DuplicateKeysPairInOrder(t *testing.T) {
	first := Sync(nil, entries("a", "a", "b"), strategy())
	res := Sync(first.Items, entries("a", "b"), strategy())
	assert.Equal(t, 1, res.Removed)
	assert.Same(t, first.Items[0], res.Items[0])
	assert.Same(t, first.Items[2], res.Items[1])
}

func TestSync_RemoveAll(t *testing.T) {
	first := Sync(nil, entries("a", "b"), strategy())
	res := Sync(first.Items, nil, strategy())
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Removed)
	assert.Empty(t, res.Items)
}

func TestSync_IgnoreCaseKeys(t *testing.T) {
	s := strategy()
	s.Compare = OrdinalIgnoreCaseCompare
	first := Sync(nil, entries("Newtonsoft.Json"), s)
	res := Sync(first.Items, entries("newtonsoft.json"), s)
	assert.False(t, res.Changed)
	assert.Same(t, first.Items[0], res.Items[0])
}

func TestSync_LargeCollection(t *testing.T) {
	var all []string
	for i := 0; i < 500; i++ {
		all = append(all, strings.Repeat("p", i%7)+string(rune('a'+i%26))+strings.Repeat("x", i/26))
	}
	first := Sync(nil, entries(all...), strategy())
	second := Sync(first.Items, entries(all[1:]...), strategy())
	assert.Equal(t, 1, second.Removed)
	assert.Equal(t, len(all)-1, second.Unchanged)
}

func TestCompareHelpers(t *testing.T) {
	assert.Negative(t, OrdinalCompare("B", "a"))
	assert.Positive(t, OrdinalIgnoreCaseCompare("B", "a"))
	assert.Zero(t, OrdinalIgnoreCaseCompare("ABC", "abc"))
}
