package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_ContainsIgnoresCase(t *testing.T) {
	f := NewFlags(FlagProjectRoot, "folder")
	assert.True(t, f.Contains("projectroot"))
	assert.True(t, f.Contains(FlagFolder))
	assert.False(t, f.Contains(FlagBubbleUp))
	assert.Equal(t, 2, f.Len())
}

func TestFlags_AddRemoveAreImmutable(t *testing.T) {
	f := NewFlags("A")
	g := f.Add("B")
	assert.Equal(t, []string{"A"}, f.Names())
	assert.Equal(t, []string{"A", "B"}, g.Names())

	assert.Equal(t, []string{"A", "B"}, g.Add("b").Names(), "duplicate add keeps first spelling")
	assert.Equal(t, []string{"B"}, g.Remove("a").Names())
	assert.Equal(t, []string{"A", "B"}, g.Names())
	assert.Equal(t, g.Names(), g.Remove("missing").Names())
}

func TestFlags_SortedCaseInsensitive(t *testing.T) {
	f := NewFlags("zeta", "Beta", "alpha", "Gamma")
	assert.Equal(t, []string{"alpha", "Beta", "Gamma", "zeta"}, f.Sorted())
	assert.Equal(t, "{alpha Beta Gamma zeta}", f.String())
}

func TestFlags_EqualAndUnion(t *testing.T) {
	a := NewFlags("A", "B")
	b := NewFlags("b", "a")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewFlags("A")))
	assert.Equal(t, []string{"A", "B", "C"}, a.Union(NewFlags("C", "a")).Names())

	var zero Flags
	assert.Equal(t, "{}", zero.String())
	assert.True(t, zero.Equal(NewFlags()))
}
