package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() (*Tree, *Node, *Node, *Node) {
	leaf := New("Class1.cs")
	folder := New("Folder").AddFlag(FlagFolder).Add(leaf)
	other := New("Other.cs")
	root := New("Root").AddFlag(FlagProjectRoot).SetChildren([]*Node{folder, other})
	return NewTree(root), folder, leaf, other
}

func TestTree_ParentAndFind(t *testing.T) {
	tr, folder, leaf, _ := sampleTree()

	p, ok := tr.Parent(leaf)
	require.True(t, ok)
	assert.Same(t, folder, p)

	_, ok = tr.Parent(tr.Root())
	assert.False(t, ok)

	n, ok := tr.Find(leaf.Identity())
	require.True(t, ok)
	assert.Same(t, leaf, n)

	_, ok = tr.Find(New("x").Identity())
	assert.False(t, ok)
}

func TestTree_Walk(t *testing.T) {
	tr, _, _, _ := sampleTree()

	var seen []string
	tr.Walk(func(n *Node, depth int) bool {
		seen = append(seen, n.Caption())
		return n.Caption() != "Folder"
	})
	assert.Equal(t, []string{"Root", "Folder", "Other.cs"}, seen)
}

func TestTree_ReplaceCopiesOnlyAncestors(t *testing.T) {
	tr, folder, leaf, other := sampleTree()

	updated, err := tr.Replace(leaf, leaf.SetCaption("Class2.cs"))
	require.NoError(t, err)

	root := updated.Root()
	assert.NotSame(t, tr.Root(), root)
	assert.Equal(t, tr.Root().Identity(), root.Identity())
	assert.NotSame(t, folder, root.Child(0))
	assert.Equal(t, "Class2.cs", root.Child(0).Child(0).Caption())
	assert.Same(t, other, root.Child(1), "untouched sibling is shared")
	assert.Equal(t, "Class1.cs", tr.Root().Child(0).Child(0).Caption(), "original tree is unchanged")

	same, err := tr.Replace(leaf, leaf)
	require.NoError(t, err)
	assert.Same(t, tr.Root(), same.Root())

	_, err = tr.Replace(New("stray"), New("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMutableNode_Freeze(t *testing.T) {
	root := NewMutable("Root")
	child := NewMutable("Child")
	child.FilePath = "c.cs"
	grandchild := NewMutable("Grandchild")
	root.AddChild(child)
	child.AddChild(grandchild)

	assert.Same(t, root, grandchild.Root())
	assert.Same(t, child, grandchild.Parent)

	frozen := root.Freeze()
	require.Equal(t, 1, frozen.ChildCount())
	assert.Equal(t, "c.cs", frozen.Child(0).FilePath())
	assert.Equal(t, "Grandchild", frozen.Child(0).Child(0).Caption())
	assert.True(t, frozen.Child(0).Child(0).Visible())
}
