package tree

import (
	"errors"
	"sync"
)

// ErrNodeNotFound is returned when a node is not part of a tree.
var ErrNodeNotFound = errors.New("node not found in tree")

// Tree wraps an immutable root and answers navigation queries that the
// nodes themselves cannot, such as finding a node's parent. The index is
// built on first use and is safe for concurrent readers.
type Tree struct {
	root *Node

	once    sync.Once
	nodes   map[uint64]*Node
	parents map[uint64]*Node
}

// NewTree creates a tree rooted at root.
func NewTree(root *Node) *Tree {
	return &Tree{root: root}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) index() {
	t.once.Do(func() {
		t.nodes = make(map[uint64]*Node)
		t.parents = make(map[uint64]*Node)
		if t.root == nil {
			return
		}
		t.Walk(func(n *Node, _ int) bool {
			t.nodes[n.identity] = n
			for _, c := range n.children {
				t.parents[c.identity] = n
			}
			return true
		})
	})
}

// Find returns the node with the given identity.
func (t *Tree) Find(identity uint64) (*Node, bool) {
	t.index()
	n, ok := t.nodes[identity]
	return n, ok
}

// Parent returns the parent of the node sharing n's identity. The root has
// no parent.
func (t *Tree) Parent(n *Node) (*Node, bool) {
	t.index()
	p, ok := t.parents[n.identity]
	return p, ok
}

// Walk visits the tree in pre-order. Returning false from fn skips the
// children of the node just visited.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t.root == nil {
		return
	}
	walk(t.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}

// Replace returns a tree in which the node sharing old's identity is
// swapped for updated. Only the ancestors of old are copied; every other
// subtree is shared with the receiver.
func (t *Tree) Replace(old, updated *Node) (*Tree, error) {
	if t.root == nil {
		return nil, ErrNodeNotFound
	}
	if old.identity == t.root.identity {
		if updated == t.root {
			return t, nil
		}
		return NewTree(updated), nil
	}
	parent, ok := t.Parent(old)
	if !ok {
		return nil, ErrNodeNotFound
	}
	return t.Replace(parent, parent.Replace(old, updated))
}
