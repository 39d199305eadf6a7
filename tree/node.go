// Package tree provides the immutable project tree used by the tree
// providers, plus a line-oriented text notation for writing trees down in
// fixtures and debug output.
package tree

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

var lastIdentity atomic.Uint64

// Icon identifies an image in an image catalog.
type Icon struct {
	Guid uuid.UUID
	ID   int
}

// IsZero reports whether the icon is unset.
func (i Icon) IsZero() bool {
	return i.Guid == uuid.Nil && i.ID == 0
}

// String renders the icon as it appears in tree text.
func (i Icon) String() string {
	return fmt.Sprintf("{%s %d}", i.Guid, i.ID)
}

// Node is an immutable project tree node. Every setter returns a new node
// that keeps the receiver's identity and shares all untouched children; the
// receiver itself is returned when nothing changes.
//
// Nodes do not point at their parents. Use Tree to navigate upwards.
type Node struct {
	identity     uint64
	caption      string
	filePath     string
	itemType     string
	subType      string
	flags        Flags
	icon         Icon
	expandedIcon Icon
	visible      bool
	displayOrder int
	children     []*Node
}

// New creates a visible node with a fresh identity.
func New(caption string) *Node {
	return &Node{
		identity: lastIdentity.Add(1),
		caption:  caption,
		visible:  true,
	}
}

// Identity returns the stable identity assigned when the node was created.
// Nodes derived from it through setters share the identity.
func (n *Node) Identity() uint64 { return n.identity }

// Caption returns the display text.
func (n *Node) Caption() string { return n.caption }

// FilePath returns the file the node represents, if any.
func (n *Node) FilePath() string { return n.filePath }

// ItemType returns the MSBuild item type, if any.
func (n *Node) ItemType() string { return n.itemType }

// SubType returns the item subtype, if any.
func (n *Node) SubType() string { return n.subType }

// Flags returns the node's flags.
func (n *Node) Flags() Flags { return n.flags }

// Icon returns the collapsed icon.
func (n *Node) Icon() Icon { return n.icon }

// ExpandedIcon returns the icon shown while the node is expanded.
func (n *Node) ExpandedIcon() Icon { return n.expandedIcon }

// Visible reports whether the node is shown.
func (n *Node) Visible() bool { return n.visible }

// DisplayOrder returns the sort hint used by the host.
func (n *Node) DisplayOrder() int { return n.displayOrder }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// FindChild returns the direct child with the given identity.
func (n *Node) FindChild(identity uint64) (*Node, bool) {
	if i := n.childIndex(identity); i >= 0 {
		return n.children[i], true
	}
	return nil, false
}

func (n *Node) childIndex(identity uint64) int {
	for i, c := range n.children {
		if c.identity == identity {
			return i
		}
	}
	return -1
}

func (n *Node) clone() *Node {
	c := *n
	return &c
}

// SetCaption returns a node with the given caption.
func (n *Node) SetCaption(caption string) *Node {
	if n.caption == caption {
		return n
	}
	c := n.clone()
	c.caption = caption
	return c
}

// SetFilePath returns a node with the given file path.
func (n *Node) SetFilePath(path string) *Node {
	if n.filePath == path {
		return n
	}
	c := n.clone()
	c.filePath = path
	return c
}

// SetItemType returns a node with the given item type.
func (n *Node) SetItemType(itemType string) *Node {
	if n.itemType == itemType {
		return n
	}
	c := n.clone()
	c.itemType = itemType
	return c
}

// SetSubType returns a node with the given subtype.
func (n *Node) SetSubType(subType string) *Node {
	if n.subType == subType {
		return n
	}
	c := n.clone()
	c.subType = subType
	return c
}

// SetFlags returns a node with the given flags.
func (n *Node) SetFlags(flags Flags) *Node {
	if n.flags.Equal(flags) {
		return n
	}
	c := n.clone()
	c.flags = flags
	return c
}

// AddFlag returns a node that also has flag.
func (n *Node) AddFlag(flag string) *Node {
	return n.SetFlags(n.flags.Add(flag))
}

// RemoveFlag returns a node without flag.
func (n *Node) RemoveFlag(flag string) *Node {
	return n.SetFlags(n.flags.Remove(flag))
}

// SetIcon returns a node with the given icon.
func (n *Node) SetIcon(icon Icon) *Node {
	if n.icon == icon {
		return n
	}
	c := n.clone()
	c.icon = icon
	return c
}

// SetExpandedIcon returns a node with the given expanded icon.
func (n *Node) SetExpandedIcon(icon Icon) *Node {
	if n.expandedIcon == icon {
		return n
	}
	c := n.clone()
	c.expandedIcon = icon
	return c
}

// SetVisible returns a node with the given visibility.
func (n *Node) SetVisible(visible bool) *Node {
	if n.visible == visible {
		return n
	}
	c := n.clone()
	c.visible = visible
	return c
}

// SetDisplayOrder returns a node with the given display order.
func (n *Node) SetDisplayOrder(order int) *Node {
	if n.displayOrder == order {
		return n
	}
	c := n.clone()
	c.displayOrder = order
	return c
}

// SetChildren returns a node with the given children. The receiver is
// returned when children holds the same nodes in the same order.
func (n *Node) SetChildren(children []*Node) *Node {
	if sameNodes(n.children, children) {
		return n
	}
	c := n.clone()
	c.children = append([]*Node(nil), children...)
	return c
}

// Add returns a node with child appended.
func (n *Node) Add(child *Node) *Node {
	c := n.clone()
	c.children = make([]*Node, len(n.children), len(n.children)+1)
	copy(c.children, n.children)
	c.children = append(c.children, child)
	return c
}

// Remove returns a node without the direct child sharing child's identity.
func (n *Node) Remove(child *Node) *Node {
	i := n.childIndex(child.identity)
	if i < 0 {
		return n
	}
	c := n.clone()
	c.children = make([]*Node, 0, len(n.children)-1)
	c.children = append(c.children, n.children[:i]...)
	c.children = append(c.children, n.children[i+1:]...)
	return c
}

// Replace returns a node whose direct child sharing old's identity is
// swapped for updated.
func (n *Node) Replace(old, updated *Node) *Node {
	i := n.childIndex(old.identity)
	if i < 0 || n.children[i] == updated {
		return n
	}
	c := n.clone()
	c.children = append([]*Node(nil), n.children...)
	c.children[i] = updated
	return c
}

// String renders the subtree with every property.
func (n *Node) String() string {
	return Write(n, WriteAllProperties)
}

// Equal reports whether two subtrees carry the same data, ignoring identity.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.caption != b.caption || a.filePath != b.filePath ||
		a.itemType != b.itemType || a.subType != b.subType ||
		a.icon != b.icon || a.expandedIcon != b.expandedIcon ||
		a.visible != b.visible || a.displayOrder != b.displayOrder ||
		!a.flags.Equal(b.flags) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

func sameNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
