package tree

// MutableNode is a builder used while a tree is being assembled, for
// example by the parser. Unlike Node it links to its parent.
type MutableNode struct {
	Caption      string
	FilePath     string
	ItemType     string
	SubType      string
	Flags        Flags
	Icon         Icon
	ExpandedIcon Icon
	Visible      bool
	DisplayOrder int

	Parent   *MutableNode
	Children []*MutableNode
}

// NewMutable creates a visible mutable node.
func NewMutable(caption string) *MutableNode {
	return &MutableNode{Caption: caption, Visible: true}
}

// AddChild appends child and sets its parent.
func (m *MutableNode) AddChild(child *MutableNode) {
	child.Parent = m
	m.Children = append(m.Children, child)
}

// Root follows parent links to the top of the tree.
func (m *MutableNode) Root() *MutableNode {
	r := m
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Freeze converts the subtree into immutable nodes with fresh identities.
func (m *MutableNode) Freeze() *Node {
	n := New(m.Caption)
	n.filePath = m.FilePath
	n.itemType = m.ItemType
	n.subType = m.SubType
	n.flags = m.Flags
	n.icon = m.Icon
	n.expandedIcon = m.ExpandedIcon
	n.visible = m.Visible
	n.displayOrder = m.DisplayOrder
	if len(m.Children) > 0 {
		n.children = make([]*Node, len(m.Children))
		for i, c := range m.Children {
			n.children[i] = c.Freeze()
		}
	}
	return n
}
