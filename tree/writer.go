package tree

import (
	"strconv"
	"strings"
)

// WriterOptions selects which node properties Write emits. The caption is
// always written.
type WriterOptions uint16

const (
	// WriteCaption writes captions only.
	WriteCaption WriterOptions = 0
	// WriteVisibility writes "visibility: visible|invisible".
	WriteVisibility WriterOptions = 1 << iota
	// WriteFlags writes the flag set, sorted case-insensitively.
	WriteFlags
	// WriteFilePath writes the quoted file path.
	WriteFilePath
	// WriteItemType writes the item type when set.
	WriteItemType
	// WriteSubType writes the subtype when set.
	WriteSubType
	// WriteIcons writes the icon and expanded icon when set.
	WriteIcons
	// WriteDisplayOrder writes the display order.
	WriteDisplayOrder

	// WriteAllProperties writes everything the parser understands.
	WriteAllProperties = WriteVisibility | WriteFlags | WriteFilePath | WriteItemType |
		WriteSubType | WriteIcons | WriteDisplayOrder
)

// DefaultIndent is one level of indentation in written text.
const DefaultIndent = "    "

// Writer renders trees as text that Parse reads back.
type Writer struct {
	Options WriterOptions

	// Indent is written once per level. Parse accepts a tab or four spaces.
	Indent string
}

// Write renders the subtree rooted at n with the default indent.
func Write(n *Node, options WriterOptions) string {
	return Writer{Options: options}.Write(n)
}

// Write renders the subtree rooted at n, one node per line, without a
// trailing newline.
func (w Writer) Write(n *Node) string {
	if n == nil {
		return ""
	}
	if w.Indent == "" {
		w.Indent = DefaultIndent
	}
	var sb strings.Builder
	w.write(&sb, n, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (w Writer) write(sb *strings.Builder, n *Node, depth int) {
	for range depth {
		sb.WriteString(w.Indent)
	}
	sb.WriteString(escapeCaption(n.caption))

	var props []string
	if w.Options&WriteVisibility != 0 {
		if n.visible {
			props = append(props, "visibility: visible")
		} else {
			props = append(props, "visibility: invisible")
		}
	}
	if w.Options&WriteFlags != 0 {
		props = append(props, "flags: "+n.flags.String())
	}
	if len(props) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(props, ", "))
		sb.WriteString(")")
	}

	if w.Options&WriteFilePath != 0 {
		sb.WriteString(`, FilePath: "`)
		sb.WriteString(n.filePath)
		sb.WriteString(`"`)
	}
	if w.Options&WriteItemType != 0 && n.itemType != "" {
		sb.WriteString(", ItemType: ")
		sb.WriteString(n.itemType)
	}
	if w.Options&WriteSubType != 0 && n.subType != "" {
		sb.WriteString(", SubType: ")
		sb.WriteString(n.subType)
	}
	if w.Options&WriteIcons != 0 {
		if !n.icon.IsZero() {
			sb.WriteString(", Icon: ")
			sb.WriteString(n.icon.String())
		}
		if !n.expandedIcon.IsZero() {
			sb.WriteString(", ExpandedIcon: ")
			sb.WriteString(n.expandedIcon.String())
		}
	}
	if w.Options&WriteDisplayOrder != 0 {
		sb.WriteString(", DisplayOrder: ")
		sb.WriteString(strconv.Itoa(n.displayOrder))
	}
	sb.WriteByte('\n')

	for _, c := range n.children {
		w.write(sb, c, depth+1)
	}
}
