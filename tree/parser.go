package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/willibrandon/projsys/observability"
)

// Parse reads tree text and returns the immutable root. Each non-blank line
// is one node; a tab or four spaces make one level of indentation:
//
//	Root (visibility: visible, flags: {ProjectRoot})
//	    Properties (flags: {Folder}), FilePath: "C:\Proj\Properties"
//	        AssemblyInfo.cs, FilePath: "C:\Proj\Properties\AssemblyInfo.cs", ItemType: Compile
//
// Failures are returned as *ParseError.
func Parse(text string) (*Node, error) {
	root, err := ParseMutable(text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			observability.TreeParseErrorsTotal.WithLabelValues(pe.Kind.String()).Inc()
		}
		return nil, err
	}
	return root.Freeze(), nil
}

// ParseMutable reads tree text into mutable nodes.
func ParseMutable(text string) (*MutableNode, error) {
	var (
		root    *MutableNode
		current *MutableNode
		indent  = -1
	)

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1

		level, pos := indentOf(line)
		if root != nil && level == 0 {
			return nil, &ParseError{Kind: MultipleRoots, Line: lineNo, Column: 1,
				Message: "only one root node is allowed"}
		}
		if level > indent+1 {
			return nil, &ParseError{Kind: IndentTooManyLevels, Line: lineNo, Column: 1,
				Message: fmt.Sprintf("indented %d levels, at most %d allowed", level, indent+1)}
		}

		node, err := parseLine(&lineScanner{line: line, lineNo: lineNo, pos: pos})
		if err != nil {
			return nil, err
		}

		if root == nil {
			root = node
		} else {
			parent := current
			for k := indent; k >= level; k-- {
				parent = parent.Parent
			}
			parent.AddChild(node)
		}
		current = node
		indent = level
	}

	if root == nil {
		return nil, &ParseError{Kind: EmptyInput, Message: "no tree nodes found"}
	}
	return root, nil
}

// indentOf counts indentation levels and returns the offset of the first
// non-blank byte.
func indentOf(line string) (level, pos int) {
	spaces := 0
	for pos < len(line) {
		switch line[pos] {
		case '\t':
			level++
			spaces = 0
		case ' ':
			spaces++
			if spaces == 4 {
				level++
				spaces = 0
			}
		default:
			return level, pos
		}
		pos++
	}
	return level, pos
}

func parseLine(s *lineScanner) (*MutableNode, error) {
	caption, start := s.caption()
	if caption == "" {
		return nil, s.errorAt(IdentifierExpected, start, "expected caption")
	}
	node := NewMutable(caption)

	if s.accept('(') {
		if err := parseProperties(s, node); err != nil {
			return nil, err
		}
	}

	for !s.atEnd() {
		if err := s.expect(','); err != nil {
			return nil, err
		}
		if err := parseField(s, node); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// parseProperties reads the body of "(visibility: ..., flags: {...})" after
// the opening parenthesis.
func parseProperties(s *lineScanner, node *MutableNode) error {
	if s.accept(')') {
		return nil
	}
	for {
		name, pos, err := s.identifier("property name")
		if err != nil {
			return err
		}
		if err := s.expect(':'); err != nil {
			return err
		}

		switch name {
		case "visibility":
			value, valuePos, err := s.identifier("visibility value")
			if err != nil {
				return err
			}
			switch value {
			case "visible":
				node.Visible = true
			case "invisible":
				node.Visible = false
			default:
				return s.errorAt(UnrecognizedPropertyValue, valuePos, "unrecognized visibility %q", value)
			}
		case "flags":
			flags, err := parseFlags(s)
			if err != nil {
				return err
			}
			node.Flags = flags
		default:
			return s.errorAt(UnrecognizedPropertyName, pos, "unrecognized property %q", name)
		}

		if s.accept(')') {
			return nil
		}
		if err := s.expect(','); err != nil {
			return err
		}
	}
}

func parseFlags(s *lineScanner) (Flags, error) {
	var flags Flags
	if err := s.expect('{'); err != nil {
		return flags, err
	}
	for !s.accept('}') {
		if s.atEnd() {
			return flags, s.errorAt(DelimiterExpected, s.pos, "expected '}'")
		}
		flag, _, err := s.identifier("flag name")
		if err != nil {
			return flags, err
		}
		flags = flags.Add(flag)
	}
	return flags, nil
}

func parseField(s *lineScanner, node *MutableNode) error {
	name, pos, err := s.identifier("field name")
	if err != nil {
		return err
	}
	if err := s.expect(':'); err != nil {
		return err
	}

	switch name {
	case "FilePath":
		node.FilePath, err = s.quoted()
	case "ItemType":
		node.ItemType, _, err = s.identifier("item type")
	case "SubType":
		node.SubType, _, err = s.identifier("subtype")
	case "Icon":
		node.Icon, err = parseIcon(s)
	case "ExpandedIcon":
		node.ExpandedIcon, err = parseIcon(s)
	case "DisplayOrder":
		node.DisplayOrder, err = parseInt(s)
	default:
		return s.errorAt(UnrecognizedPropertyName, pos, "unrecognized field %q", name)
	}
	return err
}

// parseIcon reads "{GUID id}".
func parseIcon(s *lineScanner) (Icon, error) {
	var icon Icon
	if err := s.expect('{'); err != nil {
		return icon, err
	}

	text, pos, err := s.identifier("icon GUID")
	if err != nil {
		return icon, s.errorAt(GuidExpected, pos, "expected icon GUID")
	}
	guid, err := uuid.Parse(text)
	if err != nil {
		return icon, s.errorAt(GuidExpected, pos, "invalid GUID %q", text)
	}
	icon.Guid = guid

	if icon.ID, err = parseInt(s); err != nil {
		return icon, err
	}
	return icon, s.expect('}')
}

func parseInt(s *lineScanner) (int, error) {
	text, pos, err := s.identifier("integer")
	if err != nil {
		return 0, s.errorAt(IntegerExpected, pos, "expected integer")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, s.errorAt(IntegerExpected, pos, "invalid integer %q", text)
	}
	return n, nil
}
