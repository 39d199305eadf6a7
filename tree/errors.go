package tree

import "fmt"

// ErrorKind classifies a tree text parse failure.
type ErrorKind int

const (
	// EmptyInput means the text holds no nodes.
	EmptyInput ErrorKind = iota + 1
	// MultipleRoots means a second line appeared at the root level.
	MultipleRoots
	// IndentTooManyLevels means a line is indented more than one level
	// deeper than the line before it.
	IndentTooManyLevels
	// UnrecognizedPropertyName means an unknown property or field name.
	UnrecognizedPropertyName
	// UnrecognizedPropertyValue means a known property has an unknown value.
	UnrecognizedPropertyValue
	// GuidExpected means an icon GUID could not be parsed.
	GuidExpected
	// IntegerExpected means a number could not be parsed.
	IntegerExpected
	// IdentifierExpected means a caption, name or value is missing.
	IdentifierExpected
	// DelimiterExpected means a specific punctuation character is missing.
	DelimiterExpected
	// EndOfStringExpected means unexpected text follows a complete line.
	EndOfStringExpected
	// QuotedStringExpected means a quoted value is missing or unterminated.
	QuotedStringExpected
)

var errorKindNames = map[ErrorKind]string{
	EmptyInput:                "EmptyInput",
	MultipleRoots:             "MultipleRoots",
	IndentTooManyLevels:       "IndentTooManyLevels",
	UnrecognizedPropertyName:  "UnrecognizedPropertyName",
	UnrecognizedPropertyValue: "UnrecognizedPropertyValue",
	GuidExpected:              "GuidExpected",
	IntegerExpected:           "IntegerExpected",
	IdentifierExpected:        "IdentifierExpected",
	DelimiterExpected:         "DelimiterExpected",
	EndOfStringExpected:       "EndOfStringExpected",
	QuotedStringExpected:      "QuotedStringExpected",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports a malformed line of tree text.
type ParseError struct {
	// Kind classifies the failure
	Kind ErrorKind

	// Line is the 1-based line number, or 0 when the failure is not tied to a line
	Line int

	// Column is the 1-based column within the line
	Column int

	// Message describes what went wrong
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%d: %s: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
