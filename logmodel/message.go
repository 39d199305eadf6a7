package logmodel

import (
	"strconv"
	"strings"
	"time"
)

// Entry is one line of a node's log: either a Message or a Diagnostic.
type Entry interface {
	// At returns the time the entry was logged.
	At() time.Time
	String() string
	entry()
}

// Message is a plain, atomic log line.
type Message struct {
	Timestamp time.Time
	Text      string
}

// At implements Entry.
func (m Message) At() time.Time { return m.Timestamp }

// String returns the message text.
func (m Message) String() string { return m.Text }

func (Message) entry() {}

// Severity classifies a Diagnostic.
type Severity int

const (
	// SeverityWarning marks a warning.
	SeverityWarning Severity = iota
	// SeverityError marks an error.
	SeverityError
)

// String returns the kind word used when rendering a diagnostic.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a warning or error message with source location.
// Line and column numbers are 1-based; zero means "not specified".
type Diagnostic struct {
	Message
	Severity        Severity
	Code            string
	Subcategory     string
	File            string
	ProjectFile     string
	LineNumber      int
	ColumnNumber    int
	EndLineNumber   int
	EndColumnNumber int
}

// IsError reports whether the diagnostic is an error.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic in the canonical compiler format:
//
//	file(line,col): subcategory error CODE: text [project]
//
// Segments with no data are left out.
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.File != "" {
		b.WriteString(d.File)
		if loc := d.location(); loc != "" {
			b.WriteString(loc)
		}
		b.WriteByte(':')
	}

	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if d.Subcategory != "" {
		b.WriteString(d.Subcategory)
		b.WriteByte(' ')
	}
	b.WriteString(d.Severity.String())
	if d.Code != "" {
		b.WriteByte(' ')
		b.WriteString(d.Code)
	}
	b.WriteByte(':')

	if d.Text != "" {
		b.WriteByte(' ')
		b.WriteString(d.Text)
	}

	if d.ProjectFile != "" {
		b.WriteString(" [")
		b.WriteString(d.ProjectFile)
		b.WriteByte(']')
	}

	return b.String()
}

// location renders "(line)", "(line,col)" or "(line,col,endLine,endCol)".
func (d Diagnostic) location() string {
	if d.LineNumber <= 0 {
		return ""
	}
	parts := []string{strconv.Itoa(d.LineNumber)}
	if d.ColumnNumber > 0 {
		parts = append(parts, strconv.Itoa(d.ColumnNumber))
		if d.EndLineNumber > 0 && d.EndColumnNumber > 0 {
			parts = append(parts, strconv.Itoa(d.EndLineNumber), strconv.Itoa(d.EndColumnNumber))
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}
