package logmodel

import (
	"fmt"
	"time"
)

// EventKind identifies a build event.
type EventKind uint8

// Event kinds. Started/Finished kinds open and close a context; the rest
// attach data to the innermost open context.
const (
	BuildStarted EventKind = iota + 1
	BuildFinished
	EvaluationStarted
	EvaluationFinished
	ProjectEvaluationStarted
	ProjectEvaluationFinished
	ProjectStarted
	ProjectFinished
	TargetStarted
	TargetFinished
	TargetSkipped
	TaskStarted
	TaskFinished
	TaskCommandLine
	TaskParameter
	TaskOutput
	MessageRaised
	WarningRaised
	ErrorRaised
	ItemsAdded
	ItemsRemoved
	PropertyAssigned
)

var eventKindNames = map[EventKind]string{
	BuildStarted:              "BuildStarted",
	BuildFinished:             "BuildFinished",
	EvaluationStarted:         "EvaluationStarted",
	EvaluationFinished:        "EvaluationFinished",
	ProjectEvaluationStarted:  "ProjectEvaluationStarted",
	ProjectEvaluationFinished: "ProjectEvaluationFinished",
	ProjectStarted:            "ProjectStarted",
	ProjectFinished:           "ProjectFinished",
	TargetStarted:             "TargetStarted",
	TargetFinished:            "TargetFinished",
	TargetSkipped:             "TargetSkipped",
	TaskStarted:               "TaskStarted",
	TaskFinished:              "TaskFinished",
	TaskCommandLine:           "TaskCommandLine",
	TaskParameter:             "TaskParameter",
	TaskOutput:                "TaskOutput",
	MessageRaised:             "Message",
	WarningRaised:             "Warning",
	ErrorRaised:               "Error",
	ItemsAdded:                "ItemsAdded",
	ItemsRemoved:              "ItemsRemoved",
	PropertyAssigned:          "PropertyAssigned",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// EventItem is an item carried by an event.
type EventItem struct {
	ItemType string            `msgpack:"type"`
	Include  string            `msgpack:"include"`
	Metadata map[string]string `msgpack:"metadata,omitempty"`
}

// Event is one structured build event as produced by a log reader.
// Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind `msgpack:"kind"`
	// ContextID correlates a Started event with its Finished event.
	ContextID int64     `msgpack:"ctx"`
	Timestamp time.Time `msgpack:"ts"`
	NodeID    int       `msgpack:"node,omitempty"`

	// Name is the project, target, task, item type or property name.
	Name string `msgpack:"name,omitempty"`
	// File is the project file, target/task source file or diagnostic file.
	File        string `msgpack:"file,omitempty"`
	ProjectFile string `msgpack:"project,omitempty"`
	// Text is the message text, property value or command line.
	Text string `msgpack:"text,omitempty"`

	Succeeded    bool   `msgpack:"ok,omitempty"`
	ParentTarget string `msgpack:"parentTarget,omitempty"`
	FromAssembly string `msgpack:"assembly,omitempty"`
	ToolsVersion string `msgpack:"toolsVersion,omitempty"`

	Code            string `msgpack:"code,omitempty"`
	Subcategory     string `msgpack:"subcategory,omitempty"`
	LineNumber      int    `msgpack:"line,omitempty"`
	ColumnNumber    int    `msgpack:"col,omitempty"`
	EndLineNumber   int    `msgpack:"endLine,omitempty"`
	EndColumnNumber int    `msgpack:"endCol,omitempty"`

	// GlobalProperties is set on ProjectStarted.
	GlobalProperties map[string]string `msgpack:"globalProps,omitempty"`
	// Properties holds evaluated properties on ProjectStarted and the
	// environment on BuildStarted.
	Properties map[string]string `msgpack:"props,omitempty"`
	Items      []EventItem       `msgpack:"items,omitempty"`

	// Profile is set on ProjectEvaluationFinished when profiling was on.
	Profile *EvaluatedProfile `msgpack:"profile,omitempty"`
}
