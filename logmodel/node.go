// Package logmodel is a read-only object model of a single MSBuild build:
// the build, its projects, targets and tasks, the evaluations that ran
// alongside it, and every message and diagnostic they produced.
//
// Values are assembled bottom-up by a Builder as build events are replayed
// and are never modified after construction.
package logmodel

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDuration is returned when a node would finish before it started.
var ErrNegativeDuration = errors.New("node end time precedes start time")

// Result is the outcome of a node.
type Result int

const (
	// ResultSucceeded means the node ran to completion without errors.
	ResultSucceeded Result = iota
	// ResultFailed means the node reported failure.
	ResultFailed
	// ResultSkipped means the node did not run (for example, a target whose
	// condition was false or whose outputs were up to date).
	ResultSkipped
)

// String returns the lower-case name of the result.
func (r Result) String() string {
	switch r {
	case ResultSucceeded:
		return "succeeded"
	case ResultFailed:
		return "failed"
	case ResultSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// resultOf maps a finished event's success flag to a Result.
func resultOf(succeeded bool) Result {
	if succeeded {
		return ResultSucceeded
	}
	return ResultFailed
}

// Node holds the data shared by every timed element of the model.
// It is embedded by value in Build, Project, Target and Task.
type Node struct {
	StartTime time.Time
	EndTime   time.Time
	// Messages are in arrival order.
	Messages []Entry
	Result   Result
}

func newNode(start, end time.Time, messages []Entry, result Result) (Node, error) {
	if end.Before(start) {
		return Node{}, fmt.Errorf("%w: started %s, ended %s",
			ErrNegativeDuration, start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	}
	return Node{
		StartTime: start,
		EndTime:   end,
		Messages:  messages,
		Result:    result,
	}, nil
}

// Duration returns the wall-clock time between start and end.
func (n Node) Duration() time.Duration {
	return n.EndTime.Sub(n.StartTime)
}

// Diagnostics returns the warnings and errors among the node's messages,
// in arrival order.
func (n Node) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, m := range n.Messages {
		if d, ok := m.(Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}
