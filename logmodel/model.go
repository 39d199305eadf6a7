package logmodel

import "time"

// Build is the root of a build: the requested project and the environment
// the build ran in.
type Build struct {
	Node
	Project     *Project
	Environment map[string]string
}

// Project is one project instance built during the build. A project is
// built either as the build's entry point or by a task (typically the
// MSBuild task) of another project.
type Project struct {
	Node
	NodeID           int
	Name             string
	ProjectFile      string
	ToolsVersion     string
	GlobalProperties map[string]string
	Properties       map[string]string
	ItemGroups       []ItemGroup
	Targets          []Target
}

// Target is one executed (or skipped) target of a project.
type Target struct {
	Node
	NodeID         int
	Name           string
	SourceFilePath string
	// ParentTarget names the target that caused this one to run; it is
	// empty for targets requested directly.
	ParentTarget string
	OutputItems  []Item
	ItemActions  []ItemAction
	PropertySets []PropertySet
	Tasks        []Task
}

// IsRequestedTarget reports whether the target was requested directly
// rather than run as a dependency of another target.
func (t Target) IsRequestedTarget() bool {
	return t.ParentTarget == ""
}

// Task is one task invocation inside a target.
type Task struct {
	Node
	NodeID               int
	Name                 string
	FromAssembly         string
	CommandLineArguments string
	SourceFilePath       string
	// Projects are builds spawned by the task, in start order.
	Projects            []Project
	ParameterItems      []ItemGroup
	ParameterProperties map[string]string
	OutputItems         []ItemGroup
	OutputProperties    map[string]string
}

// EvaluatedProject is a project evaluated (not built) during an evaluation.
type EvaluatedProject struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Messages  []Entry
	Profile   *EvaluatedProfile
}

// Result always reports success; evaluations that fail never produce an
// EvaluatedProject.
func (p EvaluatedProject) Result() Result {
	return ResultSucceeded
}

// Duration returns the time the evaluation took.
func (p EvaluatedProject) Duration() time.Duration {
	return p.EndTime.Sub(p.StartTime)
}

// Evaluation groups the projects evaluated in one evaluation pass.
type Evaluation struct {
	Messages []Entry
	Projects []EvaluatedProject
}

// Log is the top-level aggregate: the build plus the evaluations that ran.
// Build is nil for logs that only contain evaluations.
type Log struct {
	Build       *Build
	Evaluations []Evaluation
}

// Diagnostics returns every diagnostic in the log in the order it would be
// encountered reading the build top-down, followed by evaluation diagnostics.
func (l *Log) Diagnostics() []Diagnostic {
	var out []Diagnostic
	if l.Build != nil {
		out = append(out, l.Build.Diagnostics()...)
		if l.Build.Project != nil {
			out = appendProjectDiagnostics(out, *l.Build.Project)
		}
	}
	for _, ev := range l.Evaluations {
		out = append(out, diagnosticsOf(ev.Messages)...)
		for _, p := range ev.Projects {
			out = append(out, diagnosticsOf(p.Messages)...)
		}
	}
	return out
}

// Counts returns the number of errors and warnings in the log.
func (l *Log) Counts() (errors, warnings int) {
	for _, d := range l.Diagnostics() {
		if d.IsError() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

func appendProjectDiagnostics(out []Diagnostic, p Project) []Diagnostic {
	out = append(out, p.Diagnostics()...)
	for _, t := range p.Targets {
		out = append(out, t.Diagnostics()...)
		for _, task := range t.Tasks {
			out = append(out, task.Diagnostics()...)
			for _, child := range task.Projects {
				out = appendProjectDiagnostics(out, child)
			}
		}
	}
	return out
}

func diagnosticsOf(entries []Entry) []Diagnostic {
	return Node{Messages: entries}.Diagnostics()
}
