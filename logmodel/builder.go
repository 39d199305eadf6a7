package logmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmatchedFinished is returned when a Finished event does not close
	// the innermost open context.
	ErrUnmatchedFinished = errors.New("finished event does not match an open context")

	// ErrUnexpectedEvent is returned when an event cannot be attached to the
	// innermost open context (for example, a target outside any project).
	ErrUnexpectedEvent = errors.New("event not valid in current context")

	// ErrUnfinishedContexts is returned by Builder.Log while contexts are
	// still open.
	ErrUnfinishedContexts = errors.New("log has unfinished contexts")
)

type frameKind int

const (
	buildFrame frameKind = iota
	evaluationFrame
	projectEvaluationFrame
	projectFrame
	targetFrame
	taskFrame
)

func (k frameKind) String() string {
	return [...]string{"build", "evaluation", "project evaluation", "project", "target", "task"}[k]
}

// frame is an open accumulation context. Finished children are appended as
// they are frozen; the frame itself is frozen when its Finished event arrives.
type frame struct {
	kind    frameKind
	started Event

	messages []Entry

	// build
	project *Project

	// evaluation
	evaluated []EvaluatedProject

	// project
	targets []Target

	// target
	tasks        []Task
	itemActions  []ItemAction
	propertySets []PropertySet

	// task
	projects         []Project
	commandLine      string
	parameterItems   []ItemGroup
	parameterProps   map[string]string
	outputItems      []ItemGroup
	outputProperties map[string]string
}

// Builder assembles a Log from a stream of events. It keeps an explicit
// stack of open contexts: Started events push, Finished events pop and
// freeze the context into an immutable value owned by the new top of stack.
//
// A Builder belongs to one replay session and is not safe for concurrent use.
type Builder struct {
	stack       []*frame
	build       *Build
	evaluations []Evaluation
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Replay builds a Log from a complete event sequence.
func Replay(events []Event) (*Log, error) {
	b := NewBuilder()
	for i, e := range events {
		if err := b.Apply(e); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, e.Kind, err)
		}
	}
	return b.Log()
}

// Depth returns the number of open contexts.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Log returns the assembled log. Every context must be closed.
func (b *Builder) Log() (*Log, error) {
	if len(b.stack) > 0 {
		return nil, fmt.Errorf("%w: %d open, innermost %s", ErrUnfinishedContexts, len(b.stack), b.top().kind)
	}
	return &Log{Build: b.build, Evaluations: b.evaluations}, nil
}

// Apply folds one event into the builder.
func (b *Builder) Apply(e Event) error {
	switch e.Kind {
	case BuildStarted:
		b.push(buildFrame, e)
		return nil
	case EvaluationStarted:
		b.push(evaluationFrame, e)
		return nil
	case ProjectEvaluationStarted:
		if err := b.expect(e, evaluationFrame); err != nil {
			return err
		}
		b.push(projectEvaluationFrame, e)
		return nil
	case ProjectStarted:
		if err := b.expect(e, buildFrame, taskFrame); err != nil {
			return err
		}
		if top := b.top(); top.kind == buildFrame && top.project != nil {
			return fmt.Errorf("%w: build already has project %q", ErrUnexpectedEvent, top.project.Name)
		}
		b.push(projectFrame, e)
		return nil
	case TargetStarted:
		if err := b.expect(e, projectFrame); err != nil {
			return err
		}
		b.push(targetFrame, e)
		return nil
	case TaskStarted:
		if err := b.expect(e, targetFrame); err != nil {
			return err
		}
		b.push(taskFrame, e)
		return nil

	case BuildFinished:
		return b.finish(e, buildFrame)
	case EvaluationFinished:
		return b.finish(e, evaluationFrame)
	case ProjectEvaluationFinished:
		return b.finish(e, projectEvaluationFrame)
	case ProjectFinished:
		return b.finish(e, projectFrame)
	case TargetFinished:
		return b.finish(e, targetFrame)
	case TaskFinished:
		return b.finish(e, taskFrame)

	case TargetSkipped:
		return b.skipTarget(e)
	case MessageRaised:
		return b.addEntry(e, Message{Timestamp: e.Timestamp, Text: e.Text})
	case WarningRaised, ErrorRaised:
		return b.addEntry(e, b.diagnostic(e))
	case TaskCommandLine:
		if err := b.expect(e, taskFrame); err != nil {
			return err
		}
		b.top().commandLine = e.Text
		return nil
	case TaskParameter, TaskOutput:
		return b.taskValue(e)
	case ItemsAdded, ItemsRemoved:
		return b.itemAction(e)
	case PropertyAssigned:
		if err := b.expect(e, targetFrame); err != nil {
			return err
		}
		top := b.top()
		top.propertySets = append(top.propertySets, PropertySet{Name: e.Name, Value: e.Text, Time: e.Timestamp})
		return nil
	default:
		return fmt.Errorf("%w: unknown event kind %s", ErrUnexpectedEvent, e.Kind)
	}
}

func (b *Builder) push(kind frameKind, e Event) {
	b.stack = append(b.stack, &frame{kind: kind, started: e})
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// expect checks the innermost context is one of kinds.
func (b *Builder) expect(e Event, kinds ...frameKind) error {
	top := b.top()
	if top == nil {
		return fmt.Errorf("%w: %s with no open context", ErrUnexpectedEvent, e.Kind)
	}
	for _, k := range kinds {
		if top.kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s inside %s", ErrUnexpectedEvent, e.Kind, top.kind)
}

// innermost returns the open frame the event belongs to: the frame whose
// context ID matches, or the top of the stack when none does.
func (b *Builder) innermost(e Event) *frame {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].started.ContextID == e.ContextID {
			return b.stack[i]
		}
	}
	return b.top()
}

// projectFile returns the project file of the innermost open project.
func (b *Builder) projectFile() string {
	for i := len(b.stack) - 1; i >= 0; i-- {
		switch f := b.stack[i]; f.kind {
		case projectFrame, projectEvaluationFrame:
			return f.started.File
		}
	}
	return ""
}

func (b *Builder) diagnostic(e Event) Diagnostic {
	d := Diagnostic{
		Message:         Message{Timestamp: e.Timestamp, Text: e.Text},
		Severity:        SeverityWarning,
		Code:            e.Code,
		Subcategory:     e.Subcategory,
		File:            e.File,
		ProjectFile:     e.ProjectFile,
		LineNumber:      e.LineNumber,
		ColumnNumber:    e.ColumnNumber,
		EndLineNumber:   e.EndLineNumber,
		EndColumnNumber: e.EndColumnNumber,
	}
	if e.Kind == ErrorRaised {
		d.Severity = SeverityError
	}
	if d.ProjectFile == "" {
		d.ProjectFile = b.projectFile()
	}
	return d
}

func (b *Builder) addEntry(e Event, entry Entry) error {
	f := b.innermost(e)
	if f == nil {
		return fmt.Errorf("%w: %s with no open context", ErrUnexpectedEvent, e.Kind)
	}
	f.messages = append(f.messages, entry)
	return nil
}

func (b *Builder) skipTarget(e Event) error {
	if err := b.expect(e, projectFrame); err != nil {
		return err
	}
	top := b.top()
	top.targets = append(top.targets, Target{
		Node: Node{
			StartTime: e.Timestamp,
			EndTime:   e.Timestamp,
			Result:    ResultSkipped,
		},
		NodeID:         e.NodeID,
		Name:           e.Name,
		SourceFilePath: e.File,
		ParentTarget:   e.ParentTarget,
	})
	return nil
}

func (b *Builder) taskValue(e Event) error {
	if err := b.expect(e, taskFrame); err != nil {
		return err
	}
	top := b.top()
	if len(e.Items) > 0 {
		group := ItemGroup{Name: e.Name, Items: toItems(e.Items)}
		if e.Kind == TaskParameter {
			top.parameterItems = append(top.parameterItems, group)
		} else {
			top.outputItems = append(top.outputItems, group)
		}
		return nil
	}
	props := &top.parameterProps
	if e.Kind == TaskOutput {
		props = &top.outputProperties
	}
	if *props == nil {
		*props = make(map[string]string)
	}
	(*props)[e.Name] = e.Text
	return nil
}

func (b *Builder) itemAction(e Event) error {
	if err := b.expect(e, targetFrame); err != nil {
		return err
	}
	top := b.top()
	top.itemActions = append(top.itemActions, ItemAction{
		Time:       e.Timestamp,
		IsAddition: e.Kind == ItemsAdded,
		ItemGroup:  ItemGroup{Name: e.Name, Items: toItems(e.Items)},
	})
	return nil
}

// finish pops the top frame, freezes it and hands the frozen value to the
// new top of stack. On error the frame stays open.
func (b *Builder) finish(e Event, kind frameKind) (err error) {
	top := b.top()
	if top == nil || top.kind != kind || top.started.ContextID != e.ContextID {
		return fmt.Errorf("%w: %s for context %d", ErrUnmatchedFinished, e.Kind, e.ContextID)
	}

	b.stack = b.stack[:len(b.stack)-1]
	defer func() {
		if err != nil {
			b.stack = append(b.stack, top)
		}
	}()
	parent := b.top()
	start := top.started

	switch kind {
	case buildFrame:
		node, err := newNode(start.Timestamp, e.Timestamp, top.messages, resultOf(e.Succeeded))
		if err != nil {
			return err
		}
		build := &Build{Node: node, Project: top.project, Environment: copyMap(start.Properties)}
		b.build = build

	case evaluationFrame:
		b.evaluations = append(b.evaluations, Evaluation{Messages: top.messages, Projects: top.evaluated})

	case projectEvaluationFrame:
		if end := e.Timestamp; end.Before(start.Timestamp) {
			return fmt.Errorf("%w: project evaluation %q", ErrNegativeDuration, start.Name)
		}
		parent.evaluated = append(parent.evaluated, EvaluatedProject{
			Name:      start.Name,
			StartTime: start.Timestamp,
			EndTime:   e.Timestamp,
			Messages:  top.messages,
			Profile:   e.Profile,
		})

	case projectFrame:
		project, err := freezeProject(top, e)
		if err != nil {
			return err
		}
		if parent.kind == buildFrame {
			parent.project = &project
		} else {
			parent.projects = append(parent.projects, project)
		}

	case targetFrame:
		target, err := freezeTarget(top, e)
		if err != nil {
			return err
		}
		parent.targets = append(parent.targets, target)

	case taskFrame:
		task, err := freezeTask(top, e)
		if err != nil {
			return err
		}
		parent.tasks = append(parent.tasks, task)
	}

	return nil
}

func freezeProject(f *frame, e Event) (Project, error) {
	start := f.started
	node, err := newNode(start.Timestamp, e.Timestamp, f.messages, resultOf(e.Succeeded))
	if err != nil {
		return Project{}, fmt.Errorf("project %q: %w", start.Name, err)
	}
	return Project{
		Node:             node,
		NodeID:           start.NodeID,
		Name:             start.Name,
		ProjectFile:      start.File,
		ToolsVersion:     start.ToolsVersion,
		GlobalProperties: copyMap(start.GlobalProperties),
		Properties:       copyMap(start.Properties),
		ItemGroups:       groupItems(start.Items),
		Targets:          f.targets,
	}, nil
}

func freezeTarget(f *frame, e Event) (Target, error) {
	start := f.started
	node, err := newNode(start.Timestamp, e.Timestamp, f.messages, resultOf(e.Succeeded))
	if err != nil {
		return Target{}, fmt.Errorf("target %q: %w", start.Name, err)
	}
	return Target{
		Node:           node,
		NodeID:         start.NodeID,
		Name:           start.Name,
		SourceFilePath: start.File,
		ParentTarget:   start.ParentTarget,
		OutputItems:    toItems(e.Items),
		ItemActions:    f.itemActions,
		PropertySets:   f.propertySets,
		Tasks:          f.tasks,
	}, nil
}

func freezeTask(f *frame, e Event) (Task, error) {
	start := f.started
	node, err := newNode(start.Timestamp, e.Timestamp, f.messages, resultOf(e.Succeeded))
	if err != nil {
		return Task{}, fmt.Errorf("task %q: %w", start.Name, err)
	}
	return Task{
		Node:                 node,
		NodeID:               start.NodeID,
		Name:                 start.Name,
		FromAssembly:         start.FromAssembly,
		CommandLineArguments: f.commandLine,
		SourceFilePath:       start.File,
		Projects:             f.projects,
		ParameterItems:       f.parameterItems,
		ParameterProperties:  f.parameterProps,
		OutputItems:          f.outputItems,
		OutputProperties:     f.outputProperties,
	}, nil
}
