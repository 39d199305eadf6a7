// Package buildlog tracks builds while they run and records their events to
// a temporary binary log that can later be replayed into a logmodel.Log.
package buildlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyFinished is returned when Finish is called on a build that has
// already left the Running state.
var ErrAlreadyFinished = errors.New("build already finished")

// Status is the state of a tracked build.
type Status int

const (
	// StatusRunning is the initial state.
	StatusRunning Status = iota
	// StatusFinished means the build completed successfully.
	StatusFinished
	// StatusFailed means the build completed with failure.
	StatusFailed
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// BuildType is the kind of MSBuild invocation.
type BuildType int

const (
	// TypeEvaluation is an evaluation without a build.
	TypeEvaluation BuildType = iota
	// TypeDesignTimeBuild is a build run by the IDE to gather project data.
	TypeDesignTimeBuild
	// TypeBuild is a user-requested build.
	TypeBuild
	// TypeRoslyn is a build issued by the language service.
	TypeRoslyn
)

// String returns the build type name.
func (t BuildType) String() string {
	switch t {
	case TypeEvaluation:
		return "Evaluation"
	case TypeDesignTimeBuild:
		return "DesignTimeBuild"
	case TypeBuild:
		return "Build"
	case TypeRoslyn:
		return "Roslyn"
	default:
		return fmt.Sprintf("BuildType(%d)", int(t))
	}
}

// Build is the live record of one build. Unlike the logmodel types it is
// mutable: it starts Running and moves exactly once to Finished or Failed.
//
// Build is not safe for concurrent writers; callers serialize Finish.
type Build struct {
	ID          uuid.UUID
	ProjectPath string
	Dimensions  []string
	Targets     []string
	Type        BuildType
	StartTime   time.Time

	// LogPath is the temporary binary log owned by the build. It is deleted
	// by Dispose.
	LogPath string

	status  Status
	elapsed time.Duration
}

// NewBuild starts tracking a build. The binary log path is allocated under
// dir (os.TempDir when empty) but the file is only created by Recorder.
func NewBuild(projectPath string, dimensions, targets []string, buildType BuildType, start time.Time, dir string) *Build {
	if dir == "" {
		dir = os.TempDir()
	}
	id := uuid.New()
	return &Build{
		ID:          id,
		ProjectPath: projectPath,
		Dimensions:  dimensions,
		Targets:     targets,
		Type:        buildType,
		StartTime:   start,
		LogPath:     filepath.Join(dir, id.String()+".binlog"),
		status:      StatusRunning,
	}
}

// Status returns the current state.
func (b *Build) Status() Status {
	return b.status
}

// Elapsed returns the build duration. It is zero while the build runs.
func (b *Build) Elapsed() time.Duration {
	return b.elapsed
}

// Finish moves the build out of Running. The elapsed time is t - StartTime.
// A second call returns ErrAlreadyFinished and leaves the build unchanged.
func (b *Build) Finish(succeeded bool, t time.Time) error {
	if b.status != StatusRunning {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, b.ID, b.status)
	}
	b.elapsed = t.Sub(b.StartTime)
	if succeeded {
		b.status = StatusFinished
	} else {
		b.status = StatusFailed
	}
	return nil
}

// Dispose deletes the build's binary log. It is safe to call more than once.
func (b *Build) Dispose() error {
	if b.LogPath == "" {
		return nil
	}
	if err := os.Remove(b.LogPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove build log: %w", err)
	}
	return nil
}

// Recorder creates the binary log file and returns a writer for it.
func (b *Build) Recorder() (*Writer, error) {
	return Create(b.LogPath)
}

// String returns a one-line summary used in listings.
func (b *Build) String() string {
	name := filepath.Base(b.ProjectPath)
	dims := strings.Join(b.Dimensions, "|")
	if dims != "" {
		name += " (" + dims + ")"
	}
	s := fmt.Sprintf("%s %s [%s]", name, b.Type, b.status)
	if b.status != StatusRunning {
		s += fmt.Sprintf(" %s", b.elapsed.Round(time.Millisecond))
	}
	return s
}
