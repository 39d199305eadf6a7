package buildlog

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/willibrandon/projsys/observability"
)

// Table tracks the builds seen during a logging session. Unlike a single
// Build it may be used from several goroutines.
type Table struct {
	mu     sync.Mutex
	builds map[uuid.UUID]*Build
	order  []uuid.UUID
	logger observability.Logger
}

// NewTable creates an empty table. A nil logger discards output.
func NewTable(logger observability.Logger) *Table {
	return &Table{
		builds: make(map[uuid.UUID]*Build),
		logger: observability.OrNull(logger),
	}
}

// Add starts tracking b. Adding the same build twice is a no-op.
func (t *Table) Add(b *Build) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.builds[b.ID]; ok {
		return
	}
	t.builds[b.ID] = b
	t.order = append(t.order, b.ID)
	t.logger.Debug("Tracking {BuildType} build of {Project}", b.Type.String(), b.ProjectPath)
	t.updateGauges()
}

// Finish finishes the tracked build with the given ID.
func (t *Table) Finish(id uuid.UUID, succeeded bool, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.builds[id]
	if !ok {
		return errors.New("build not tracked: " + id.String())
	}
	if err := b.Finish(succeeded, at); err != nil {
		return err
	}
	t.logger.Debug("Build of {Project} {Status} after {Elapsed}", b.ProjectPath, b.Status().String(), b.Elapsed())
	t.updateGauges()
	return nil
}

// Get returns the build with the given ID.
func (t *Table) Get(id uuid.UUID) (*Build, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.builds[id]
	return b, ok
}

// Builds returns the tracked builds ordered by start time, oldest first.
// Builds that started at the same time keep the order they were added in.
func (t *Table) Builds() []*Build {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Build, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.builds[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Clear disposes every tracked build and empties the table. Disposal
// errors are joined; every build is removed regardless.
func (t *Table) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, id := range t.order {
		if err := t.builds[id].Dispose(); err != nil {
			t.logger.Warn("Failed to delete build log {Path}: {Error}", t.builds[id].LogPath, err)
			errs = append(errs, err)
		}
	}
	t.builds = make(map[uuid.UUID]*Build)
	t.order = nil
	t.updateGauges()
	return errors.Join(errs...)
}

// updateGauges must be called with mu held.
func (t *Table) updateGauges() {
	counts := map[Status]int{StatusRunning: 0, StatusFinished: 0, StatusFailed: 0}
	for _, b := range t.builds {
		counts[b.Status()]++
	}
	for s, n := range counts {
		observability.LiveBuilds.WithLabelValues(s.String()).Set(float64(n))
	}
}
