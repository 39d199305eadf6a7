// Package imports projects a project's MSBuild import graph into the
// "Imports" subtree of the project tree and keeps it in sync as the graph
// changes.
package imports

import (
	"errors"
	"sort"
	"strings"
)

// ErrImportCycle is returned when a file imports itself, directly or
// through other imports.
var ErrImportCycle = errors.New("import cycle detected")

// CycleError describes an import cycle. Path starts and ends with the same
// file.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return ErrImportCycle.Error() + ": " + strings.Join(e.Path, " -> ")
}

// Unwrap returns ErrImportCycle.
func (e *CycleError) Unwrap() error {
	return ErrImportCycle
}

// Snapshot is one version of a project's import graph. Imports maps a file
// to the files it imports, in document order; the project file is the root
// of the graph.
type Snapshot struct {
	Version               int64
	ProjectPath           string
	ProjectExtensionsPath string
	Imports               map[string][]string
}

// Children returns the files imported directly by path.
func (s *Snapshot) Children(path string) []string {
	if s == nil {
		return nil
	}
	return s.Imports[path]
}

// Files returns every file in the graph, including the project, sorted.
func (s *Snapshot) Files() []string {
	seen := map[string]bool{s.ProjectPath: true}
	for from, tos := range s.Imports {
		seen[from] = true
		for _, to := range tos {
			seen[to] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Validate reports the first import cycle reachable from the project.
func (s *Snapshot) Validate() error {
	onPath := make(map[string]bool)
	done := make(map[string]bool)
	var stack []string

	var visit func(path string) error
	visit = func(path string) error {
		if onPath[path] {
			start := 0
			for i, p := range stack {
				if p == path {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), stack[start:]...), path)
			return &CycleError{Path: cycle}
		}
		if done[path] {
			return nil
		}
		onPath[path] = true
		stack = append(stack, path)
		for _, child := range s.Imports[path] {
			if err := visit(child); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		onPath[path] = false
		done[path] = true
		return nil
	}
	return visit(s.ProjectPath)
}
