// Package dependencies models the resolved dependency graph recorded in a
// project's project.assets.json and maintains the relation child lists
// shown under each dependency.
package dependencies

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrTargetNotFound is returned when a snapshot has no target of the
// requested name.
var ErrTargetNotFound = errors.New("target not found in assets file")

// LibraryType distinguishes packages from project references.
type LibraryType string

const (
	// TypePackage is a NuGet package.
	TypePackage LibraryType = "package"
	// TypeProject is a project reference.
	TypeProject LibraryType = "project"
)

// placeholderFile marks an empty asset folder in a package.
const placeholderFile = "_._"

// Library is one resolved library within a target.
type Library struct {
	Name                  string
	Version               string
	Type                  LibraryType
	Path                  string
	Dependencies          []string
	CompileTimeAssemblies []string
	ContentFiles          []string
}

// LogLevel is the severity of a restore log entry.
type LogLevel string

const (
	LevelError       LogLevel = "Error"
	LevelWarning     LogLevel = "Warning"
	LevelInformation LogLevel = "Information"
)

// LogEntry is a restore diagnostic.
type LogEntry struct {
	Code         string
	Level        LogLevel
	Message      string
	LibraryName  string
	TargetGraphs []string
}

// AppliesTo reports whether the entry concerns target. Entries without
// target graphs apply to every target.
func (e LogEntry) AppliesTo(target string) bool {
	if len(e.TargetGraphs) == 0 {
		return true
	}
	for _, g := range e.TargetGraphs {
		if strings.EqualFold(g, target) {
			return true
		}
	}
	return false
}

// Target is the dependency graph for one target framework.
type Target struct {
	Name string

	// TopLevel lists the libraries the project references directly.
	TopLevel []string

	libraries map[string]*Library
	names     []string
}

// Library looks up a library by name, ignoring case.
func (t *Target) Library(name string) (*Library, bool) {
	lib, ok := t.libraries[strings.ToLower(name)]
	return lib, ok
}

// Libraries returns the target's libraries in ordinal name order.
func (t *Target) Libraries() []*Library {
	out := make([]*Library, len(t.names))
	for i, n := range t.names {
		out[i] = t.libraries[strings.ToLower(n)]
	}
	return out
}

// Snapshot is a parsed assets file.
type Snapshot struct {
	Version     int
	ProjectPath string
	Targets     map[string]*Target
	Logs        []LogEntry
}

// Target returns the named target.
func (s *Snapshot) Target(name string) (*Target, error) {
	if t, ok := s.Targets[name]; ok {
		return t, nil
	}
	names := make([]string, 0, len(s.Targets))
	for n := range s.Targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("%w: %s (available: %s)", ErrTargetNotFound, name, strings.Join(names, ", "))
}

// TargetNames returns the target names, sorted.
func (s *Snapshot) TargetNames() []string {
	names := make([]string, 0, len(s.Targets))
	for n := range s.Targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LogsFor returns the entries about library that apply to target.
func (s *Snapshot) LogsFor(target, library string) []LogEntry {
	var out []LogEntry
	for _, e := range s.Logs {
		if strings.EqualFold(e.LibraryName, library) && e.AppliesTo(target) {
			out = append(out, e)
		}
	}
	return out
}

// assetsFile mirrors the parts of project.assets.json read here.
type assetsFile struct {
	Version                     int                                 `json:"version"`
	Targets                     map[string]map[string]targetLibrary `json:"targets"`
	Libraries                   map[string]libraryInfo              `json:"libraries"`
	ProjectFileDependencyGroups map[string][]string                 `json:"projectFileDependencyGroups"`
	Project                     projectInfo                         `json:"project"`
	Logs                        []assetsLog                         `json:"logs"`
}

type projectInfo struct {
	Restore restoreInfo `json:"restore"`
}

type restoreInfo struct {
	ProjectPath string `json:"projectPath"`
}

type targetLibrary struct {
	Type         string                     `json:"type"`
	Dependencies map[string]string          `json:"dependencies"`
	Compile      map[string]json.RawMessage `json:"compile"`
	ContentFiles map[string]json.RawMessage `json:"contentFiles"`
}

type libraryInfo struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type assetsLog struct {
	Code         string   `json:"code"`
	Level        string   `json:"level"`
	Message      string   `json:"message"`
	LibraryID    string   `json:"libraryId"`
	TargetGraphs []string `json:"targetGraphs"`
}

// LoadAssets reads a project.assets.json file.
func LoadAssets(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}
	defer f.Close()

	s, err := ParseAssets(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseAssets decodes assets JSON.
func ParseAssets(r io.Reader) (*Snapshot, error) {
	var af assetsFile
	if err := json.NewDecoder(r).Decode(&af); err != nil {
		return nil, fmt.Errorf("failed to parse assets file: %w", err)
	}

	s := &Snapshot{
		Version:     af.Version,
		ProjectPath: af.Project.Restore.ProjectPath,
		Targets:     make(map[string]*Target, len(af.Targets)),
	}

	for targetName, libs := range af.Targets {
		t := &Target{Name: targetName, libraries: make(map[string]*Library, len(libs))}
		for key, tl := range libs {
			name, version, _ := strings.Cut(key, "/")
			lib := &Library{
				Name:                  name,
				Version:               version,
				Type:                  LibraryType(tl.Type),
				Path:                  af.Libraries[key].Path,
				Dependencies:          sortedKeys(tl.Dependencies),
				CompileTimeAssemblies: assetPaths(tl.Compile),
				ContentFiles:          assetPaths(tl.ContentFiles),
			}
			t.libraries[strings.ToLower(name)] = lib
			t.names = append(t.names, name)
		}
		sort.Strings(t.names)
		// Dependency groups are keyed by framework alias; RID-specific
		// targets ("net8.0/win-x64") share the group of their framework.
		framework, _, _ := strings.Cut(targetName, "/")
		for _, dep := range af.ProjectFileDependencyGroups[framework] {
			if name := strings.Fields(dep); len(name) > 0 {
				t.TopLevel = append(t.TopLevel, name[0])
			}
		}
		s.Targets[targetName] = t
	}

	for _, l := range af.Logs {
		s.Logs = append(s.Logs, LogEntry{
			Code:         l.Code,
			Level:        LogLevel(l.Level),
			Message:      l.Message,
			LibraryName:  l.LibraryID,
			TargetGraphs: l.TargetGraphs,
		})
	}
	return s, nil
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// assetPaths returns asset paths, skipping empty-folder placeholders.
func assetPaths(m map[string]json.RawMessage) []string {
	var out []string
	for _, p := range sortedKeys(m) {
		if p == placeholderFile || strings.HasSuffix(p, "/"+placeholderFile) {
			continue
		}
		out = append(out, p)
	}
	return out
}
