package dependencies

import (
	"path"
	"strings"

	"github.com/willibrandon/projsys/tree"
)

// Flags added to dependency nodes besides the well-known tree flags.
const (
	FlagPackage     = "Package"
	FlagProject     = "ProjectReference"
	FlagAssembly    = "Assembly"
	FlagContentFile = "ContentFile"
	FlagDiagnostic  = "Diagnostic"
)

// Item is a node in the dependencies tree. Items are immutable once
// created; a refresh that changes display state replaces the item with a
// copy under the same key, so published lists never change underneath a
// reader.
type Item interface {
	// Key identifies the item among its siblings.
	Key() string

	// Caption is the display text.
	Caption() string

	// Flags are the tree flags for the item.
	Flags() tree.Flags

	// TryUpdateState reads the item's state for the library named name in
	// target. When the state differs it returns a copy carrying the new
	// state and true; otherwise it returns the receiver and false.
	TryUpdateState(s *Snapshot, target, name string) (Item, bool)
}

// LibraryItem is an item backed by a library in the assets file.
type LibraryItem interface {
	Item
	LibraryName() string
}

// diagnosticFlags returns the flag marking the worst log level for library.
func diagnosticFlags(s *Snapshot, target, library string) tree.Flags {
	var flags tree.Flags
	for _, e := range s.LogsFor(target, library) {
		switch e.Level {
		case LevelError:
			return tree.NewFlags(tree.FlagDiagnosticErrorNode)
		case LevelWarning:
			flags = tree.NewFlags(tree.FlagDiagnosticWarningNode)
		}
	}
	return flags
}

// PackageItem is a package dependency.
type PackageItem struct {
	name        string
	version     string
	diagnostics tree.Flags
}

// NewPackageItem creates an item for lib.
func NewPackageItem(s *Snapshot, target string, lib *Library) *PackageItem {
	return &PackageItem{
		name:        lib.Name,
		version:     lib.Version,
		diagnostics: diagnosticFlags(s, target, lib.Name),
	}
}

func (p *PackageItem) Key() string {
	return p.name
}

func (p *PackageItem) LibraryName() string {
	return p.name
}

// Version returns the resolved package version.
func (p *PackageItem) Version() string {
	return p.version
}

// Caption returns "Name (Version)".
func (p *PackageItem) Caption() string {
	if p.version == "" {
		return p.name
	}
	return p.name + " (" + p.version + ")"
}

// Flags returns the package flags.
func (p *PackageItem) Flags() tree.Flags {
	return tree.NewFlags(tree.FlagDependency, FlagPackage).Union(p.diagnostics)
}

// TryUpdateState refreshes the resolved version and diagnostic level.
func (p *PackageItem) TryUpdateState(s *Snapshot, target, name string) (Item, bool) {
	t, err := s.Target(target)
	if err != nil {
		return p, false
	}
	version := p.version
	if lib, ok := t.Library(name); ok {
		version = lib.Version
	}
	diagnostics := diagnosticFlags(s, target, name)
	if version == p.version && diagnostics.Equal(p.diagnostics) {
		return p, false
	}
	return &PackageItem{name: p.name, version: version, diagnostics: diagnostics}, true
}

// ProjectItem is a project reference.
type ProjectItem struct {
	name        string
	path        string
	diagnostics tree.Flags
}

// NewProjectItem creates an item for lib.
func NewProjectItem(s *Snapshot, target string, lib *Library) *ProjectItem {
	return &ProjectItem{
		name:        lib.Name,
		path:        lib.Path,
		diagnostics: diagnosticFlags(s, target, lib.Name),
	}
}

func (p *ProjectItem) Key() string {
	return p.name
}

func (p *ProjectItem) LibraryName() string {
	return p.name
}

func (p *ProjectItem) Caption() string {
	return p.name
}

// Path returns the referenced project path as recorded in the assets file.
func (p *ProjectItem) Path() string {
	return p.path
}

// Flags returns the project reference flags.
func (p *ProjectItem) Flags() tree.Flags {
	return tree.NewFlags(tree.FlagDependency, FlagProject).Union(p.diagnostics)
}

// TryUpdateState refreshes the project path and diagnostic level.
func (p *ProjectItem) TryUpdateState(s *Snapshot, target, name string) (Item, bool) {
	t, err := s.Target(target)
	if err != nil {
		return p, false
	}
	projectPath := p.path
	if lib, ok := t.Library(name); ok {
		projectPath = lib.Path
	}
	diagnostics := diagnosticFlags(s, target, name)
	if projectPath == p.path && diagnostics.Equal(p.diagnostics) {
		return p, false
	}
	return &ProjectItem{name: p.name, path: projectPath, diagnostics: diagnostics}, true
}

// AssemblyItem is a compile-time assembly of a package.
type AssemblyItem struct {
	path string
}

// NewAssemblyItem creates an item for an assembly path.
func NewAssemblyItem(assetPath string) *AssemblyItem {
	return &AssemblyItem{path: assetPath}
}

func (a *AssemblyItem) Key() string {
	return a.path
}

func (a *AssemblyItem) Caption() string {
	return path.Base(a.path)
}

func (a *AssemblyItem) Flags() tree.Flags {
	return tree.NewFlags(tree.FlagReference, FlagAssembly)
}

func (a *AssemblyItem) TryUpdateState(*Snapshot, string, string) (Item, bool) {
	return a, false
}

// ContentFileItem is a content file contributed by a package.
type ContentFileItem struct {
	path string
}

// NewContentFileItem creates an item for a content file path.
func NewContentFileItem(assetPath string) *ContentFileItem {
	return &ContentFileItem{path: assetPath}
}

func (c *ContentFileItem) Key() string {
	return c.path
}

func (c *ContentFileItem) Caption() string {
	return path.Base(c.path)
}

func (c *ContentFileItem) Flags() tree.Flags {
	return tree.NewFlags(FlagContentFile)
}

func (c *ContentFileItem) TryUpdateState(*Snapshot, string, string) (Item, bool) {
	return c, false
}

// DiagnosticItem is a restore log entry attached to a library.
type DiagnosticItem struct {
	library string
	code    string
	message string
	level   LogLevel
}

// NewDiagnosticItem creates an item for e.
func NewDiagnosticItem(e LogEntry) *DiagnosticItem {
	return &DiagnosticItem{library: e.LibraryName, code: e.Code, message: e.Message, level: e.Level}
}

// diagnosticKey orders diagnostics by library name, then message.
func diagnosticKey(e LogEntry) string {
	return strings.Join([]string{e.LibraryName, e.Message, e.Code}, "\x00")
}

func (d *DiagnosticItem) Key() string {
	return diagnosticKey(LogEntry{LibraryName: d.library, Message: d.message, Code: d.code})
}

// Level returns the diagnostic's current level.
func (d *DiagnosticItem) Level() LogLevel {
	return d.level
}

// Caption returns "CODE: message".
func (d *DiagnosticItem) Caption() string {
	if d.code == "" {
		return d.message
	}
	return d.code + ": " + d.message
}

// Flags returns the flag matching the diagnostic level.
func (d *DiagnosticItem) Flags() tree.Flags {
	flags := tree.NewFlags(FlagDiagnostic)
	switch d.level {
	case LevelError:
		flags = flags.Add(tree.FlagDiagnosticErrorNode)
	case LevelWarning:
		flags = flags.Add(tree.FlagDiagnosticWarningNode)
	}
	return flags
}

// TryUpdateState refreshes the level from the matching log entry.
func (d *DiagnosticItem) TryUpdateState(s *Snapshot, target, name string) (Item, bool) {
	for _, e := range s.LogsFor(target, name) {
		if e.Message == d.message && e.Code == d.code {
			if e.Level == d.level {
				return d, false
			}
			updated := *d
			updated.level = e.Level
			return &updated, true
		}
	}
	return d, false
}

// NodeFor creates a tree node displaying item.
func NodeFor(item Item) *tree.Node {
	return tree.New(item.Caption()).SetFlags(item.Flags())
}
