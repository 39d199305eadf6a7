package dependencies

import (
	"slices"
	"strings"

	"github.com/willibrandon/projsys/diff"
)

// Entry is one child of a parent as recorded in a snapshot.
type Entry struct {
	// Key orders and matches children.
	Key string
	// Name is passed to TryUpdateState: a library name, asset path, or
	// for diagnostics the owning library.
	Name string
	// Log is set for diagnostic entries.
	Log *LogEntry
}

// Relation describes how items of type C hang below items of type P. One
// value exists per parent/child pairing; the behavior differs only in the
// functions it is built from.
type Relation[P, C Item] struct {
	// Name identifies the relation in logs and metrics.
	Name string

	entries func(s *Snapshot, t *Target, parent P) []Entry
	create  func(s *Snapshot, target string, e Entry) C
	parents func(s *Snapshot, t *Target, child C) []P
}

// HasContainedItems reports whether parent has any children in target.
func (r *Relation[P, C]) HasContainedItems(s *Snapshot, target string, parent P) bool {
	t, err := s.Target(target)
	if err != nil {
		return false
	}
	return len(r.entries(s, t, parent)) > 0
}

// UpdateContainsCollection returns parent's children for target, reusing
// items from existing whose keys still appear. The result is ordered by
// key; when nothing changed it is existing itself.
func (r *Relation[P, C]) UpdateContainsCollection(s *Snapshot, target string, parent P, existing []C) ([]C, bool, error) {
	res, err := r.update(s, target, parent, existing)
	if err != nil {
		return existing, false, err
	}
	return res.Items, res.Changed, nil
}

func (r *Relation[P, C]) update(s *Snapshot, target string, parent P, existing []C) (diff.Result[C], error) {
	t, err := s.Target(target)
	if err != nil {
		return diff.Result[C]{}, err
	}
	entries := r.entries(s, t, parent)
	slices.SortStableFunc(entries, func(a, b Entry) int { return diff.OrdinalCompare(a.Key, b.Key) })

	return diff.Sync(existing, entries, diff.Strategy[string, C, Entry]{
		ExistingKey: func(c C) string { return c.Key() },
		SnapshotKey: func(e Entry) string { return e.Key },
		Compare:     diff.OrdinalCompare,
		Create:      func(e Entry) C { return r.create(s, target, e) },
		Update: func(c C, e Entry) (C, bool) {
			updated, changed := c.TryUpdateState(s, target, e.Name)
			if !changed {
				return c, false
			}
			return updated.(C), true
		},
	}), nil
}

// CreateContainedByItems returns new items for the parents of child in
// target, ordered by key.
func (r *Relation[P, C]) CreateContainedByItems(s *Snapshot, target string, child C) []P {
	t, err := s.Target(target)
	if err != nil {
		return nil
	}
	parents := r.parents(s, t, child)
	slices.SortStableFunc(parents, func(a, b P) int { return diff.OrdinalCompare(a.Key(), b.Key()) })
	return parents
}

// libraryEntries lists dependencies of parent that resolve to libraries
// of the given type.
func libraryEntries(t *Target, parent string, typ LibraryType) []Entry {
	lib, ok := t.Library(parent)
	if !ok {
		return nil
	}
	var out []Entry
	for _, dep := range lib.Dependencies {
		if d, ok := t.Library(dep); ok && d.Type == typ {
			out = append(out, Entry{Key: d.Name, Name: d.Name})
		}
	}
	return out
}

// dependents lists libraries of the given type that depend on name.
func dependents(t *Target, name string, typ LibraryType) []*Library {
	var out []*Library
	for _, lib := range t.Libraries() {
		if lib.Type != typ {
			continue
		}
		for _, dep := range lib.Dependencies {
			if strings.EqualFold(dep, name) {
				out = append(out, lib)
				break
			}
		}
	}
	return out
}

// owners lists packages whose asset list, chosen by assets, holds path.
func owners(s *Snapshot, t *Target, path string, assets func(*Library) []string) []*PackageItem {
	var out []*PackageItem
	for _, lib := range t.Libraries() {
		if lib.Type == TypePackage && slices.Contains(assets(lib), path) {
			out = append(out, NewPackageItem(s, t.Name, lib))
		}
	}
	return out
}

func assetEntries(t *Target, parent string, assets func(*Library) []string) []Entry {
	lib, ok := t.Library(parent)
	if !ok {
		return nil
	}
	var out []Entry
	for _, p := range assets(lib) {
		out = append(out, Entry{Key: p, Name: p})
	}
	return out
}

func compileAssets(l *Library) []string { return l.CompileTimeAssemblies }

func contentAssets(l *Library) []string { return l.ContentFiles }

func createPackage(s *Snapshot, target string, e Entry) *PackageItem {
	t, _ := s.Target(target)
	lib, _ := t.Library(e.Name)
	return NewPackageItem(s, target, lib)
}

func createProject(s *Snapshot, target string, e Entry) *ProjectItem {
	t, _ := s.Target(target)
	lib, _ := t.Library(e.Name)
	return NewProjectItem(s, target, lib)
}

// PackageToPackage relates a package to the packages it depends on.
var PackageToPackage = &Relation[*PackageItem, *PackageItem]{
	Name: "package-package",
	entries: func(_ *Snapshot, t *Target, p *PackageItem) []Entry {
		return libraryEntries(t, p.name, TypePackage)
	},
	create: createPackage,
	parents: func(s *Snapshot, t *Target, c *PackageItem) []*PackageItem {
		var out []*PackageItem
		for _, lib := range dependents(t, c.name, TypePackage) {
			out = append(out, NewPackageItem(s, t.Name, lib))
		}
		return out
	},
}

// PackageToAssembly relates a package to its compile-time assemblies.
var PackageToAssembly = &Relation[*PackageItem, *AssemblyItem]{
	Name: "package-assembly",
	entries: func(_ *Snapshot, t *Target, p *PackageItem) []Entry {
		return assetEntries(t, p.name, compileAssets)
	},
	create: func(_ *Snapshot, _ string, e Entry) *AssemblyItem { return NewAssemblyItem(e.Name) },
	parents: func(s *Snapshot, t *Target, c *AssemblyItem) []*PackageItem {
		return owners(s, t, c.path, compileAssets)
	},
}

// PackageToContentFile relates a package to its content files.
var PackageToContentFile = &Relation[*PackageItem, *ContentFileItem]{
	Name: "package-contentfile",
	entries: func(_ *Snapshot, t *Target, p *PackageItem) []Entry {
		return assetEntries(t, p.name, contentAssets)
	},
	create: func(_ *Snapshot, _ string, e Entry) *ContentFileItem { return NewContentFileItem(e.Name) },
	parents: func(s *Snapshot, t *Target, c *ContentFileItem) []*PackageItem {
		return owners(s, t, c.path, contentAssets)
	},
}

// ProjectToPackage relates a project reference to the packages it brings in.
var ProjectToPackage = &Relation[*ProjectItem, *PackageItem]{
	Name: "project-package",
	entries: func(_ *Snapshot, t *Target, p *ProjectItem) []Entry {
		return libraryEntries(t, p.name, TypePackage)
	},
	create: createPackage,
	parents: func(s *Snapshot, t *Target, c *PackageItem) []*ProjectItem {
		var out []*ProjectItem
		for _, lib := range dependents(t, c.name, TypeProject) {
			out = append(out, NewProjectItem(s, t.Name, lib))
		}
		return out
	},
}

// ProjectToProject relates a project reference to the projects it references.
var ProjectToProject = &Relation[*ProjectItem, *ProjectItem]{
	Name: "project-project",
	entries: func(_ *Snapshot, t *Target, p *ProjectItem) []Entry {
		return libraryEntries(t, p.name, TypeProject)
	},
	create: createProject,
	parents: func(s *Snapshot, t *Target, c *ProjectItem) []*ProjectItem {
		var out []*ProjectItem
		for _, lib := range dependents(t, c.name, TypeProject) {
			out = append(out, NewProjectItem(s, t.Name, lib))
		}
		return out
	},
}

// LibraryToDiagnostic relates a package or project to its restore
// diagnostics, ordered by library name and then message.
var LibraryToDiagnostic = &Relation[LibraryItem, *DiagnosticItem]{
	Name: "library-diagnostic",
	entries: func(s *Snapshot, t *Target, p LibraryItem) []Entry {
		var out []Entry
		for _, e := range s.LogsFor(t.Name, p.LibraryName()) {
			out = append(out, Entry{Key: diagnosticKey(e), Name: p.LibraryName(), Log: &e})
		}
		return out
	},
	create: func(_ *Snapshot, _ string, e Entry) *DiagnosticItem { return NewDiagnosticItem(*e.Log) },
	parents: func(s *Snapshot, t *Target, c *DiagnosticItem) []LibraryItem {
		lib, ok := t.Library(c.library)
		if !ok {
			return nil
		}
		if lib.Type == TypeProject {
			return []LibraryItem{NewProjectItem(s, t.Name, lib)}
		}
		return []LibraryItem{NewPackageItem(s, t.Name, lib)}
	},
}
