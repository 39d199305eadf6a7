package tree

import (
	"sort"
	"strings"
)

// Well-known flags understood by the providers in this module.
const (
	FlagProjectRoot               = "ProjectRoot"
	FlagFolder                    = "Folder"
	FlagBubbleUp                  = "BubbleUp"
	FlagSourceFile                = "SourceFile"
	FlagReference                 = "Reference"
	FlagProjectImportsTree        = "ProjectImportsTree"
	FlagProjectImport             = "ProjectImport"
	FlagProjectImportImplicit     = "ProjectImportImplicit"
	FlagVisibleOnlyInShowAllFiles = "VisibleOnlyInShowAllFiles"
	FlagDependency                = "Dependency"
	FlagDiagnosticErrorNode       = "DiagnosticErrorNode"
	FlagDiagnosticWarningNode     = "DiagnosticWarningNode"
)

// Flags is an immutable set of flag names. Names compare case-insensitively
// and keep the spelling they were first added with. The zero value is an
// empty set.
type Flags struct {
	names []string
}

// NewFlags creates a set from names, dropping case-insensitive duplicates.
func NewFlags(names ...string) Flags {
	var f Flags
	for _, name := range names {
		f = f.Add(name)
	}
	return f
}

// Len returns the number of flags in the set.
func (f Flags) Len() int {
	return len(f.names)
}

// Contains reports whether name is in the set, ignoring case.
func (f Flags) Contains(name string) bool {
	return f.index(name) >= 0
}

func (f Flags) index(name string) int {
	for i, n := range f.names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// Add returns a set that also contains name. The receiver is returned when
// name is already present.
func (f Flags) Add(name string) Flags {
	if name == "" || f.Contains(name) {
		return f
	}
	names := make([]string, len(f.names), len(f.names)+1)
	copy(names, f.names)
	return Flags{names: append(names, name)}
}

// Remove returns a set without name. The receiver is returned when name is
// not present.
func (f Flags) Remove(name string) Flags {
	i := f.index(name)
	if i < 0 {
		return f
	}
	names := make([]string, 0, len(f.names)-1)
	names = append(names, f.names[:i]...)
	names = append(names, f.names[i+1:]...)
	return Flags{names: names}
}

// Union returns a set containing the flags of both sets.
func (f Flags) Union(other Flags) Flags {
	out := f
	for _, name := range other.names {
		out = out.Add(name)
	}
	return out
}

// Names returns the flags in insertion order.
func (f Flags) Names() []string {
	return append([]string(nil), f.names...)
}

// Sorted returns the flags in case-insensitive ordinal order.
func (f Flags) Sorted() []string {
	names := f.Names()
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToUpper(names[i]), strings.ToUpper(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Equal reports whether both sets hold the same names, ignoring case and order.
func (f Flags) Equal(other Flags) bool {
	if len(f.names) != len(other.names) {
		return false
	}
	for _, name := range f.names {
		if !other.Contains(name) {
			return false
		}
	}
	return true
}

// String renders the set as it appears in tree text: {A B}.
func (f Flags) String() string {
	return "{" + strings.Join(f.Sorted(), " ") + "}"
}
