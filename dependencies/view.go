package dependencies

import (
	"context"
	"slices"
	"sync"

	"github.com/willibrandon/projsys/diff"
	"github.com/willibrandon/projsys/observability"
	"github.com/willibrandon/projsys/tree"
)

// View keeps the dependencies of one target: the top-level items plus the
// child lists of every relation. Items whose state is unchanged are kept
// across refreshes; changed items are replaced under the same key.
type View struct {
	target string
	logger observability.Logger

	mu       sync.RWMutex
	topLevel []LibraryItem

	// treeMu guards the last published tree.
	treeMu   sync.Mutex
	root     *tree.Node
	rendered []rendered

	packagePackages     *Collection[*PackageItem, *PackageItem]
	packageAssemblies   *Collection[*PackageItem, *AssemblyItem]
	packageContentFiles *Collection[*PackageItem, *ContentFileItem]
	projectPackages     *Collection[*ProjectItem, *PackageItem]
	projectProjects     *Collection[*ProjectItem, *ProjectItem]
	diagnostics         *Collection[LibraryItem, *DiagnosticItem]
}

// NewView creates an empty view of target.
func NewView(target string, logger observability.Logger) *View {
	logger = observability.OrNull(logger).ForContext("Target", target)
	return &View{
		target:              target,
		logger:              logger,
		packagePackages:     NewCollection(PackageToPackage, logger),
		packageAssemblies:   NewCollection(PackageToAssembly, logger),
		packageContentFiles: NewCollection(PackageToContentFile, logger),
		projectPackages:     NewCollection(ProjectToPackage, logger),
		projectProjects:     NewCollection(ProjectToProject, logger),
		diagnostics:         NewCollection(LibraryToDiagnostic, logger),
	}
}

// Target returns the target name.
func (v *View) Target() string {
	return v.target
}

// TopLevel returns the direct dependencies, ordered by name.
func (v *View) TopLevel() []LibraryItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLevel
}

// Refresh applies s. Every list is computed before any becomes visible, so
// a failure or cancellation leaves the whole view as it was.
func (v *View) Refresh(ctx context.Context, s *Snapshot) error {
	t, err := s.Target(v.target)
	if err != nil {
		return err
	}

	top := v.syncTopLevel(s, t)
	var packages []*PackageItem
	var projects []*ProjectItem
	for _, item := range top {
		switch it := item.(type) {
		case *PackageItem:
			packages = append(packages, it)
		case *ProjectItem:
			projects = append(projects, it)
		}
	}

	pp, err := v.packagePackages.prepare(ctx, s, v.target, packages)
	if err != nil {
		return err
	}
	pa, err := v.packageAssemblies.prepare(ctx, s, v.target, packages)
	if err != nil {
		return err
	}
	pc, err := v.packageContentFiles.prepare(ctx, s, v.target, packages)
	if err != nil {
		return err
	}
	jp, err := v.projectPackages.prepare(ctx, s, v.target, projects)
	if err != nil {
		return err
	}
	jj, err := v.projectProjects.prepare(ctx, s, v.target, projects)
	if err != nil {
		return err
	}
	dg, err := v.diagnostics.prepare(ctx, s, v.target, top)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.topLevel = top
	v.packagePackages.commit(pp)
	v.packageAssemblies.commit(pa)
	v.packageContentFiles.commit(pc)
	v.projectPackages.commit(jp)
	v.projectProjects.commit(jj)
	v.diagnostics.commit(dg)
	v.mu.Unlock()

	v.logger.Debug("Refreshed {Count} top-level dependencies", len(top))
	return nil
}

func (v *View) syncTopLevel(s *Snapshot, t *Target) []LibraryItem {
	var libs []*Library
	for _, name := range t.TopLevel {
		if lib, ok := t.Library(name); ok {
			libs = append(libs, lib)
		}
	}
	slices.SortStableFunc(libs, func(a, b *Library) int { return diff.OrdinalCompare(a.Name, b.Name) })

	create := func(lib *Library) LibraryItem {
		if lib.Type == TypeProject {
			return NewProjectItem(s, t.Name, lib)
		}
		return NewPackageItem(s, t.Name, lib)
	}

	v.mu.RLock()
	existing := v.topLevel
	v.mu.RUnlock()

	res := diff.Sync(existing, libs, diff.Strategy[string, LibraryItem, *Library]{
		ExistingKey: LibraryItem.LibraryName,
		SnapshotKey: func(l *Library) string { return l.Name },
		Compare:     diff.OrdinalCompare,
		Create:      create,
		Update: func(item LibraryItem, lib *Library) (LibraryItem, bool) {
			_, isProject := item.(*ProjectItem)
			if isProject != (lib.Type == TypeProject) {
				return create(lib), true
			}
			updated, changed := item.TryUpdateState(s, t.Name, lib.Name)
			if !changed {
				return item, false
			}
			return updated.(LibraryItem), true
		},
	})
	observability.RecordSync("dependencies", res.Added, res.Removed, res.Updated, res.Unchanged)
	return res.Items
}

// Children returns the relation children shown under item, in display
// order: dependencies, then assemblies and content files, then diagnostics.
func (v *View) Children(item LibraryItem) []Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.children(item)
}

func (v *View) children(item LibraryItem) []Item {
	var out []Item
	switch it := item.(type) {
	case *PackageItem:
		out = appendItems(out, v.packagePackages.Children(it))
		out = appendItems(out, v.packageAssemblies.Children(it))
		out = appendItems(out, v.packageContentFiles.Children(it))
	case *ProjectItem:
		out = appendItems(out, v.projectProjects.Children(it))
		out = appendItems(out, v.projectPackages.Children(it))
	}
	return appendItems(out, v.diagnostics.Children(item))
}

func appendItems[C Item](out []Item, items []C) []Item {
	for _, c := range items {
		out = append(out, c)
	}
	return out
}

// rendered pairs a published node with the item key it displays.
type rendered struct {
	key      string
	node     *tree.Node
	children []rendered
}

// nodeKey keys a node by item kind and item key, so a project that turns
// into a package gets a new node.
func nodeKey(item Item) string {
	var kind string
	switch item.(type) {
	case *PackageItem:
		kind = "package"
	case *ProjectItem:
		kind = "project"
	case *AssemblyItem:
		kind = "assembly"
	case *ContentFileItem:
		kind = "content"
	case *DiagnosticItem:
		kind = "diagnostic"
	}
	return kind + "\x00" + item.Key()
}

func nodesOf(rs []rendered) []*tree.Node {
	out := make([]*tree.Node, len(rs))
	for i, r := range rs {
		out[i] = r.node
	}
	return out
}

// syncNodes merges items into the previously published nodes. Nodes whose
// caption, flags and children are unchanged are returned as they were;
// changed ones go through the node setters and keep their identity.
func syncNodes(existing []rendered, items []Item, childrenOf func(Item) []Item) []rendered {
	res := diff.Sync(existing, items, diff.Strategy[string, rendered, Item]{
		ExistingKey: func(r rendered) string { return r.key },
		SnapshotKey: nodeKey,
		Compare:     diff.OrdinalCompare,
		Create: func(item Item) rendered {
			children := syncNodes(nil, childrenOf(item), noChildren)
			return rendered{
				key:      nodeKey(item),
				node:     NodeFor(item).SetChildren(nodesOf(children)),
				children: children,
			}
		},
		Update: func(r rendered, item Item) (rendered, bool) {
			children := syncNodes(r.children, childrenOf(item), noChildren)
			node := r.node.SetCaption(item.Caption()).SetFlags(item.Flags()).SetChildren(nodesOf(children))
			if node == r.node {
				return r, false
			}
			return rendered{key: r.key, node: node, children: children}, true
		},
	})
	return res.Items
}

func noChildren(Item) []Item { return nil }

// Tree renders the view as a project tree rooted at a node named after
// the target. Successive calls reuse the nodes of the previous tree: with
// no change in between the same root is returned, and a changed item keeps
// its node identity.
func (v *View) Tree() *tree.Node {
	v.treeMu.Lock()
	defer v.treeMu.Unlock()

	v.mu.RLock()
	top := appendItems(nil, v.topLevel)
	childrenOf := make(map[Item][]Item, len(v.topLevel))
	for _, item := range v.topLevel {
		childrenOf[item] = v.children(item)
	}
	v.mu.RUnlock()

	if v.root == nil {
		v.root = tree.New(v.target).AddFlag(tree.FlagDependency)
	}
	v.rendered = syncNodes(v.rendered, top, func(item Item) []Item { return childrenOf[item] })
	v.root = v.root.SetChildren(nodesOf(v.rendered))
	return v.root
}
