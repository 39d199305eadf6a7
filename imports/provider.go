package imports

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/willibrandon/projsys/dataflow"
	"github.com/willibrandon/projsys/diff"
	"github.com/willibrandon/projsys/observability"
	"github.com/willibrandon/projsys/tree"
)

// RootCaption is the caption of the subtree root.
const RootCaption = "Imports"

const providerName = "imports"

// State is the attachment state of a Provider.
type State int

const (
	// Detached means no subscription is live and the root is hidden.
	Detached State = iota
	// Attached means every snapshot is synchronized into the subtree.
	Attached
)

func (s State) String() string {
	if s == Attached {
		return "attached"
	}
	return "detached"
}

// Provider owns the Imports subtree. While attached the root is visible
// and resynchronized against each snapshot published by its source; until
// the first snapshot arrives it has no children. While detached the root
// is hidden and childless. The root keeps its identity across
// both states.
//
// A failed synchronization leaves the previous tree current and is
// recorded in Faults.
type Provider struct {
	ctx        context.Context
	source     *dataflow.Broadcaster[*Snapshot]
	classifier Classifier
	logger     observability.Logger

	// mu guards the state decision only. Rebuilds run outside it.
	mu           sync.Mutex
	state        State
	generation   uint64
	subscription string

	// commitMu orders publication of trees.
	commitMu sync.Mutex
	root     atomic.Pointer[tree.Node]
	trees    *dataflow.Broadcaster[*tree.Node]

	faultsMu sync.Mutex
	faults   []error
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used for faults and state changes.
func WithLogger(logger observability.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = observability.OrNull(logger)
	}
}

// WithClassifier sets the system directories used to classify imports.
// The extensions path is always taken from each snapshot.
func WithClassifier(c Classifier) ProviderOption {
	return func(p *Provider) {
		p.classifier = c
	}
}

// NewProvider creates a detached provider fed by source. Cancelling ctx
// makes later synchronizations fail, leaving the last tree current.
func NewProvider(ctx context.Context, source *dataflow.Broadcaster[*Snapshot], opts ...ProviderOption) *Provider {
	p := &Provider{
		ctx:        ctx,
		source:     source,
		classifier: NewClassifier(""),
		logger:     observability.NewNullLogger(),
		trees:      dataflow.NewBroadcaster[*tree.Node](),
	}
	for _, opt := range opts {
		opt(p)
	}
	root := tree.New(RootCaption).
		SetFlags(tree.NewFlags(tree.FlagProjectImportsTree, tree.FlagVisibleOnlyInShowAllFiles)).
		SetVisible(false)
	p.root.Store(root)
	return p
}

// State returns the current attachment state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Tree returns the current subtree root.
func (p *Provider) Tree() *tree.Node {
	return p.root.Load()
}

// Subscribe registers h to receive every published subtree, starting with
// the current one if any has been published.
func (p *Provider) Subscribe(h dataflow.Handler[*tree.Node]) string {
	return p.trees.Subscribe(h)
}

// Unsubscribe removes a subscription made with Subscribe.
func (p *Provider) Unsubscribe(id string) bool {
	return p.trees.Unsubscribe(id)
}

// Faults returns the synchronization failures seen so far.
func (p *Provider) Faults() []error {
	p.faultsMu.Lock()
	defer p.faultsMu.Unlock()
	return append([]error(nil), p.faults...)
}

// ShowAllFiles attaches the provider when show is true and detaches it
// otherwise. Requesting the current state does nothing; concurrent
// requests settle on the last decision taken.
func (p *Provider) ShowAllFiles(show bool) {
	target := Detached
	if show {
		target = Attached
	}

	p.mu.Lock()
	if p.state == target {
		p.mu.Unlock()
		return
	}
	p.state = target
	p.generation++
	gen := p.generation
	old := p.subscription
	p.subscription = ""
	p.mu.Unlock()

	p.logger.Debug("Imports provider {State}", target.String())

	if old != "" {
		p.source.Unsubscribe(old)
	}

	if target == Detached {
		root := p.Tree()
		p.commit(gen, root.SetChildren(nil).SetVisible(false))
		return
	}

	p.commit(gen, p.Tree().SetVisible(true))

	// The source hands over its latest snapshot inside Subscribe.
	id := p.source.Subscribe(func(s *Snapshot) { p.apply(gen, s) })

	p.mu.Lock()
	if p.generation == gen {
		p.subscription = id
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.source.Unsubscribe(id)
}

// Close detaches the provider.
func (p *Provider) Close() {
	p.ShowAllFiles(false)
}

func (p *Provider) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation == gen && p.state == Attached
}

func (p *Provider) apply(gen uint64, s *Snapshot) {
	if s == nil || !p.current(gen) {
		return
	}

	ctx, span := observability.StartSnapshotApplySpan(p.ctx, providerName, s.Version, s.ProjectPath)
	start := time.Now()

	root, stats, err := syncTree(ctx, p.Tree(), s, p.classifier)
	observability.SnapshotApplyDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	observability.EndSpanWithError(span, err)

	if err != nil {
		p.fault(s, err)
		return
	}
	observability.RecordSync(providerName, stats.added, stats.removed, stats.updated, stats.unchanged)
	p.commit(gen, root)
}

// commit publishes root unless the provider changed state since gen.
func (p *Provider) commit(gen uint64, root *tree.Node) {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	p.mu.Lock()
	stale := p.generation != gen
	p.mu.Unlock()
	if stale {
		return
	}

	if p.root.Swap(root) != root {
		p.trees.Publish(root)
	}
}

func (p *Provider) fault(s *Snapshot, err error) {
	observability.SnapshotFaultsTotal.WithLabelValues(providerName).Inc()
	p.logger.Error("Failed to apply imports snapshot {Version} of {Project}: {Error}", s.Version, s.ProjectPath, err)

	p.faultsMu.Lock()
	p.faults = append(p.faults, fmt.Errorf("snapshot %d: %w", s.Version, err))
	p.faultsMu.Unlock()
}

type syncStats struct {
	added, removed, updated, unchanged int
}

// Sync synchronizes root against s and returns the new root, which is root
// itself when nothing changed.
func Sync(ctx context.Context, root *tree.Node, s *Snapshot, c Classifier) (*tree.Node, error) {
	n, _, err := syncTree(ctx, root, s, c)
	return n, err
}

func syncTree(ctx context.Context, root *tree.Node, s *Snapshot, c Classifier) (*tree.Node, syncStats, error) {
	c.ProjectExtensionsPath = s.ProjectExtensionsPath

	w := &syncWalk{ctx: ctx, snapshot: s, classifier: c, onPath: map[string]bool{s.ProjectPath: true}, stack: []string{s.ProjectPath}}
	children, err := w.children(root, s.ProjectPath)
	if err != nil {
		return nil, syncStats{}, err
	}
	return root.SetVisible(true).SetChildren(children), w.stats, nil
}

// syncWalk runs the merge-join at every depth of the import graph.
type syncWalk struct {
	ctx        context.Context
	snapshot   *Snapshot
	classifier Classifier
	stats      syncStats

	onPath map[string]bool
	stack  []string
	err    error
}

func (w *syncWalk) children(parent *tree.Node, path string) ([]*tree.Node, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}

	strategy := diff.Strategy[string, *tree.Node, string]{
		ExistingKey: (*tree.Node).FilePath,
		SnapshotKey: func(s string) string { return s },
		Compare:     diff.OrdinalCompare,
		Create: func(file string) *tree.Node {
			n, _ := w.update(tree.New(fileName(file)).SetFilePath(file), file)
			return n
		},
		Update: w.update,
	}

	res := diff.Sync(parent.Children(), w.snapshot.Children(path), strategy)
	if w.err != nil {
		return nil, w.err
	}
	w.stats.added += res.Added
	w.stats.removed += res.Removed
	w.stats.updated += res.Updated
	w.stats.unchanged += res.Unchanged
	return res.Items, nil
}

// update refreshes the node for file and recurses into its imports.
func (w *syncWalk) update(n *tree.Node, file string) (*tree.Node, bool) {
	if w.err != nil {
		return n, false
	}
	if w.onPath[file] {
		cycle := append(append([]string(nil), w.stack...), file)
		w.err = &CycleError{Path: cycle}
		return n, false
	}

	flags := tree.NewFlags(tree.FlagProjectImport)
	if w.classifier.IsImplicit(file) {
		flags = flags.Add(tree.FlagProjectImportImplicit)
	}
	updated := n.SetCaption(fileName(file)).SetFlags(flags).SetVisible(true)

	w.onPath[file] = true
	w.stack = append(w.stack, file)
	children, err := w.children(updated, file)
	w.stack = w.stack[:len(w.stack)-1]
	delete(w.onPath, file)
	if err != nil {
		w.err = err
		return n, false
	}

	updated = updated.SetChildren(children)
	return updated, updated != n
}
