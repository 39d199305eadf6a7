package dependencies

import (
	"context"
	"sync"

	"github.com/willibrandon/projsys/observability"
)

// Collection holds the materialized children of every parent for one
// relation. Refresh replaces all lists at once; readers never see a mix of
// old and new lists.
type Collection[P, C Item] struct {
	relation *Relation[P, C]
	logger   observability.Logger

	mu       sync.RWMutex
	children map[string][]C
}

// NewCollection creates an empty collection for r.
func NewCollection[P, C Item](r *Relation[P, C], logger observability.Logger) *Collection[P, C] {
	return &Collection[P, C]{
		relation: r,
		logger:   observability.OrNull(logger),
		children: make(map[string][]C),
	}
}

// Children returns the current children of parent.
func (c *Collection[P, C]) Children(parent P) []C {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.children[parent.Key()]
}

// Refresh recomputes the children of parents from s. ctx is checked before
// each parent; on cancellation or any other error the previous lists stay
// current. It reports whether any list changed. Calls to Refresh must not
// overlap.
func (c *Collection[P, C]) Refresh(ctx context.Context, s *Snapshot, target string, parents []P) (bool, error) {
	p, err := c.prepare(ctx, s, target, parents)
	if err != nil {
		return false, err
	}
	c.commit(p)
	return p.changed, nil
}

// pending is a computed but not yet visible refresh.
type pending[C Item] struct {
	children map[string][]C
	changed  bool
}

func (c *Collection[P, C]) prepare(ctx context.Context, s *Snapshot, target string, parents []P) (*pending[C], error) {
	ctx, span := observability.StartRelationUpdateSpan(ctx, target, len(parents))
	p, err := c.compute(ctx, s, target, parents)
	observability.EndSpanWithError(span, err)
	if err != nil {
		observability.SnapshotFaultsTotal.WithLabelValues(c.relation.Name).Inc()
		c.logger.Warn("Failed to refresh {Relation} for {Target}: {Error}", c.relation.Name, target, err)
	}
	return p, err
}

func (c *Collection[P, C]) compute(ctx context.Context, s *Snapshot, target string, parents []P) (*pending[C], error) {
	c.mu.RLock()
	previous := c.children
	c.mu.RUnlock()

	p := &pending[C]{
		children: make(map[string][]C, len(parents)),
		changed:  len(previous) != len(parents),
	}
	var added, removed, updated, unchanged int

	for _, parent := range parents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := parent.Key()
		old, had := previous[key]
		res, err := c.relation.update(s, target, parent, old)
		if err != nil {
			return nil, err
		}
		p.children[key] = res.Items
		if !had || res.Changed {
			p.changed = true
		}
		added += res.Added
		removed += res.Removed
		updated += res.Updated
		unchanged += res.Unchanged
	}

	observability.RecordSync(c.relation.Name, added, removed, updated, unchanged)
	return p, nil
}

func (c *Collection[P, C]) commit(p *pending[C]) {
	if !p.changed {
		return
	}
	c.mu.Lock()
	c.children = p.children
	c.mu.Unlock()
}
