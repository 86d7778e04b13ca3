package index

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
)

// Builder collects dataset records and overrides and assembles an Index.
//
// Records are inserted first, in the order they were added. Overrides are
// applied afterwards regardless of when they were added: all stoplist
// overrides, then all abused overrides, each group in insertion order. A
// key present in both lists therefore ends up abused.
type Builder struct {
	logger    log.Logger
	records   []domain.DomainRecord
	overrides []domain.OverrideRecord
}

// NewBuilder returns an empty Builder. A nil logger discards diagnostics.
func NewBuilder(logger log.Logger) *Builder {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Builder{logger: logger}
}

// AddRecord queues a dataset record. Invalid records are rejected.
func (b *Builder) AddRecord(r domain.DomainRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("add record: %w", err)
	}
	b.records = append(b.records, r)
	return nil
}

// AddOverride queues an override record. Invalid overrides are rejected.
func (b *Builder) AddOverride(r domain.OverrideRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("add override: %w", err)
	}
	b.overrides = append(b.overrides, r)
	return nil
}

// Build assembles a fresh Index from everything queued so far. The Builder
// keeps its queue, so calling Build twice yields two identical trees.
func (b *Builder) Build() *Index {
	root := newBranch()

	for _, r := range b.records {
		if insert(root, r.Key, domain.NamesEntry(r.Names)) {
			b.logger.Warn(map[string]any{"key": r.Key.String(), "source": r.Source}, "duplicate_record_replaced")
		}
	}

	overrides := slices.Clone(b.overrides)
	slices.SortStableFunc(overrides, func(x, y domain.OverrideRecord) int {
		return cmp.Compare(x.Marker, y.Marker)
	})
	for _, o := range overrides {
		if insert(root, o.Key, domain.MarkerEntry(o.Marker)) {
			b.logger.Debug(map[string]any{"key": o.Key.String(), "marker": o.Marker.String()}, "override_replaced_entry")
		}
	}

	return &Index{root: root}
}

// insert walks key from root, creating or promoting nodes along the way, and
// writes e at the terminal position. It reports whether an existing entry
// was replaced.
func insert(root *branch, key domain.DomainKey, e domain.Entry) bool {
	cur := root
	for _, label := range key[:len(key)-1] {
		cur = descend(cur, label)
	}

	last := key[len(key)-1]
	switch n := cur.children[last].(type) {
	case *branch:
		// A deeper key got here first: attach the entry as the branch's own.
		replaced := n.own != nil
		n.own = &e
		return replaced
	case *leaf:
		cur.children[last] = &leaf{entry: e}
		return true
	default:
		cur.children[last] = &leaf{entry: e}
		return false
	}
}

// descend returns the branch under label, creating it when missing and
// promoting a leaf into a branch that keeps the leaf's entry as its own.
func descend(b *branch, label string) *branch {
	switch n := b.children[label].(type) {
	case *branch:
		return n
	case *leaf:
		p := promote(n)
		b.children[label] = p
		return p
	default:
		nb := newBranch()
		b.children[label] = nb
		return nb
	}
}
