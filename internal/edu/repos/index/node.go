// Package index implements the domain-suffix index: a tree keyed by DNS
// labels, most general label first, built once from dataset records and
// override lists and then queried with a longest-suffix match.
package index

import "github.com/haukened/edu-verify/internal/edu/domain"

// node is one position in the tree. It is either a *leaf or a *branch.
type node interface {
	isNode()
}

// leaf is a terminal entry: a name list or a single override marker.
type leaf struct {
	entry domain.Entry
}

// branch maps labels to children. own is non-nil when the branch's own
// Domain Key is itself a matchable record.
type branch struct {
	children map[string]node
	own      *domain.Entry
}

func (*leaf) isNode()   {}
func (*branch) isNode() {}

func newBranch() *branch {
	return &branch{children: make(map[string]node)}
}

// promote turns a leaf into a branch whose own entry is the leaf's content.
func promote(l *leaf) *branch {
	b := newBranch()
	e := l.entry
	b.own = &e
	return b
}

// Index is an immutable, fully built domain-suffix tree. It is safe for
// concurrent use; nothing mutates it after Build returns.
type Index struct {
	root *branch
}

// Empty returns an index with no entries. Every lookup against it misses.
func Empty() *Index {
	return &Index{root: newBranch()}
}

// Len returns the number of matchable entries in the index.
func (ix *Index) Len() int {
	n := 0
	ix.Walk(func(domain.DomainKey, domain.Entry) bool {
		n++
		return true
	})
	return n
}
