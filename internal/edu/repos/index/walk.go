package index

import (
	"maps"
	"slices"

	"github.com/haukened/edu-verify/internal/edu/domain"
)

// Walk visits every matchable entry in the index, parents before children
// and siblings in label order. The key passed to visit is freshly allocated.
// Returning false from visit stops the walk.
func (ix *Index) Walk(visit func(key domain.DomainKey, e domain.Entry) bool) {
	if ix == nil || ix.root == nil {
		return
	}
	walkBranch(ix.root, nil, visit)
}

func walkBranch(b *branch, path []string, visit func(domain.DomainKey, domain.Entry) bool) bool {
	for _, label := range slices.Sorted(maps.Keys(b.children)) {
		p := append(path[:len(path):len(path)], label)
		switch n := b.children[label].(type) {
		case *leaf:
			if !visit(domain.DomainKey(slices.Clone(p)), n.entry) {
				return false
			}
		case *branch:
			if n.own != nil && !visit(domain.DomainKey(slices.Clone(p)), *n.own) {
				return false
			}
			if !walkBranch(n, p, visit) {
				return false
			}
		}
	}
	return true
}

// Stats summarizes the contents of an index.
type Stats struct {
	Entries  int // matchable Domain Keys
	Named    int // entries with at least one display name
	Nameless int // ordinary entries with no names
	Stoplist int
	Abused   int
	MaxDepth int // labels in the longest Domain Key
}

// Stats walks the index and counts its entries.
func (ix *Index) Stats() Stats {
	var st Stats
	ix.Walk(func(k domain.DomainKey, e domain.Entry) bool {
		st.Entries++
		switch {
		case e.Marker == domain.MarkerStoplist:
			st.Stoplist++
		case e.Marker == domain.MarkerAbused:
			st.Abused++
		case len(e.Names) == 0:
			st.Nameless++
		default:
			st.Named++
		}
		st.MaxDepth = max(st.MaxDepth, len(k))
		return true
	})
	return st
}
