package index

import (
	"strings"

	"github.com/haukened/edu-verify/internal/edu/domain"
)

// Match finds the most specific Domain Key in the index that is a suffix of
// name. name must already be canonical (lowercase, no trailing dot).
//
// Candidates are tried whole domain first, then with the leftmost label
// dropped, and so on. A candidate matches when the walk consumes all of its
// labels and lands on a leaf or on a branch with an own entry. A branch
// without an own entry is only an intermediate path and the search moves on
// to the next shorter suffix.
func (ix *Index) Match(name string) (domain.Match, bool) {
	if ix == nil || ix.root == nil || name == "" {
		return domain.Match{}, false
	}
	labels := strings.Split(name, ".")
	for i := range labels {
		if e, ok := ix.lookup(labels[i:]); ok {
			return domain.Match{Key: keyOf(labels[i:]), Entry: e}, true
		}
	}
	return domain.Match{}, false
}

// lookup walks labels (conventional order) from the root, most general
// label first, and returns the entry at the exact position.
func (ix *Index) lookup(labels []string) (domain.Entry, bool) {
	var n node = ix.root
	for j := len(labels) - 1; j >= 0; j-- {
		b, ok := n.(*branch)
		if !ok {
			// Reached a leaf with labels still left.
			return domain.Entry{}, false
		}
		child, ok := b.children[labels[j]]
		if !ok {
			return domain.Entry{}, false
		}
		n = child
	}

	switch t := n.(type) {
	case *leaf:
		return t.entry, true
	case *branch:
		if t.own != nil {
			return *t.own, true
		}
	}
	return domain.Entry{}, false
}

// keyOf converts conventional-order labels into a DomainKey.
func keyOf(labels []string) domain.DomainKey {
	k := make(domain.DomainKey, len(labels))
	for i, l := range labels {
		k[len(labels)-1-i] = l
	}
	return k
}
