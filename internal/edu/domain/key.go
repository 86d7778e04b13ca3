package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/haukened/edu-verify/internal/edu/common/utils"
)

// DomainKey is an ordered label sequence, most general label first.
// stanford.edu is DomainKey{"edu", "stanford"}.
type DomainKey []string

// KeyFromDomain converts a conventional dotted domain into a DomainKey.
// The name is canonicalized first; every label must be valid.
func KeyFromDomain(name string) (DomainKey, error) {
	name = utils.CanonicalDomain(name)
	if !utils.IsValidDomain(name) {
		return nil, fmt.Errorf("invalid domain: %q", name)
	}
	labels := strings.Split(name, ".")
	slices.Reverse(labels)
	return DomainKey(labels), nil
}

// KeyFromLabels validates labels that are already most-general-first.
func KeyFromLabels(labels ...string) (DomainKey, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("domain key must have at least one label")
	}
	for _, l := range labels {
		if !utils.IsValidLabel(l) {
			return nil, fmt.Errorf("invalid label %q", l)
		}
	}
	return DomainKey(slices.Clone(labels)), nil
}

// String returns the conventional dotted form, most specific label first.
func (k DomainKey) String() string {
	var b strings.Builder
	for i := len(k) - 1; i >= 0; i-- {
		b.WriteString(k[i])
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Validate checks that the key is non-empty and every label is valid.
func (k DomainKey) Validate() error {
	_, err := KeyFromLabels(k...)
	return err
}
