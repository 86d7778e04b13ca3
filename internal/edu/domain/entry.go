package domain

import (
	"fmt"
	"slices"
)

// Marker tags an entry as an override instead of a list of names.
//
// none     - ordinary entry, Names holds the display names (possibly none)
// stoplist - domain looks institutional but must be rejected
// abused   - domain is commonly misused and must be rejected
type Marker uint8

const (
	// MarkerNone marks an ordinary name-list entry.
	MarkerNone Marker = iota
	// MarkerStoplist marks a stoplisted domain.
	MarkerStoplist
	// MarkerAbused marks an abused domain.
	MarkerAbused
)

// String returns a stable string representation of the marker.
func (m Marker) String() string {
	switch m {
	case MarkerNone:
		return "none"
	case MarkerStoplist:
		return "stoplist"
	case MarkerAbused:
		return "abused"
	default:
		return fmt.Sprintf("Marker(%d)", m)
	}
}

// IsOverride reports whether m is one of the override markers.
func (m Marker) IsOverride() bool {
	return m == MarkerStoplist || m == MarkerAbused
}

// Entry is the content stored for one Domain Key: either a list of display
// names or a single override marker, never both.
type Entry struct {
	Names  []string
	Marker Marker
}

// NamesEntry returns an ordinary entry holding a copy of names.
// A nil or empty list means the domain is valid but has no recorded name.
func NamesEntry(names []string) Entry {
	return Entry{Names: slices.Clone(names)}
}

// MarkerEntry returns an override entry for m.
func MarkerEntry(m Marker) Entry {
	return Entry{Marker: m}
}

// IsOverride reports whether the entry is a stoplist or abused marker.
func (e Entry) IsOverride() bool { return e.Marker.IsOverride() }

// Equal reports whether two entries carry the same content.
func (e Entry) Equal(o Entry) bool {
	return e.Marker == o.Marker && slices.Equal(e.Names, o.Names)
}
