package domain

import (
	"fmt"
	"strings"
)

// DomainRecord is one build-time dataset entry: the key derived from the
// dataset file location and the names extracted from its content.
type DomainRecord struct {
	Key    DomainKey
	Names  []string // deduplicated, first-occurrence order
	Source string   // dataset file the record came from
}

// NewDomainRecord constructs a DomainRecord and validates it.
func NewDomainRecord(key DomainKey, names []string, source string) (DomainRecord, error) {
	r := DomainRecord{Key: key, Names: names, Source: strings.TrimSpace(source)}
	if err := r.Validate(); err != nil {
		return DomainRecord{}, err
	}
	return r, nil
}

// Validate checks the key and rejects reserved tokens used as names.
func (r DomainRecord) Validate() error {
	if err := r.Key.Validate(); err != nil {
		return err
	}
	for _, n := range r.Names {
		if IsReservedToken(n) {
			return fmt.Errorf("record %s: name %q is a reserved token", r.Key, n)
		}
	}
	return nil
}

// OverrideRecord replaces whatever entry exists at Key with a marker.
type OverrideRecord struct {
	Key    DomainKey
	Marker Marker
	Source string // override list the record came from
}

// NewOverrideRecord constructs an OverrideRecord and validates it.
func NewOverrideRecord(key DomainKey, m Marker, source string) (OverrideRecord, error) {
	r := OverrideRecord{Key: key, Marker: m, Source: strings.TrimSpace(source)}
	if err := r.Validate(); err != nil {
		return OverrideRecord{}, err
	}
	return r, nil
}

// Validate checks the key and that the marker is an override.
func (r OverrideRecord) Validate() error {
	if err := r.Key.Validate(); err != nil {
		return err
	}
	if !r.Marker.IsOverride() {
		return fmt.Errorf("override %s: unsupported marker %s", r.Key, r.Marker)
	}
	return nil
}
