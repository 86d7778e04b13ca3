package domain

import "slices"

// Status is the public classification of an email address.
type Status string

const (
	// StatusValid marks a match on an ordinary entry, named or not.
	StatusValid Status = "valid"
	// StatusStoplist marks a match on a stoplist marker.
	StatusStoplist Status = "stoplist"
	// StatusAbused marks a match on an abused marker.
	StatusAbused Status = "abused"
	// StatusInvalid marks malformed input or a domain with no match.
	StatusInvalid Status = "invalid"
)

// VerifyResult is the outcome of verifying an email address.
// Pure value type.
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Status Status `json:"status"`
}

// InvalidResult returns the result used for malformed or unmatched input.
func InvalidResult() VerifyResult { return VerifyResult{Valid: false, Status: StatusInvalid} }

// Match is a successful suffix lookup: the Domain Key that matched and the
// entry stored there.
type Match struct {
	Key   DomainKey
	Entry Entry
}

// Result maps the match onto the public vocabulary. Marker entries are
// rejections; every other entry, including an empty name list, is valid.
func (m Match) Result() VerifyResult {
	switch m.Entry.Marker {
	case MarkerStoplist:
		return VerifyResult{Valid: false, Status: StatusStoplist}
	case MarkerAbused:
		return VerifyResult{Valid: false, Status: StatusAbused}
	}
	return VerifyResult{Valid: true, Status: StatusValid}
}

// Names returns a copy of the matched display names. Marker entries and
// nameless domains yield ok=false.
func (m Match) Names() ([]string, bool) {
	if m.Entry.IsOverride() || len(m.Entry.Names) == 0 {
		return nil, false
	}
	return slices.Clone(m.Entry.Names), true
}
