package domain

// Reserved tokens of the serialized tree artifact, format version 1.
// Every token contains '_', which no valid label may contain, so none of
// them can collide with a real Domain Key.
const (
	ArtifactVersion = "1"

	TokenOwnEntry = "_n_" // key holding an internal node's own entry
	TokenVersion  = "_v_" // root-only key holding the format version
	TokenStoplist = "_S_" // leaf content of a stoplisted domain
	TokenAbused   = "_A_" // leaf content of an abused domain
)

// IsReservedToken reports whether s is one of the artifact's reserved tokens.
func IsReservedToken(s string) bool {
	switch s {
	case TokenOwnEntry, TokenVersion, TokenStoplist, TokenAbused:
		return true
	}
	return false
}

// MarkerToken returns the artifact token for an override marker.
func MarkerToken(m Marker) (string, bool) {
	switch m {
	case MarkerStoplist:
		return TokenStoplist, true
	case MarkerAbused:
		return TokenAbused, true
	}
	return "", false
}

// MarkerFromToken maps an artifact token back to its marker.
func MarkerFromToken(tok string) (Marker, bool) {
	switch tok {
	case TokenStoplist:
		return MarkerStoplist, true
	case TokenAbused:
		return MarkerAbused, true
	}
	return MarkerNone, false
}
