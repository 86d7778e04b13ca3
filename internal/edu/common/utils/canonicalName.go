package utils

import "strings"

// CanonicalDomain returns a domain name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot. Email domains never carry one and the index keys don't either.
func CanonicalDomain(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// IsValidLabel reports whether label is a hostname label the index accepts:
// 1 to 63 characters of [a-z0-9-], not starting or ending with a hyphen.
// Reserved index tokens all contain '_' and can never pass this check.
func IsValidLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isLower(c) && !isDigit(c) && c != '-' {
			return false
		}
	}
	return true
}

// IsValidDomain reports whether name is a canonical domain made only of
// valid labels, at most 253 characters long.
func IsValidDomain(name string) bool {
	if name == "" || len(name) > 253 {
		return false
	}
	for _, label := range strings.Split(name, ".") {
		if !IsValidLabel(label) {
			return false
		}
	}
	return true
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
