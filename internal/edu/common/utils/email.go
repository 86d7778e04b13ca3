package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// NormalizeEmail trims and lowercases an address and checks that it holds
// exactly one '@' with something on both sides. The second return value is
// false for anything that fails those checks.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if strings.Count(email, "@") != 1 {
		return "", false
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return email, true
}

// EmailDomain returns the part of a normalized address after the last '@',
// in canonical ASCII form. Unicode domains are converted with IDNA lookup
// rules; a domain that can't be converted yields ok=false. A trailing dot
// leaves an empty last label, which no index entry matches, so it is
// rejected.
func EmailDomain(email string) (string, bool) {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || strings.HasSuffix(email, ".") {
		return "", false
	}
	host := CanonicalDomain(email[at+1:])
	if host == "" {
		return "", false
	}
	if isASCII(host) {
		return host, true
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return "", false
	}
	return strings.ToLower(ascii), true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
