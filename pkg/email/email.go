// Package email normalizes and validates email addresses for the voter
// registry. Uniqueness checks downstream assume addresses have passed
// through Normalize, so comparison is always on the lowercased form.
package email

import (
	"errors"
	"strings"
)

var (
	ErrEmpty     = errors.New("email is required")
	ErrMalformed = errors.New("email is malformed")
)

// Normalize trims whitespace, lowercases, and checks the basic shape of an
// address. Full RFC 5322 parsing is deliberately avoided: the identity
// provider owns deliverability, this only guards the uniqueness key.
func Normalize(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", ErrEmpty
	}

	at := strings.IndexByte(addr, '@')
	if at <= 0 || at != strings.LastIndexByte(addr, '@') {
		return "", ErrMalformed
	}

	local, domain := addr[:at], addr[at+1:]
	if local == "" || domain == "" {
		return "", ErrMalformed
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrMalformed
	}
	if strings.ContainsAny(addr, " \t\r\n") {
		return "", ErrMalformed
	}

	return addr, nil
}
