// Package identity turns raw contact details into comparable keys and builds
// the single identity filter shared by client lookup and booking aggregation.
package identity

import (
	"regexp"
	"strings"
)

const (
	// PhoneKeyLength is the number of trailing digits kept in a phone key, so
	// "+44 7700 900123", "07700 900123" and "7700900123" share one key.
	PhoneKeyLength = 10
	// MinPhoneKeyLength is the shortest phone key used for matching. Shorter
	// keys are stored but never matched against.
	MinPhoneKeyLength = 7
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizePhone keeps only digits and at most the last PhoneKeyLength of them.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > PhoneKeyLength {
		digits = digits[len(digits)-PhoneKeyLength:]
	}
	return digits
}

// IsMatchablePhone reports whether a normalized phone key is long enough to
// identify a client.
func IsMatchablePhone(key string) bool {
	return len(key) >= MinPhoneKeyLength
}

// MatchablePhone normalizes raw and returns the key only when it is matchable.
func MatchablePhone(raw string) string {
	key := NormalizePhone(raw)
	if !IsMatchablePhone(key) {
		return ""
	}
	return key
}

// PhonePattern returns a regular expression that matches a raw phone string
// whose normalized form equals key. It lets stores match phone numbers kept in
// their original formatting. The syntax is shared by Go, PostgreSQL and MongoDB.
func PhonePattern(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	if len(key) < PhoneKeyLength {
		// a short key only matches a number that has no further digits
		b.WriteString(`^\D*`)
	}
	for _, d := range key {
		b.WriteRune(d)
		b.WriteString(`\D*`)
	}
	b.WriteString(`$`)
	return b.String()
}

// EmailPattern returns a case-insensitive regular expression that matches a raw
// email string whose normalized form equals key.
func EmailPattern(key string) string {
	if key == "" {
		return ""
	}
	return `(?i)^\s*` + regexp.QuoteMeta(key) + `\s*$`
}
