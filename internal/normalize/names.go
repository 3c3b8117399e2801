package normalize

import "strings"

// SplitName canonicalizes a raw "Last, First ..." patient name into the
// (lastKey, firstKey) pair used for encounter lookups. lastKey is the
// trimmed, uppercased text before the first comma. firstKey is the first
// whitespace-delimited token of the trimmed, uppercased text after the comma
// (suffixes and middle names are dropped so roster spellings like
// "SMITH, JOHN A" and the source's "JOHN" land on the same key).
// A name with no comma becomes (wholeName, "").
func SplitName(raw string) (lastKey, firstKey string) {
	last, rest, found := strings.Cut(raw, ",")
	lastKey = strings.ToUpper(strings.TrimSpace(last))
	if !found {
		return lastKey, ""
	}
	return lastKey, FirstToken(rest)
}

// FirstToken returns the first whitespace-delimited token of s, trimmed and
// uppercased, or "" when s is blank.
func FirstToken(s string) string {
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Code canonicalizes a charge code: trimmed and uppercased. Charge codes are
// tokens like "99213", "LWBS", "AMA", "0", or "NULL"; anything else is
// treated downstream as an invalid code, so no character stripping here.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Digits strips every non-digit character from s. Account and chart numbers
// arrive with check digits, dashes, or cell formatting artifacts; the
// surrogate ID schemes use the digits only.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
