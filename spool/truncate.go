// Package spool bounds tool output so oversized results never reach the
// agent's context window inline. Two independent mechanisms compose:
// Truncate clamps a string to a character budget with an explanatory
// trailer, and Spool writes the full text to a scratch file and returns a
// preview plus the path.
package spool

import "fmt"

// MaxChars is the hard ceiling on any inline return, regardless of what
// the caller asked for.
const MaxChars = 100_000

// DefaultMaxChars is applied when the caller does not request a limit.
const DefaultMaxChars = 20_000

// Truncate bounds content to max characters. The max is clamped to
// [1, MaxChars]; zero or negative falls back to DefaultMaxChars. If the
// content fits, it is returned unchanged with truncated=false. Otherwise
// the prefix is returned with a trailer stating the limit applied and the
// true total size.
func Truncate(content string, max int) (string, bool) {
	limit := max
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	if limit > MaxChars {
		limit = MaxChars
	}

	runes := []rune(content)
	if len(runes) <= limit {
		return content, false
	}
	return string(runes[:limit]) + fmt.Sprintf(
		"\n\n[Content truncated at %d characters. Total length: %d characters. Request a higher max_chars to see more.]",
		limit, len(runes)), true
}
