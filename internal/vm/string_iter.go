package vm

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// decodeRune reads one character from the head of s for OP_FOR_LOOP's
// string-iteration case (spec.md §4.5, §8 S6: `for c in "abc"`). Decoding
// one rune at a time already keeps multi-byte UTF-8 text iterating as
// single characters instead of raw bytes; width.Fold additionally
// normalizes fullwidth/halfwidth variants (common in CJK source text) to
// their canonical form, so two visually-equivalent characters compare
// equal after iteration regardless of which width form appeared in the
// source file.
func decodeRune(s string) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return r, 1
	}
	return width.LookupRune(r).Fold(), size
}
