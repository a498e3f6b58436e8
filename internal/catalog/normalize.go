package catalog

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// portable decomposes accented characters, drops the combining marks, and
// then discards anything still outside ASCII.
var portable = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	norm.NFC,
)

// ToPortable normalizes text to a portable ASCII encoding. Characters with
// no ASCII decomposition are discarded. This is a documented lossy
// normalization, not an error path.
func ToPortable(s string) string {
	out, _, err := transform.String(portable, s)
	if err != nil {
		return s
	}
	return out
}
