package notify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and drops the combining marks,
// turning "é" into "e".
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Transliterate reduces s to plain ASCII: diacritics are stripped and any
// character with no ASCII decomposition is dropped. Mail relays on the
// delivery path mangle anything else.
func Transliterate(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
