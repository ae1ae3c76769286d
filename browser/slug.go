package browser

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

// slug turns a test ID into a directory name: accents are removed, anything other than a letter
// or digit becomes a single hyphen, and long names are shortened with a hash suffix so that
// different tests cannot collide.
func slug(name string) string {
	plain, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
		} else if !hyphen && b.Len() > 0 {
			b.WriteRune('-')
			hyphen = true
		}
	}
	ret := strings.TrimSuffix(b.String(), "-")
	if ret == "" {
		ret = "test"
	}

	if len(ret) > maxSlugLength {
		h := fnv.New32a()
		_, _ = h.Write([]byte(name))
		ret = fmt.Sprintf("%s-%08x", strings.TrimSuffix(ret[:maxSlugLength-9], "-"), h.Sum32())
	}
	return ret
}
