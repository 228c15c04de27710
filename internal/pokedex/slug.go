package pokedex

import "strings"

// Slugify derives the URL-safe lookup key from a display name: ASCII
// letters are lowered, digits kept, and every other run of characters
// collapses to a single hyphen. There are no leading or trailing hyphens.
//
//	"Ho Oh"      -> "ho-oh"
//	"Mr. Mime"   -> "mr-mime"
//	"Farfetch'd" -> "farfetch-d"
//
// The result is deterministic: the same name always yields the same slug.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pending := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			// keep as-is
		default:
			if b.Len() > 0 {
				pending = true
			}
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
