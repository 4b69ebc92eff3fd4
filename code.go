package rwanda

import (
	"strings"
	"unicode"
)

// codePrefix starts every location code.
const codePrefix = "RW"

// codeFor derives the stable code of n from its path, for example
// RW-KIGALI-KICUKIRO-NYARUGUNGA. Each segment is the upper-cased name with
// runs of non-alphanumeric characters folded to a single underscore.
func codeFor(n *node) string {
	segments := []string{codePrefix}
	for _, name := range n.path() {
		segments = append(segments, codeSegment(name))
	}
	return strings.Join(segments, "-")
}

// codeSegment converts one name to its code form.
func codeSegment(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}
