package textutil

import "strings"

// slugTitleLimit is the number of leading title characters that contribute to
// a derived filename. Matches the naming convention used for downloaded
// documents, so derived names line up with files already on disk.
const slugTitleLimit = 50

// TitleSlug derives the deterministic PDF filename for an article title:
// the first 50 characters with every non-alphanumeric rune replaced by an
// underscore, lowercased, with a ".pdf" suffix.
func TitleSlug(title string) string {
	runesIn := []rune(title)
	if len(runesIn) > slugTitleLimit {
		runesIn = runesIn[:slugTitleLimit]
	}
	var b strings.Builder
	b.Grow(len(runesIn) + 4)
	for _, r := range runesIn {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".pdf"
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
