package filename

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Secure flattens an uploaded filename into something safe to join onto the
// upload directory: accents are folded to ASCII, path separators and
// whitespace become underscores, and anything else outside [A-Za-z0-9_.-]
// is dropped. The result may be empty.
func Secure(name string) string {
	name = asciiFold(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// HasExtension reports whether name ends in one of the allowed extensions,
// compared case-insensitively and without the leading dot.
func HasExtension(name string, allowed []string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return false
	}
	ext := strings.ToLower(name[idx+1:])
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}

func asciiFold(s string) string {
	var sb strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
