package retriever

import (
	"regexp"
	"strings"
)

// compileGlob converts a glob pattern to an anchored regex: `**` matches
// anything including path separators, `*` matches anything but a path
// separator, `?` matches one non-separator rune, everything else is
// escaped literally. An invalid resulting pattern is reported via ok=false
// so the caller can degrade to "no filter" (§4.7, §7 InvalidFileFilter).
func compileGlob(pattern string) (*regexp.Regexp, bool) {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, false
	}
	return re, true
}
