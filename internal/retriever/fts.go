package retriever

import "strings"

const ftsSpecialChars = `'"(){}[]^~*?:\!`

// tokenizeForFTS builds an FTS5 MATCH expression out of a free-text query:
// strip characters FTS5 treats specially, split on whitespace, discard
// tokens shorter than 2 runes, and join survivors with OR so any token
// matching is enough (§4.7).
func tokenizeForFTS(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsSpecialChars, r) {
			return ' '
		}
		return r
	}, query)

	fields := strings.Fields(cleaned)
	var tokens []string
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " OR ")
}

// sanitizeLanguage strips everything outside [A-Za-z0-9_-] and wraps the
// survivor in single quotes, producing a literal safe to interpolate into
// a `language = '<...>'` predicate.
func sanitizeLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range lang {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "'" + b.String() + "'"
}
