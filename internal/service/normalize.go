package service

import "strings"

// stopwords removed during normalization. Single-character tokens are
// dropped regardless.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "in": {}, "on": {}, "for": {},
	"to": {}, "from": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "as": {}, "at": {}, "that": {}, "this": {}, "it": {}, "its": {},
	"or": {}, "not": {}, "but": {}, "we": {}, "our": {}, "you": {}, "your": {}, "they": {},
	"their": {}, "can": {}, "will": {}, "using": {}, "use": {}, "based": {},
}

// Normalize lower-cases text, replaces everything outside [a-z0-9\s] with a
// space, drops stopwords and single-character tokens, and collapses
// whitespace. Pure and total; Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lower := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, lower)

	var kept []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 1 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}
