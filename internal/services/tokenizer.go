package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeText applies NFKC normalization and Unicode case folding so that
// matching is case-insensitive for non-ASCII text too.
func normalizeText(text string) string {
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFKC.String(text))
}

// tokenize splits text into normalized word tokens in document order.
// Letters, digits and the characters + # . are word characters, which keeps
// terms like "c++", "c#" and "node.js" intact. Trailing dots are dropped and
// tokens without any letter or digit are discarded.
func tokenize(text string) []string {
	text = normalizeText(text)

	var tokens []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if hasAlphanumeric(w) {
			tokens = append(tokens, w)
		}
	}

	for _, r := range text {
		if isWordRune(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.'
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ngramSet returns every contiguous token sequence of length 1..maxN, joined
// by single spaces.
func ngramSet(tokens []string, maxN int) map[string]struct{} {
	if maxN < 1 {
		maxN = 1
	}
	grams := make(map[string]struct{}, len(tokens)*maxN)
	for i := range tokens {
		for n := 1; n <= maxN && i+n <= len(tokens); n++ {
			grams[strings.Join(tokens[i:i+n], " ")] = struct{}{}
		}
	}
	return grams
}

// keywordSet returns the deduplicated, stopword-free keywords of text.
func keywordSet(text string) map[string]struct{} {
	kw := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		if len([]rune(tok)) < 2 || isStopWord(tok) {
			continue
		}
		kw[tok] = struct{}{}
	}
	return kw
}

// phraseKey normalizes a skill or vocabulary term into the form produced by
// ngramSet. It returns "" when the term has no word characters.
func phraseKey(term string) (string, int) {
	tokens := tokenize(term)
	return strings.Join(tokens, " "), len(tokens)
}
