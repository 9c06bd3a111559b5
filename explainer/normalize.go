package explainer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and trims whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	// Drop control characters except newlines and tabs.
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}

// NormalizeSentences normalizes each text to a single line with runs of
// whitespace collapsed. Texts that end up empty are dropped.
func NormalizeSentences(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.Join(strings.Fields(NormalizeText(t)), " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Lowercase folds text to lower case with Unicode-aware rules.
func Lowercase(text string) string {
	return cases.Lower(language.English).String(text)
}
