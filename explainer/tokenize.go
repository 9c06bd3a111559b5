package explainer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	prefixRunes = "\"'`([{<*$£€¥#&¿¡§%=~“‘«„,:;!?_"
	suffixRunes = ",:;!?)]}>\"'”’»%*_#&"
	// A '.' is split off after these runes.
	periodAfter = "%)]}\"'”’-+°"
	hyphenRunes = "-–—~"
	closerRunes = "\"'”’»)]}"
)

var (
	initialsPattern = regexp.MustCompile(`^(?:[A-Za-z]\.){2,}$`)

	// Contraction pieces and multi-rune punctuation kept as single tokens.
	specialTokens = map[string]struct{}{
		"'s": {}, "n't": {}, "'re": {}, "'ve": {}, "'ll": {}, "'d": {}, "'m": {},
		"...": {}, "--": {}, "---": {},
	}

	abbreviations = map[string]struct{}{
		"mr.": {}, "mrs.": {}, "ms.": {}, "dr.": {}, "st.": {}, "jr.": {}, "sr.": {},
		"vs.": {}, "etc.": {}, "e.g.": {}, "i.e.": {}, "a.m.": {}, "p.m.": {},
		"inc.": {}, "ltd.": {}, "prof.": {}, "mt.": {}, "jan.": {}, "feb.": {},
		"aug.": {}, "sept.": {}, "oct.": {}, "nov.": {}, "dec.": {},
	}

	// Irregular contractions split at a fixed byte offset.
	contractionSplits = map[string]int{
		"can't": 2, "won't": 2, "ain't": 2, "shan't": 3,
		"cannot": 3, "gonna": 3, "gotta": 3, "wanna": 3,
	}

	clitics = []string{"'s", "'re", "'ve", "'ll", "'d", "'m"}

	sentenceEnders = map[string]struct{}{".": {}, "!": {}, "?": {}, "...": {}}
)

// Tokenize splits raw text into tokens and joins them with single spaces.
// Tokenizing its own output returns the same string.
func Tokenize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Tokens splits text on whitespace, then peels punctuation prefixes and
// suffixes, clitics ('s, n't, ...) and infixes (hyphens, ellipses) off
// every chunk.
func Tokens(text string) []string {
	var out []string
	for _, chunk := range strings.Fields(NormalizeText(text)) {
		out = append(out, splitChunk(chunk)...)
	}
	return out
}

// Sentences groups the tokens of text into sentences. A sentence ends after
// '.', '!', '?' or '...', absorbing closing quotes and brackets.
func Sentences(text string) [][]string {
	tokens := Tokens(text)
	var out [][]string
	var cur []string
	for i := 0; i < len(tokens); i++ {
		cur = append(cur, tokens[i])
		if _, ok := sentenceEnders[tokens[i]]; !ok {
			continue
		}
		for i+1 < len(tokens) && isCloser(tokens[i+1]) {
			i++
			cur = append(cur, tokens[i])
		}
		out = append(out, cur)
		cur = nil
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func splitChunk(chunk string) []string {
	var head, tail []string
	for chunk != "" {
		if isSpecial(chunk) {
			break
		}
		if at, ok := contractionSplits[strings.ToLower(foldApostrophe(chunk))]; ok {
			head = append(head, chunk[:at], chunk[at:])
			chunk = ""
			break
		}
		if p := matchPrefix(chunk); p > 0 {
			head = append(head, chunk[:p])
			chunk = chunk[p:]
			continue
		}
		if s := matchSuffix(chunk); s > 0 {
			tail = append(tail, chunk[len(chunk)-s:])
			chunk = chunk[:len(chunk)-s]
			continue
		}
		break
	}
	out := head
	if chunk != "" {
		if isSpecial(chunk) {
			out = append(out, chunk)
		} else {
			out = append(out, splitInfixes(chunk)...)
		}
	}
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

func isSpecial(s string) bool {
	folded := strings.ToLower(foldApostrophe(s))
	if _, ok := specialTokens[folded]; ok {
		return true
	}
	if _, ok := abbreviations[folded]; ok {
		return true
	}
	return initialsPattern.MatchString(s)
}

// matchPrefix returns the byte length of a leading punctuation token.
func matchPrefix(s string) int {
	if strings.HasPrefix(s, "...") {
		return dotRun(s)
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == '+' {
		next, _ := utf8.DecodeRuneInString(s[size:])
		if unicode.IsDigit(next) {
			return 0
		}
		return size
	}
	if strings.ContainsRune(prefixRunes, r) {
		return size
	}
	return 0
}

// matchSuffix returns the byte length of a trailing token.
func matchSuffix(s string) int {
	if strings.HasSuffix(s, "...") && len(strings.TrimRight(s, ".")) > 0 {
		return len(s) - len(strings.TrimRight(s, "."))
	}
	folded := strings.ToLower(foldApostrophe(s))
	if strings.HasSuffix(folded, "n't") && len(folded) > 3 {
		return len(s) - len(cutAfterRunes(s, utf8.RuneCountInString(s)-3))
	}
	for _, c := range clitics {
		if !strings.HasSuffix(folded, c) || len(folded) <= len(c) {
			continue
		}
		n := utf8.RuneCountInString(c)
		stem := cutAfterRunes(s, utf8.RuneCountInString(s)-n)
		last, _ := utf8.DecodeLastRuneInString(stem)
		if unicode.IsLetter(last) || unicode.IsDigit(last) {
			return len(s) - len(stem)
		}
	}
	r, size := utf8.DecodeLastRuneInString(s)
	if r == '.' {
		if periodSplits(s[:len(s)-size]) {
			return size
		}
		return 0
	}
	if strings.ContainsRune(suffixRunes, r) {
		return size
	}
	return 0
}

func periodSplits(stem string) bool {
	prev, size := utf8.DecodeLastRuneInString(stem)
	if prev == utf8.RuneError {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) || strings.ContainsRune(periodAfter, prev) {
		return true
	}
	before, _ := utf8.DecodeLastRuneInString(stem[:len(stem)-size])
	return unicode.IsUpper(prev) && unicode.IsUpper(before)
}

func splitInfixes(s string) []string {
	rs := []rune(s)
	var out []string
	start := 0
	for i := 0; i < len(rs); {
		n := infixAt(rs, i)
		if n == 0 {
			i++
			continue
		}
		if i > start {
			out = append(out, string(rs[start:i]))
		}
		out = append(out, string(rs[i:i+n]))
		i += n
		start = i
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	return out
}

// infixAt returns the rune length of an infix starting at rs[i], or 0.
func infixAt(rs []rune, i int) int {
	if i == 0 || i >= len(rs)-1 {
		return 0
	}
	prev, r, next := rs[i-1], rs[i], rs[i+1]
	switch {
	case r == '.' && next == '.':
		n := 0
		for i+n < len(rs) && rs[i+n] == '.' {
			n++
		}
		if i+n < len(rs) {
			return n
		}
		return 0
	case unicode.IsDigit(prev) && strings.ContainsRune("+-*^", r) && (unicode.IsDigit(next) || next == '-'):
		return 1
	case strings.ContainsRune(hyphenRunes, r):
		n := 0
		for i+n < len(rs) && n < 3 && strings.ContainsRune(hyphenRunes, rs[i+n]) {
			n++
		}
		if i+n < len(rs) && (unicode.IsLetter(prev) || unicode.IsDigit(prev)) && unicode.IsLetter(rs[i+n]) {
			return n
		}
		return 0
	case r == ',' && unicode.IsLetter(prev) && unicode.IsLetter(next):
		return 1
	case strings.ContainsRune(":<>=/", r) && (unicode.IsLetter(prev) || unicode.IsDigit(prev)) && unicode.IsLetter(next):
		return 1
	case r == '.' && (unicode.IsLower(prev) || isQuote(prev)) && (unicode.IsUpper(next) || isQuote(next)):
		return 1
	}
	return 0
}

func dotRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '.' {
		n++
	}
	return n
}

func cutAfterRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func foldApostrophe(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '“' || r == '”' || r == '‘' || r == '’'
}

func isCloser(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && strings.ContainsRune(closerRunes, r)
}
