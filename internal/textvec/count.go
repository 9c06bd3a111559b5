package textvec

import (
	"sort"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTermRunes is the shortest run of word characters kept as a term.
const minTermRunes = 2

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("vectorizer is not fitted")

// CountVectorizer converts documents into term-count vectors.
type CountVectorizer struct {
	Lowercase bool

	vocab map[string]int
	terms []string
}

// NewCountVectorizer returns a lowercasing vectorizer.
func NewCountVectorizer() *CountVectorizer {
	return &CountVectorizer{Lowercase: true}
}

// Analyze splits a document into terms.
func (c *CountVectorizer) Analyze(doc string) []string {
	if c.Lowercase {
		doc = cases.Lower(language.Und).String(doc)
	}
	var terms []string
	start := -1
	runes := 0
	flush := func(end int) {
		if start >= 0 && runes >= minTermRunes {
			terms = append(terms, doc[start:end])
		}
		start = -1
		runes = 0
	}
	for i, r := range doc {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(doc))
	return terms
}

// Fit learns the vocabulary. Term indices follow alphabetical order.
func (c *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("fit vectorizer: no documents")
	}
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, term := range c.Analyze(doc) {
			seen[term] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return errors.New("fit vectorizer: empty vocabulary")
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	c.terms = terms
	c.vocab = vocab
	return nil
}

// Transform counts vocabulary terms in each document. Unknown terms are ignored.
func (c *CountVectorizer) Transform(docs []string) ([]Vector, error) {
	if c.vocab == nil {
		return nil, ErrNotFitted
	}
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, term := range c.Analyze(doc) {
			if idx, ok := c.vocab[term]; ok {
				counts[idx]++
			}
		}
		out[i] = fromMap(counts)
	}
	return out, nil
}

// FitTransform fits the vocabulary and transforms the same documents.
func (c *CountVectorizer) FitTransform(docs []string) ([]Vector, error) {
	if err := c.Fit(docs); err != nil {
		return nil, err
	}
	return c.Transform(docs)
}

// NumFeatures returns the vocabulary size.
func (c *CountVectorizer) NumFeatures() int {
	return len(c.terms)
}

// Term returns the vocabulary term at index idx.
func (c *CountVectorizer) Term(idx int) string {
	if idx < 0 || idx >= len(c.terms) {
		return ""
	}
	return c.terms[idx]
}

// Index returns the column of a term.
func (c *CountVectorizer) Index(term string) (int, bool) {
	idx, ok := c.vocab[term]
	return idx, ok
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

func fromMap(m map[int]float64) Vector {
	idx := make([]int, 0, len(m))
	for k := range m {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	vals := make([]float64, len(idx))
	for i, k := range idx {
		vals[i] = m[k]
	}
	return Vector{Indices: idx, Values: vals}
}
