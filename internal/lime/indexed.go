package lime

import (
	"strings"

	"github.com/pkg/errors"
)

// IndexedString keeps a text split into word features while preserving the
// separators between them, so masked variants can be rebuilt verbatim.
// Every word occurrence is its own feature: position matters.
type IndexedString struct {
	raw      string
	segments []string
	wordAt   []int
}

// NewIndexedString splits raw with split and locates each token in order.
func NewIndexedString(raw string, split func(string) []string) (*IndexedString, error) {
	if split == nil {
		split = strings.Fields
	}
	tokens := split(raw)
	s := &IndexedString{raw: raw}
	cursor := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		off := strings.Index(raw[cursor:], tok)
		if off < 0 {
			return nil, errors.Errorf("token %q not found in text", tok)
		}
		if off > 0 {
			s.segments = append(s.segments, raw[cursor:cursor+off])
		}
		s.wordAt = append(s.wordAt, len(s.segments))
		s.segments = append(s.segments, tok)
		cursor += off + len(tok)
	}
	if cursor < len(raw) {
		s.segments = append(s.segments, raw[cursor:])
	}
	return s, nil
}

// Raw returns the original text.
func (s *IndexedString) Raw() string {
	return s.raw
}

// NumWords returns the number of word features.
func (s *IndexedString) NumWords() int {
	return len(s.wordAt)
}

// Word returns the token behind feature i.
func (s *IndexedString) Word(i int) string {
	if i < 0 || i >= len(s.wordAt) {
		return ""
	}
	return s.segments[s.wordAt[i]]
}

// Words returns all word features in order.
func (s *IndexedString) Words() []string {
	out := make([]string, len(s.wordAt))
	for i := range s.wordAt {
		out[i] = s.Word(i)
	}
	return out
}

// InverseRemoving rebuilds the text with the given features replaced by mask.
func (s *IndexedString) InverseRemoving(removed []int, mask string) string {
	segs := make([]string, len(s.segments))
	copy(segs, s.segments)
	for _, f := range removed {
		if f >= 0 && f < len(s.wordAt) {
			segs[s.wordAt[f]] = mask
		}
	}
	return strings.Join(segs, "")
}
