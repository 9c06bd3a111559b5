package explainer

import (
	"sort"
	"sync"

	"yashubustudio/explainer/internal/textvec"
)

// Neighbor is a training sentence close to an explained text.
type Neighbor struct {
	Text  string
	Label int
	Score float64
}

type indexedSentence struct {
	text  string
	label int
	vec   textvec.Vector
}

// sentenceIndex is a brute-force cosine index over TF-IDF rows.
type sentenceIndex struct {
	mu    sync.RWMutex
	items []indexedSentence
}

func newSentenceIndex() *sentenceIndex {
	return &sentenceIndex{}
}

// Replace swaps the stored items.
func (idx *sentenceIndex) Replace(items []indexedSentence) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.items = make([]indexedSentence, len(items))
	for i, it := range items {
		idx.items[i] = indexedSentence{text: it.text, label: it.label, vec: it.vec.Clone()}
	}
}

// Size returns the number of indexed sentences.
func (idx *sentenceIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// Search returns the k most similar sentences, best first. Sentences with no
// shared vocabulary are skipped.
func (idx *sentenceIndex) Search(vec textvec.Vector, k int) []Neighbor {
	idx.mu.RLock()
	items := idx.items
	idx.mu.RUnlock()
	if len(items) == 0 || vec.Len() == 0 || k <= 0 {
		return nil
	}
	hits := make([]Neighbor, 0, len(items))
	for _, it := range items {
		score := textvec.Cosine(vec, it.vec)
		if score <= 0 {
			continue
		}
		hits = append(hits, Neighbor{Text: it.text, Label: it.label, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// buildSentenceIndex vectorises every record of ds with p.
func buildSentenceIndex(p *Pipeline, ds *Dataset) (*sentenceIndex, error) {
	vecs, err := p.Vectorize(ds.Texts())
	if err != nil {
		return nil, err
	}
	items := make([]indexedSentence, len(vecs))
	for i, v := range vecs {
		items[i] = indexedSentence{text: ds.Records[i].Text, label: ds.Records[i].Truth, vec: v}
	}
	idx := newSentenceIndex()
	idx.Replace(items)
	return idx, nil
}
