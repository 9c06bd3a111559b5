package textvec

import (
	"math"

	"github.com/pkg/errors"
)

// TfidfTransformer reweights count vectors with a smoothed inverse document
// frequency and normalises each row to unit length.
type TfidfTransformer struct {
	idf []float64
}

// Fit computes idf = ln((1+n)/(1+df)) + 1 for every column.
func (t *TfidfTransformer) Fit(counts []Vector, numFeatures int) error {
	if numFeatures <= 0 {
		return errors.Errorf("fit tfidf: invalid feature count %d", numFeatures)
	}
	df := make([]float64, numFeatures)
	for _, row := range counts {
		for i, idx := range row.Indices {
			if row.Values[i] > 0 {
				df[idx]++
			}
		}
	}
	n := float64(len(counts))
	idf := make([]float64, numFeatures)
	for j := range idf {
		idf[j] = math.Log((1+n)/(1+df[j])) + 1
	}
	t.idf = idf
	return nil
}

// Transform returns new L2-normalised TF-IDF rows. All-zero rows stay empty.
func (t *TfidfTransformer) Transform(counts []Vector) ([]Vector, error) {
	if t.idf == nil {
		return nil, ErrNotFitted
	}
	out := make([]Vector, len(counts))
	for r, row := range counts {
		v := row.Clone()
		for i, idx := range v.Indices {
			if idx >= len(t.idf) {
				return nil, errors.Errorf("tfidf: column %d out of range", idx)
			}
			v.Values[i] *= t.idf[idx]
		}
		if norm := v.Norm(); norm > 0 {
			for i := range v.Values {
				v.Values[i] /= norm
			}
		}
		out[r] = v
	}
	return out, nil
}

// IDF returns the learned weight for a column.
func (t *TfidfTransformer) IDF(idx int) float64 {
	if idx < 0 || idx >= len(t.idf) {
		return 0
	}
	return t.idf[idx]
}
