// Package textvec turns raw documents into sparse TF-IDF feature vectors.
//
// The vectoriser mirrors the usual bag-of-words recipe: documents are
// lowercased, split into runs of word characters, runs shorter than two
// characters are dropped, and the remaining terms are counted against a
// vocabulary sorted alphabetically. A TF-IDF transformer then reweights the
// counts with a smoothed inverse document frequency and L2-normalises rows.
package textvec

import "math"

// Vector is a sparse row. Indices are strictly increasing.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored (non-zero) entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// Dot computes the inner product with a dense weight slice.
func (v Vector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * w[idx]
	}
	return sum
}

// AddTo accumulates scale*v into the dense slice dst.
func (v Vector) AddTo(dst []float64, scale float64) {
	for i, idx := range v.Indices {
		dst[idx] += scale * v.Values[i]
	}
}

// Norm returns the Euclidean norm of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Clone returns a deep copy.
func (v Vector) Clone() Vector {
	out := Vector{
		Indices: make([]int, len(v.Indices)),
		Values:  make([]float64, len(v.Values)),
	}
	copy(out.Indices, v.Indices)
	copy(out.Values, v.Values)
	return out
}

// Cosine returns the cosine similarity of two sparse rows, 0 if either is empty.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot / (na * nb)
}
