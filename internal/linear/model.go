// Package linear implements the linear classifiers used by the sentiment
// pipelines: a multinomial logistic regression and a one-vs-rest linear SVM
// trained with stochastic gradient descent.
package linear

import (
	"sort"

	"github.com/pkg/errors"

	"yashubustudio/explainer/internal/textvec"
)

// ErrNotFitted is returned when predicting with an untrained model.
var ErrNotFitted = errors.New("model is not fitted")

// Model is a probabilistic classifier over sparse rows.
type Model interface {
	// Fit trains on rows X with integer targets y. numFeatures is the row width.
	Fit(X []textvec.Vector, y []int, numFeatures int) error
	// PredictProba returns one probability row per input, columns ordered as Classes.
	PredictProba(X []textvec.Vector) ([][]float64, error)
	// Classes returns the ascending class labels seen during Fit.
	Classes() []int
	// Iterations reports the optimiser iterations (or epochs) of the last Fit.
	Iterations() int
}

func uniqueClasses(y []int) []int {
	seen := make(map[int]struct{})
	for _, v := range y {
		seen[v] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func checkTrainingSet(X []textvec.Vector, y []int, numFeatures int) ([]int, error) {
	if len(X) == 0 {
		return nil, errors.New("empty training set")
	}
	if len(X) != len(y) {
		return nil, errors.Errorf("rows/targets length mismatch: %d vs %d", len(X), len(y))
	}
	if numFeatures <= 0 {
		return nil, errors.Errorf("invalid feature count %d", numFeatures)
	}
	for r, row := range X {
		for _, idx := range row.Indices {
			if idx < 0 || idx >= numFeatures {
				return nil, errors.Errorf("row %d: column %d out of range", r, idx)
			}
		}
	}
	classes := uniqueClasses(y)
	if len(classes) < 2 {
		return nil, errors.Errorf("need at least two classes, got %d", len(classes))
	}
	return classes, nil
}

func classIndex(classes []int) map[int]int {
	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return idx
}

func cloneInts(v []int) []int {
	out := make([]int, len(v))
	copy(out, v)
	return out
}
