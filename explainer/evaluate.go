package explainer

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Metrics summarises predictions against a labelled dataset.
type Metrics struct {
	Classes   []int
	Accuracy  float64
	Confusion [][]int // [truth][predicted], in Classes order
	Precision []float64
	Recall    []float64
	F1        []float64
	Support   []int
	MacroF1   float64
}

// Evaluate scores clf on every record of ds.
func Evaluate(clf Classifier, ds *Dataset) (*Metrics, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("evaluate: dataset is empty")
	}
	probs, err := clf.Predict(ds.Texts())
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	classes := clf.Classes()
	pred := make([]int, len(probs))
	for i, row := range probs {
		if len(row) != len(classes) {
			return nil, errors.Errorf("evaluate: row %d has %d columns for %d classes", i, len(row), len(classes))
		}
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		pred[i] = classes[best]
	}
	return ComputeMetrics(classes, ds.Labels(), pred)
}

// ComputeMetrics builds the confusion matrix and per-class scores. Labels
// outside classes are rejected with ErrUnknownLabel. Undefined ratios are 0.
func ComputeMetrics(classes, truth, pred []int) (*Metrics, error) {
	if len(truth) != len(pred) {
		return nil, errors.Errorf("metrics: %d truths but %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return nil, errors.New("metrics: no predictions")
	}
	cats := NewCategories(classes)
	k := cats.Len()
	m := &Metrics{
		Classes:   cats.Values(),
		Confusion: make([][]int, k),
		Precision: make([]float64, k),
		Recall:    make([]float64, k),
		F1:        make([]float64, k),
		Support:   make([]int, k),
	}
	for i := range m.Confusion {
		m.Confusion[i] = make([]int, k)
	}
	correct := 0
	for i := range truth {
		ti, err := cats.Index(truth[i])
		if err != nil {
			return nil, errors.Wrapf(err, "truth row %d", i)
		}
		pi, err := cats.Index(pred[i])
		if err != nil {
			return nil, errors.Wrapf(err, "prediction row %d", i)
		}
		m.Confusion[ti][pi]++
		m.Support[ti]++
		if ti == pi {
			correct++
		}
	}
	m.Accuracy = float64(correct) / float64(len(truth))

	for c := 0; c < k; c++ {
		tp := m.Confusion[c][c]
		predicted := 0
		for r := 0; r < k; r++ {
			predicted += m.Confusion[r][c]
		}
		m.Precision[c] = ratio(tp, predicted)
		m.Recall[c] = ratio(tp, m.Support[c])
		if p, r := m.Precision[c], m.Recall[c]; p+r > 0 {
			m.F1[c] = 2 * p * r / (p + r)
		}
	}
	macro, err := stats.Mean(stats.Float64Data(m.F1))
	if err != nil {
		return nil, errors.Wrap(err, "macro f1")
	}
	m.MacroF1 = macro
	return m, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
