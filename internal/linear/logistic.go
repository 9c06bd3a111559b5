package linear

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"yashubustudio/explainer/internal/textvec"
)

// LogisticRegression is a multinomial (softmax) logistic regression with an
// L2 penalty of 1/(2C)·‖W‖². Intercepts are not penalised.
type LogisticRegression struct {
	C       float64
	MaxIter int
	Tol     float64

	classes    []int
	numFeat    int
	coef       [][]float64
	intercept  []float64
	iterations int
}

// NewLogisticRegression returns a model with C=1, 100 iterations and tol=1e-4.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1, MaxIter: 100, Tol: 1e-4}
}

// Fit minimises the penalised cross-entropy with L-BFGS.
func (m *LogisticRegression) Fit(X []textvec.Vector, y []int, numFeatures int) error {
	classes, err := checkTrainingSet(X, y, numFeatures)
	if err != nil {
		return errors.Wrap(err, "fit logistic regression")
	}
	if m.C <= 0 {
		return errors.Errorf("fit logistic regression: C must be positive, got %v", m.C)
	}
	k := len(classes)
	d := numFeatures
	lookup := classIndex(classes)
	target := make([]int, len(y))
	for i, v := range y {
		target[i] = lookup[v]
	}
	lambda := 1 / m.C
	scores := make([]float64, k)

	objective := func(theta, grad []float64) float64 {
		if grad != nil {
			for i := range grad {
				grad[i] = 0
			}
		}
		var loss float64
		for i, row := range X {
			for c := 0; c < k; c++ {
				scores[c] = row.Dot(theta[c*d:(c+1)*d]) + theta[k*d+c]
			}
			lse := floats.LogSumExp(scores)
			loss += lse - scores[target[i]]
			if grad == nil {
				continue
			}
			for c := 0; c < k; c++ {
				p := math.Exp(scores[c] - lse)
				if c == target[i] {
					p--
				}
				row.AddTo(grad[c*d:(c+1)*d], p)
				grad[k*d+c] += p
			}
		}
		for j := 0; j < k*d; j++ {
			loss += 0.5 * lambda * theta[j] * theta[j]
			if grad != nil {
				grad[j] += lambda * theta[j]
			}
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return objective(x, nil) },
		Grad: func(grad, x []float64) { objective(x, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: m.Tol,
	}
	init := make([]float64, k*d+k)
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		return errors.Wrap(err, "fit logistic regression")
	}
	if err != nil && !allFinite(result.X) {
		return errors.Wrap(err, "fit logistic regression")
	}

	m.classes = classes
	m.numFeat = d
	m.coef = make([][]float64, k)
	for c := 0; c < k; c++ {
		m.coef[c] = append([]float64(nil), result.X[c*d:(c+1)*d]...)
	}
	m.intercept = append([]float64(nil), result.X[k*d:]...)
	m.iterations = result.MajorIterations
	return nil
}

// DecisionFunction returns the raw class scores W·x + b.
func (m *LogisticRegression) DecisionFunction(X []textvec.Vector) ([][]float64, error) {
	if m.coef == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		scores := make([]float64, len(m.classes))
		for c := range m.classes {
			scores[c] = row.Dot(m.coef[c]) + m.intercept[c]
		}
		out[i] = scores
	}
	return out, nil
}

// PredictProba applies the softmax to the decision function.
func (m *LogisticRegression) PredictProba(X []textvec.Vector) ([][]float64, error) {
	scores, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	for _, row := range scores {
		lse := floats.LogSumExp(row)
		for c := range row {
			row[c] = math.Exp(row[c] - lse)
		}
	}
	return scores, nil
}

// Classes returns the ascending class labels.
func (m *LogisticRegression) Classes() []int {
	return cloneInts(m.classes)
}

// Iterations reports how many optimiser iterations the last Fit used.
func (m *LogisticRegression) Iterations() int {
	return m.iterations
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
