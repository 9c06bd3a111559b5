package linear

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"yashubustudio/explainer/internal/textvec"
)

// sparseInterceptDecay damps intercept updates when training on sparse rows.
const sparseInterceptDecay = 0.01

// minWeightScale triggers folding the lazy scale back into the weights.
const minWeightScale = 1e-9

// SGDClassifier is a one-vs-rest linear classifier trained with plain SGD on
// the modified Huber loss and an L2 penalty, using the "optimal" learning
// rate eta = 1/(alpha·(t0+t)).
type SGDClassifier struct {
	Alpha   float64
	Epochs  int
	Seed    int64
	Shuffle bool

	classes   []int
	coef      [][]float64
	intercept []float64
	epochs    int
}

// NewSGDClassifier returns a model with alpha=1e-3, 100 epochs and seed 42.
func NewSGDClassifier() *SGDClassifier {
	return &SGDClassifier{Alpha: 1e-3, Epochs: 100, Seed: 42, Shuffle: true}
}

// Fit trains one binary classifier per class (a single one for two classes).
func (m *SGDClassifier) Fit(X []textvec.Vector, y []int, numFeatures int) error {
	classes, err := checkTrainingSet(X, y, numFeatures)
	if err != nil {
		return errors.Wrap(err, "fit sgd classifier")
	}
	if m.Alpha <= 0 {
		return errors.Errorf("fit sgd classifier: alpha must be positive, got %v", m.Alpha)
	}
	if m.Epochs <= 0 {
		return errors.Errorf("fit sgd classifier: epochs must be positive, got %d", m.Epochs)
	}
	rng := rand.New(rand.NewSource(m.Seed))

	positives := classes
	if len(classes) == 2 {
		positives = classes[1:]
	}
	coef := make([][]float64, len(positives))
	intercept := make([]float64, len(positives))
	for c, positive := range positives {
		target := make([]float64, len(y))
		for i, v := range y {
			if v == positive {
				target[i] = 1
			} else {
				target[i] = -1
			}
		}
		seed := rng.Int63()
		coef[c], intercept[c] = m.fitBinary(X, target, numFeatures, rand.New(rand.NewSource(seed)))
	}
	m.classes = classes
	m.coef = coef
	m.intercept = intercept
	m.epochs = m.Epochs
	return nil
}

// Iterations reports the epochs run by the last Fit. There is no early stop.
func (m *SGDClassifier) Iterations() int {
	return m.epochs
}

func (m *SGDClassifier) fitBinary(X []textvec.Vector, target []float64, numFeatures int, rng *rand.Rand) ([]float64, float64) {
	w := make([]float64, numFeatures)
	wscale := 1.0
	var b float64

	typw := math.Sqrt(1 / math.Sqrt(m.Alpha))
	eta0 := typw / math.Max(1, modifiedHuberDeriv(-typw, 1))
	t0 := 1 / (eta0 * m.Alpha)
	t := 1.0

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	for epoch := 0; epoch < m.Epochs; epoch++ {
		if m.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, i := range order {
			row := X[i]
			p := row.Dot(w)*wscale + b
			eta := 1 / (m.Alpha * (t0 + t - 1))
			update := -eta * modifiedHuberDeriv(p, target[i])

			wscale *= math.Max(0, 1-eta*m.Alpha)
			if update != 0 {
				row.AddTo(w, update/wscale)
				b += update * sparseInterceptDecay
			}
			if wscale < minWeightScale {
				for j := range w {
					w[j] *= wscale
				}
				wscale = 1
			}
			t++
		}
	}
	for j := range w {
		w[j] *= wscale
	}
	return w, b
}

// modifiedHuberDeriv is d/dp of the modified Huber loss for margin z = p·y.
func modifiedHuberDeriv(p, y float64) float64 {
	z := p * y
	switch {
	case z >= 1:
		return 0
	case z >= -1:
		return 2 * (1 - z) * -y
	default:
		return -4 * y
	}
}

// DecisionFunction returns one score per binary classifier.
func (m *SGDClassifier) DecisionFunction(X []textvec.Vector) ([][]float64, error) {
	if m.coef == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		scores := make([]float64, len(m.coef))
		for c := range m.coef {
			scores[c] = row.Dot(m.coef[c]) + m.intercept[c]
		}
		out[i] = scores
	}
	return out, nil
}

// PredictProba maps clipped decision values to (d+1)/2 and normalises rows.
// A row whose scores are all clipped to zero becomes uniform.
func (m *SGDClassifier) PredictProba(X []textvec.Vector) ([][]float64, error) {
	scores, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	k := len(m.classes)
	out := make([][]float64, len(scores))
	for i, row := range scores {
		if k == 2 {
			p := (clip(row[0], -1, 1) + 1) / 2
			out[i] = []float64{1 - p, p}
			continue
		}
		prob := make([]float64, k)
		var sum float64
		for c, d := range row {
			prob[c] = (clip(d, -1, 1) + 1) / 2
			sum += prob[c]
		}
		if sum == 0 {
			for c := range prob {
				prob[c] = 1 / float64(k)
			}
		} else {
			for c := range prob {
				prob[c] /= sum
			}
		}
		out[i] = prob
	}
	return out, nil
}

// Classes returns the ascending class labels.
func (m *SGDClassifier) Classes() []int {
	return cloneInts(m.classes)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
