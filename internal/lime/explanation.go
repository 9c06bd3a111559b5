package lime

import (
	"sort"

	"github.com/pkg/errors"
)

// FeatureWeight is the contribution of one token position to a label.
type FeatureWeight struct {
	Feature int
	Word    string
	Weight  float64
}

// LabelExplanation is the local surrogate fitted for one label.
type LabelExplanation struct {
	Label     int
	Intercept float64
	// Weights are sorted by decreasing absolute weight.
	Weights   []FeatureWeight
	Score     float64
	LocalPred float64
}

// Explanation is the result of ExplainInstance.
type Explanation struct {
	Text         string
	Words        []string
	ClassNames   []string
	PredictProba []float64
	// TopLabels is set when the explanation was requested by rank, best first.
	TopLabels []int
	Local     map[int]*LabelExplanation
}

// AvailableLabels returns the explained labels, ranked when TopLabels is set.
func (e *Explanation) AvailableLabels() []int {
	if len(e.TopLabels) > 0 {
		return append([]int(nil), e.TopLabels...)
	}
	out := make([]int, 0, len(e.Local))
	for label := range e.Local {
		out = append(out, label)
	}
	sort.Ints(out)
	return out
}

// AsList returns the (word, weight) contributions for label.
func (e *Explanation) AsList(label int) ([]FeatureWeight, error) {
	local, ok := e.Local[label]
	if !ok {
		return nil, errors.Errorf("label %d was not explained", label)
	}
	return append([]FeatureWeight(nil), local.Weights...), nil
}

// ClassName returns the display name of a label index.
func (e *Explanation) ClassName(label int) string {
	if label < 0 || label >= len(e.ClassNames) {
		return ""
	}
	return e.ClassNames[label]
}

// WordWeights maps each token position to its weight for label; unexplained
// positions are absent.
func (e *Explanation) WordWeights(label int) map[int]float64 {
	out := make(map[int]float64)
	if local, ok := e.Local[label]; ok {
		for _, fw := range local.Weights {
			out[fw.Feature] = fw.Weight
		}
	}
	return out
}
