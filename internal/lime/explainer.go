// Package lime explains a black-box text classifier locally. It perturbs a
// text by masking random subsets of its tokens, scores every variant with the
// classifier, and fits a proximity-weighted ridge regression whose
// coefficients attribute the prediction to individual tokens.
package lime

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Feature selection strategies.
const (
	SelectAuto           = "auto"
	SelectForward        = "forward_selection"
	SelectHighestWeights = "highest_weights"
	SelectNone           = "none"
)

const (
	// DefaultKernelWidth is the width of the exponential proximity kernel.
	DefaultKernelWidth = 25.0
	// DefaultMask replaces removed tokens when word order is preserved.
	DefaultMask = "UNKWORDZ"

	forwardSelectionLimit = 6
	selectionAlpha        = 0.01
	regressorAlpha        = 1.0
)

// ErrEmptyText is returned when the text has no tokens to perturb.
var ErrEmptyText = errors.New("text has no tokens to explain")

// ClassifierFunc scores a batch of texts, one probability row per text.
type ClassifierFunc func(texts []string) ([][]float64, error)

// Options controls a single explanation.
type Options struct {
	// Labels to explain. Ignored when TopLabels > 0.
	Labels []int
	// TopLabels explains the k most probable classes of the original text.
	TopLabels   int
	NumFeatures int
	NumSamples  int
}

// TextExplainer holds the configuration shared by explanations.
type TextExplainer struct {
	KernelWidth      float64
	ClassNames       []string
	Split            func(string) []string
	MaskString       string
	FeatureSelection string

	rng *rand.Rand
}

// NewTextExplainer returns an explainer with whitespace splitting, the
// default kernel and mask, and a deterministic random source.
func NewTextExplainer(classNames []string, seed int64) *TextExplainer {
	return &TextExplainer{
		KernelWidth:      DefaultKernelWidth,
		ClassNames:       append([]string(nil), classNames...),
		MaskString:       DefaultMask,
		FeatureSelection: SelectAuto,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// ExplainInstance explains the classifier's prediction for text.
func (e *TextExplainer) ExplainInstance(ctx context.Context, text string, fn ClassifierFunc, opts Options) (*Explanation, error) {
	if fn == nil {
		return nil, errors.New("explain: classifier function is nil")
	}
	if opts.NumSamples < 1 {
		return nil, errors.Errorf("explain: num samples must be positive, got %d", opts.NumSamples)
	}
	if opts.NumFeatures < 1 {
		return nil, errors.Errorf("explain: num features must be positive, got %d", opts.NumFeatures)
	}
	indexed, err := NewIndexedString(text, e.Split)
	if err != nil {
		return nil, errors.Wrap(err, "explain")
	}
	if indexed.NumWords() == 0 {
		return nil, ErrEmptyText
	}

	data, texts := e.sample(indexed, opts.NumSamples)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	probs, err := fn(texts)
	if err != nil {
		return nil, errors.Wrap(err, "explain: classifier")
	}
	numClasses, err := e.checkPredictions(probs, len(texts))
	if err != nil {
		return nil, err
	}
	weights := e.kernelWeights(data)

	exp := &Explanation{
		Text:         text,
		Words:        indexed.Words(),
		ClassNames:   e.classNames(numClasses),
		PredictProba: append([]float64(nil), probs[0]...),
		Local:        make(map[int]*LabelExplanation),
	}
	labels := opts.Labels
	if opts.TopLabels > 0 {
		labels = topIndices(probs[0], opts.TopLabels)
		exp.TopLabels = append([]int(nil), labels...)
	}
	if len(labels) == 0 {
		labels = []int{1}
	}
	for _, label := range labels {
		if label < 0 || label >= numClasses {
			return nil, errors.Errorf("explain: label %d out of range [0,%d)", label, numClasses)
		}
		column := make([]float64, len(probs))
		for i, row := range probs {
			column[i] = row[label]
		}
		local, err := e.explainLabel(data, column, weights, opts.NumFeatures)
		if err != nil {
			return nil, errors.Wrapf(err, "explain label %d", label)
		}
		local.Label = label
		for i := range local.Weights {
			local.Weights[i].Word = indexed.Word(local.Weights[i].Feature)
		}
		exp.Local[label] = local
	}
	return exp, nil
}

// sample builds the binary neighbourhood matrix and the matching masked
// texts. Row 0 is the untouched original.
func (e *TextExplainer) sample(indexed *IndexedString, numSamples int) ([][]float64, []string) {
	d := indexed.NumWords()
	data := make([][]float64, numSamples)
	texts := make([]string, numSamples)
	for i := range data {
		row := make([]float64, d)
		for j := range row {
			row[j] = 1
		}
		data[i] = row
	}
	texts[0] = indexed.Raw()
	mask := e.MaskString
	if mask == "" {
		mask = DefaultMask
	}
	for i := 1; i < numSamples; i++ {
		size := e.rng.Intn(d) + 1
		inactive := e.rng.Perm(d)[:size]
		for _, f := range inactive {
			data[i][f] = 0
		}
		texts[i] = indexed.InverseRemoving(inactive, mask)
	}
	return data, texts
}

func (e *TextExplainer) checkPredictions(probs [][]float64, want int) (int, error) {
	if len(probs) != want {
		return 0, errors.Errorf("explain: classifier returned %d rows for %d texts", len(probs), want)
	}
	k := len(probs[0])
	if k == 0 {
		return 0, errors.New("explain: classifier returned empty rows")
	}
	if len(e.ClassNames) > 0 && len(e.ClassNames) != k {
		return 0, errors.Errorf("explain: classifier returned %d classes, expected %d", k, len(e.ClassNames))
	}
	for i, row := range probs {
		if len(row) != k {
			return 0, errors.Errorf("explain: row %d has %d columns, expected %d", i, len(row), k)
		}
	}
	return k, nil
}

// kernelWeights turns cosine distances to the original (×100) into
// proximity weights sqrt(exp(-d²/w²)).
func (e *TextExplainer) kernelWeights(data [][]float64) []float64 {
	width := e.KernelWidth
	if width <= 0 {
		width = DefaultKernelWidth
	}
	out := make([]float64, len(data))
	for i, row := range data {
		out[i] = kernel(cosineDistanceToOnes(row)*100, width)
	}
	return out
}

func cosineDistanceToOnes(row []float64) float64 {
	var dot, norm float64
	for _, v := range row {
		dot += v
		norm += v * v
	}
	if norm == 0 || len(row) == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(norm)*math.Sqrt(float64(len(row))))
}

func kernel(d, width float64) float64 {
	return math.Sqrt(math.Exp(-(d * d) / (width * width)))
}

func (e *TextExplainer) explainLabel(data [][]float64, target, weights []float64, numFeatures int) (*LabelExplanation, error) {
	used, err := e.selectFeatures(data, target, weights, numFeatures)
	if err != nil {
		return nil, err
	}
	sub := selectColumns(data, used)
	model, err := fitRidge(sub, target, weights, regressorAlpha)
	if err != nil {
		return nil, err
	}
	local := &LabelExplanation{
		Intercept: model.intercept,
		Score:     model.score(sub, target, weights),
		LocalPred: model.predict(sub[0]),
	}
	for j, f := range used {
		local.Weights = append(local.Weights, FeatureWeight{Feature: f, Weight: model.coef[j]})
	}
	sort.SliceStable(local.Weights, func(a, b int) bool {
		return math.Abs(local.Weights[a].Weight) > math.Abs(local.Weights[b].Weight)
	})
	return local, nil
}

func (e *TextExplainer) selectFeatures(data [][]float64, target, weights []float64, numFeatures int) ([]int, error) {
	d := len(data[0])
	method := e.FeatureSelection
	if method == "" || method == SelectAuto {
		if numFeatures <= forwardSelectionLimit {
			method = SelectForward
		} else {
			method = SelectHighestWeights
		}
	}
	switch method {
	case SelectNone:
		return seq(d), nil
	case SelectForward:
		return forwardSelection(data, target, weights, numFeatures)
	case SelectHighestWeights:
		model, err := fitRidge(data, target, weights, selectionAlpha)
		if err != nil {
			return nil, err
		}
		order := seq(d)
		sort.SliceStable(order, func(a, b int) bool {
			return math.Abs(model.coef[order[a]]*data[0][order[a]]) > math.Abs(model.coef[order[b]]*data[0][order[b]])
		})
		if numFeatures < len(order) {
			order = order[:numFeatures]
		}
		return order, nil
	default:
		return nil, errors.Errorf("unknown feature selection %q", e.FeatureSelection)
	}
}

// forwardSelection greedily adds the feature that most improves the
// weighted R² of an unregularised fit.
func forwardSelection(data [][]float64, target, weights []float64, numFeatures int) ([]int, error) {
	d := len(data[0])
	limit := numFeatures
	if limit > d {
		limit = d
	}
	used := make([]int, 0, limit)
	taken := make(map[int]bool)
	for len(used) < limit {
		best, bestScore := -1, math.Inf(-1)
		for f := 0; f < d; f++ {
			if taken[f] {
				continue
			}
			cols := append(append([]int(nil), used...), f)
			sub := selectColumns(data, cols)
			model, err := fitRidge(sub, target, weights, 0)
			if err != nil {
				return nil, err
			}
			if score := model.score(sub, target, weights); score > bestScore {
				best, bestScore = f, score
			}
		}
		used = append(used, best)
		taken[best] = true
	}
	return used, nil
}

func (e *TextExplainer) classNames(k int) []string {
	if len(e.ClassNames) == k {
		return append([]string(nil), e.ClassNames...)
	}
	out := make([]string, k)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

// topIndices returns the indices of the k largest values, largest first.
func topIndices(row []float64, k int) []int {
	order := seq(len(row))
	sort.SliceStable(order, func(a, b int) bool { return row[order[a]] > row[order[b]] })
	if k < len(order) {
		order = order[:k]
	}
	return order
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
