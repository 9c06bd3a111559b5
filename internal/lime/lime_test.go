package lime

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keywordClassifier(word string) ClassifierFunc {
	return func(texts []string) ([][]float64, error) {
		out := make([][]float64, len(texts))
		for i, text := range texts {
			p := 0.2
			for _, tok := range strings.Fields(text) {
				if tok == word {
					p = 0.9
				}
			}
			out[i] = []float64{1 - p, p}
		}
		return out, nil
	}
}

func TestIndexedStringKeepsSeparators(t *testing.T) {
	s, err := NewIndexedString("It 's  good .", strings.Fields)
	require.NoError(t, err)

	assert.Equal(t, 4, s.NumWords())
	assert.Equal(t, []string{"It", "'s", "good", "."}, s.Words())
	assert.Equal(t, "It X  good .", s.InverseRemoving([]int{1}, "X"))
	assert.Equal(t, "X 's  good X", s.InverseRemoving([]int{0, 3}, "X"))
	assert.Equal(t, "", s.Word(9))
}

func TestIndexedStringRepeatedWordsAreSeparateFeatures(t *testing.T) {
	s, err := NewIndexedString("bad bad movie", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumWords())
	assert.Equal(t, "bad M movie", s.InverseRemoving([]int{1}, "M"))
}

func TestIndexedStringMissingToken(t *testing.T) {
	_, err := NewIndexedString("abc", func(string) []string { return []string{"zzz"} })
	assert.Error(t, err)
}

func TestKernelAndDistance(t *testing.T) {
	assert.Equal(t, 1.0, kernel(0, 25))
	assert.InDelta(t, math.Sqrt(math.Exp(-1)), kernel(25, 25), 1e-12)

	assert.InDelta(t, 0, cosineDistanceToOnes([]float64{1, 1, 1, 1}), 1e-12)
	assert.InDelta(t, 1-math.Sqrt(0.25), cosineDistanceToOnes([]float64{1, 0, 0, 0}), 1e-12)
	assert.Equal(t, 1.0, cosineDistanceToOnes([]float64{0, 0}))
}

func TestFitRidgeRecoversLinearModel(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 3}}
	w := []float64{1, 2, 1, 0.5, 1, 3}
	y := make([]float64, len(X))
	for i, row := range X {
		y[i] = 2*row[0] - row[1] + 3
	}
	model, err := fitRidge(X, y, w, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2, model.coef[0], 1e-6)
	assert.InDelta(t, -1, model.coef[1], 1e-6)
	assert.InDelta(t, 3, model.intercept, 1e-6)
	assert.InDelta(t, 1, model.score(X, y, w), 1e-9)
}

func TestFitRidgeShrinksWithAlpha(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{0, 1, 2, 3}
	w := []float64{1, 1, 1, 1}
	loose, err := fitRidge(X, y, w, 0)
	require.NoError(t, err)
	tight, err := fitRidge(X, y, w, 10)
	require.NoError(t, err)
	assert.Less(t, math.Abs(tight.coef[0]), math.Abs(loose.coef[0]))
}

func TestFitRidgeSingularColumns(t *testing.T) {
	X := [][]float64{{1, 1}, {1, 1}}
	model, err := fitRidge(X, []float64{1, 2}, []float64{1, 1}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, model.intercept, 1e-6)
}

func TestExplainInstanceFindsKeyword(t *testing.T) {
	for _, numFeatures := range []int{2, 20} {
		e := NewTextExplainer([]string{"neg", "pos"}, 7)
		exp, err := e.ExplainInstance(context.Background(), "this movie is great", keywordClassifier("great"), Options{
			TopLabels:   1,
			NumFeatures: numFeatures,
			NumSamples:  500,
		})
		require.NoError(t, err)

		assert.Equal(t, []int{1}, exp.TopLabels)
		assert.Equal(t, "pos", exp.ClassName(1))
		assert.Equal(t, []float64{0.1, 0.9}, roundRow(exp.PredictProba))

		list, err := exp.AsList(1)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, "great", list[0].Word)
		assert.Equal(t, 3, list[0].Feature)
		assert.Greater(t, list[0].Weight, 0.3)
		assert.LessOrEqual(t, len(list), numFeatures)
	}
}

func TestExplainInstanceIsDeterministicForSeed(t *testing.T) {
	run := func() []FeatureWeight {
		e := NewTextExplainer(nil, 3)
		exp, err := e.ExplainInstance(context.Background(), "not bad at all", keywordClassifier("bad"), Options{
			TopLabels: 1, NumFeatures: 20, NumSamples: 200,
		})
		require.NoError(t, err)
		list, err := exp.AsList(exp.TopLabels[0])
		require.NoError(t, err)
		return list
	}
	assert.Equal(t, run(), run())
}

func TestExplainInstanceExplicitLabels(t *testing.T) {
	e := NewTextExplainer(nil, 1)
	exp, err := e.ExplainInstance(context.Background(), "great fun", keywordClassifier("great"), Options{
		Labels: []int{0, 1}, NumFeatures: 5, NumSamples: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, exp.AvailableLabels())
	assert.Equal(t, []string{"0", "1"}, exp.ClassNames)

	_, err = exp.AsList(3)
	assert.Error(t, err)
}

func TestExplainInstanceErrors(t *testing.T) {
	ctx := context.Background()
	e := NewTextExplainer([]string{"a", "b"}, 1)
	fn := keywordClassifier("x")

	_, err := e.ExplainInstance(ctx, "   ", fn, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 10})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = e.ExplainInstance(ctx, "a b", fn, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 0})
	assert.Error(t, err)

	_, err = e.ExplainInstance(ctx, "a b", nil, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 10})
	assert.Error(t, err)

	short := func(texts []string) ([][]float64, error) { return [][]float64{{0.5, 0.5}}, nil }
	_, err = e.ExplainInstance(ctx, "a b", short, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 10})
	assert.Error(t, err)

	wide := NewTextExplainer([]string{"a", "b", "c"}, 1)
	_, err = wide.ExplainInstance(ctx, "a b", fn, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 10})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.ExplainInstance(cancelled, "a b", fn, Options{TopLabels: 1, NumFeatures: 5, NumSamples: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTopIndices(t *testing.T) {
	assert.Equal(t, []int{2, 0}, topIndices([]float64{0.3, 0.1, 0.6}, 2))
	assert.Equal(t, []int{0, 1}, topIndices([]float64{0.5, 0.5}, 5))
}

func roundRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = math.Round(v*1e9) / 1e9
	}
	return out
}
