package textvec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDropsShortTermsAndLowercases(t *testing.T) {
	c := NewCountVectorizer()
	got := c.Analyze("It 's not horrible , just HORRIBLY mediocre .")
	assert.Equal(t, []string{"it", "not", "horrible", "just", "horribly", "mediocre"}, got)
}

func TestAnalyzeKeepsUnicodeWords(t *testing.T) {
	c := NewCountVectorizer()
	assert.Equal(t, []string{"café", "naïve", "x_1"}, c.Analyze("Café naïve x_1 a"))
}

func TestFitAssignsAlphabeticalIndices(t *testing.T) {
	c := NewCountVectorizer()
	require.NoError(t, c.Fit([]string{"zebra apple", "mango apple"}))

	assert.Equal(t, 3, c.NumFeatures())
	assert.Equal(t, "apple", c.Term(0))
	assert.Equal(t, "mango", c.Term(1))
	assert.Equal(t, "zebra", c.Term(2))
	assert.Equal(t, "", c.Term(3))
}

func TestTransformCountsAndIgnoresUnknown(t *testing.T) {
	c := NewCountVectorizer()
	require.NoError(t, c.Fit([]string{"good good movie", "bad movie"}))

	rows, err := c.Transform([]string{"good movie good unseen"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	good, _ := c.Index("good")
	movie, _ := c.Index("movie")
	assert.Equal(t, []int{good, movie}, rows[0].Indices)
	assert.Equal(t, []float64{2, 1}, rows[0].Values)
}

func TestTransformBeforeFit(t *testing.T) {
	_, err := NewCountVectorizer().Transform([]string{"x"})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitRejectsEmptyVocabulary(t *testing.T) {
	assert.Error(t, NewCountVectorizer().Fit([]string{"a , b"}))
	assert.Error(t, NewCountVectorizer().Fit(nil))
}

func TestTfidfSmoothedIDFAndNormalisation(t *testing.T) {
	c := NewCountVectorizer()
	docs := []string{"good movie", "bad movie", "good plot"}
	counts, err := c.FitTransform(docs)
	require.NoError(t, err)

	var tf TfidfTransformer
	require.NoError(t, tf.Fit(counts, c.NumFeatures()))

	movie, _ := c.Index("movie")
	bad, _ := c.Index("bad")
	// n=3, df(movie)=2, df(bad)=1
	assert.InDelta(t, math.Log(4.0/3.0)+1, tf.IDF(movie), 1e-12)
	assert.InDelta(t, math.Log(4.0/2.0)+1, tf.IDF(bad), 1e-12)

	rows, err := tf.Transform(counts)
	require.NoError(t, err)
	for _, row := range rows {
		assert.InDelta(t, 1.0, row.Norm(), 1e-12)
	}
}

func TestTfidfKeepsEmptyRowsEmpty(t *testing.T) {
	var tf TfidfTransformer
	require.NoError(t, tf.Fit([]Vector{{Indices: []int{0}, Values: []float64{1}}}, 2))
	rows, err := tf.Transform([]Vector{{}})
	require.NoError(t, err)
	assert.Equal(t, 0, rows[0].Len())
}

func TestVectorDotAndAddTo(t *testing.T) {
	v := Vector{Indices: []int{0, 2}, Values: []float64{1, 3}}
	assert.Equal(t, 7.0, v.Dot([]float64{1, 5, 2}))

	dst := make([]float64, 3)
	v.AddTo(dst, 2)
	assert.Equal(t, []float64{2, 0, 6}, dst)
}

func TestCosine(t *testing.T) {
	a := Vector{Indices: []int{0, 2}, Values: []float64{1, 1}}
	b := Vector{Indices: []int{2, 5}, Values: []float64{1, 1}}
	assert.InDelta(t, 0.5, Cosine(a, b), 1e-12)
	assert.InDelta(t, 1, Cosine(a, a), 1e-12)
	assert.Equal(t, 0.0, Cosine(a, Vector{}))
}
