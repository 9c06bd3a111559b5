package explainer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionCacheScoresEachTextOnce(t *testing.T) {
	var calls [][]string
	predict := func(texts []string) ([][]float64, error) {
		calls = append(calls, append([]string(nil), texts...))
		out := make([][]float64, len(texts))
		for i, text := range texts {
			out[i] = []float64{float64(len(text)), 1}
		}
		return out, nil
	}
	c := newPredictionCache()
	fn := c.wrap("svm", predict)

	got, err := fn([]string{"ab", "abc", "ab"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {3, 1}, {2, 1}}, got)
	assert.Equal(t, [][]string{{"ab", "abc"}}, calls)

	got, err = fn([]string{"abc", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 1}, {4, 1}}, got)
	assert.Equal(t, []string{"abcd"}, calls[1])

	hits, misses := c.stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 3, misses)

	got[0][0] = 99
	again, err := fn([]string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, again[0][0])
}

func TestPredictionCacheKeysByMethod(t *testing.T) {
	assert.NotEqual(t, cacheKey("text", "svm"), cacheKey("text", "logistic"))
	assert.Len(t, cacheKey("text", "svm"), 40)
}

func TestPredictionCacheErrors(t *testing.T) {
	c := newPredictionCache()
	boom := errors.New("boom")
	_, err := c.wrap("m", func([]string) ([][]float64, error) { return nil, boom })([]string{"x"})
	assert.Equal(t, boom, err)

	_, err = c.wrap("m", func([]string) ([][]float64, error) { return nil, nil })([]string{"x"})
	assert.Error(t, err)
}
