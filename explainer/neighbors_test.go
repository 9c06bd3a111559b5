package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/explainer/internal/textvec"
)

func TestSentenceIndexSearch(t *testing.T) {
	idx := newSentenceIndex()
	idx.Replace([]indexedSentence{
		{text: "a", label: 1, vec: textvec.Vector{Indices: []int{0}, Values: []float64{1}}},
		{text: "b", label: 2, vec: textvec.Vector{Indices: []int{0, 1}, Values: []float64{1, 1}}},
		{text: "c", label: 3, vec: textvec.Vector{Indices: []int{2}, Values: []float64{1}}},
	})
	assert.Equal(t, 3, idx.Size())

	hits := idx.Search(textvec.Vector{Indices: []int{0}, Values: []float64{2}}, 5)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Text)
	assert.InDelta(t, 1, hits[0].Score, 1e-12)
	assert.Equal(t, 2, hits[1].Label)

	assert.Nil(t, idx.Search(textvec.Vector{}, 3))
	assert.Len(t, idx.Search(textvec.Vector{Indices: []int{0}, Values: []float64{1}}, 1), 1)
}

func TestServiceNeighbors(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	m, err := svc.Registry().Lookup("logistic")
	require.NoError(t, err)

	hits, err := svc.Neighbors(m, "an excellent , brilliant masterpiece", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 5, hits[0].Label)
	assert.Equal(t, "an excellent , brilliant masterpiece .", hits[0].Text)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}
