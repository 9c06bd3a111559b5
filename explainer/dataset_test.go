package explainer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset("testdata/sst_small.txt")
	require.NoError(t, err)

	assert.Equal(t, 30, ds.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ds.Categories.Values())
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ds.Categories.Names())
	assert.Equal(t, 1, ds.Records[0].Truth)
	assert.Equal(t, "a horrible , dreadful mess of a movie .", ds.Records[0].Text)
	assert.Len(t, ds.Texts(), 30)
	assert.Equal(t, 5, ds.Labels()[29])
}

func TestReadDatasetStripsPrefix(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader("__label__3\tfine\n__label__5\tgreat \"quoted\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, ds.Labels())
	assert.Equal(t, `great "quoted`, ds.Records[1].Text)
}

func TestReadDatasetKeepsLeadingQuotes(t *testing.T) {
	input := "__label__4\t\" Extreme Ops \" exceeds expectations .\n" +
		"__label__2\tdull and tired .\r\n" +
		"\n" +
		"__label__5\ta joy .\n"
	ds, err := ReadDataset(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []int{4, 2, 5}, ds.Labels())
	assert.Equal(t, `" Extreme Ops " exceeds expectations .`, ds.Records[0].Text)
	assert.Equal(t, "dull and tired .", ds.Records[1].Text)
	assert.Equal(t, "a joy .", ds.Records[2].Text)
}

func TestReadDatasetColumnCount(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("__label__1\tok\n__label__2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadDataset(strings.NewReader("__label__1\ta\tb\n"))
	assert.Error(t, err)
}

func TestCategoriesCast(t *testing.T) {
	cats := NewCategories([]int{3, 1, 3, 5})
	assert.Equal(t, []int{1, 3, 5}, cats.Values())

	v, err := cats.Cast(3)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = cats.Cast(2)
	assert.True(t, errors.Is(err, ErrUnknownLabel))

	idx, err := cats.Index(5)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestLoadDatasetErrors(t *testing.T) {
	cases := map[string]string{
		"missing":     "testdata/does_not_exist.txt",
		"bad label":   "testdata/bad_label.txt",
		"bad columns": "testdata/bad_columns.txt",
		"empty":       "testdata/empty.txt",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDataset(path)
			require.Error(t, err)
			if name != "missing" {
				assert.Contains(t, err.Error(), path)
			}
		})
	}

	_, err := LoadDataset("testdata/bad_label.txt")
	assert.Contains(t, err.Error(), "line 2")
}
