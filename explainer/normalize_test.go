package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "ABC film", NormalizeText("  ＡＢＣ film\u0007 "))
	assert.Equal(t, "a\tb", NormalizeText("a\tb"))
}

func TestNormalizeSentences(t *testing.T) {
	got := NormalizeSentences([]string{"  A   wonderful\tfilm. ", "", " \u0007 ", "ｆｉｎｅ"})
	assert.Equal(t, []string{"A wonderful film.", "fine"}, got)
}

func TestLowercase(t *testing.T) {
	assert.Equal(t, "an excellent film", Lowercase("An EXCELLENT Film"))
}
