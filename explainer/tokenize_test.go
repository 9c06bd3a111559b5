package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"It's not horrible, just horribly mediocre.", "It 's not horrible , just horribly mediocre ."},
		{"The cast is uniformly excellent... but the film itself is merely mildly charming.",
			"The cast is uniformly excellent ... but the film itself is merely mildly charming ."},
		{"Don't stop", "Do n't stop"},
		{"I can't believe it", "I ca n't believe it"},
		{"Cannot wait", "Can not wait"},
		{"Mr. Smith's well-known film (2002).", "Mr. Smith 's well - known film ( 2002 ) ."},
		{"U.S. films", "U.S. films"},
		{"Wow!!", "Wow ! !"},
		{`"Great" movie`, `" Great " movie`},
		{"NASA.", "NASA ."},
		{"Nice…", "Nice ..."},
		{"excellent--but", "excellent -- but"},
		{"you're  here\n", "you 're here"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Tokenize(tc.in), "input %q", tc.in)
	}
}

func TestTokenizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"It 's not horrible , just horribly mediocre .",
		"The cast is uniformly excellent ... but the film itself is merely mildly charming .",
		"Mr. Smith's well-known film (2002).",
		"I can't, won't and shan't!",
		"dogs' toys cost $5.",
		"...and then U.S. audiences left",
	}
	for _, in := range inputs {
		once := Tokenize(in)
		assert.Equal(t, once, Tokenize(once), "input %q", in)
	}
	// Already tokenized samples come back unchanged.
	assert.Equal(t, inputs[0], Tokenize(inputs[0]))
	assert.Equal(t, inputs[1], Tokenize(inputs[1]))
}

func TestSentences(t *testing.T) {
	got := Sentences(`Great film. I loved it! He said "wow." Then left`)
	assert.Equal(t, [][]string{
		{"Great", "film", "."},
		{"I", "loved", "it", "!"},
		{"He", "said", `"`, "wow", ".", `"`},
		{"Then", "left"},
	}, got)
	assert.Empty(t, Sentences("   "))
}
