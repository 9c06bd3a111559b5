package explainer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/explainer/internal/lime"
)

func sampleExplanation() *lime.Explanation {
	return &lime.Explanation{
		Text:         "not <b>bad</b> at all",
		Words:        []string{"not", "<b>bad</b>", "at", "all"},
		ClassNames:   []string{"1", "2", "3", "4", "5"},
		PredictProba: []float64{0.1, 0.1, 0.2, 0.5, 0.1},
		TopLabels:    []int{3},
		Local: map[int]*lime.LabelExplanation{
			3: {
				Label:     3,
				Intercept: 0.3,
				Score:     0.8,
				LocalPred: 0.48,
				Weights: []lime.FeatureWeight{
					{Feature: 0, Word: "not", Weight: 0.2},
					{Feature: 1, Word: "<b>bad</b>", Weight: -0.1},
				},
			},
		},
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	err := RenderReport(&buf, ReportData{
		Method:      Method{Name: "logistic", DisplayName: "Logistic Regression"},
		Explanation: sampleExplanation(),
		RunID:       "run-1",
		NumSamples:  50,
		Seed:        42,
		Generated:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "</html>")
	assert.Contains(t, out, "<title>Logistic Regression explanation (logistic)</title>")
	assert.Contains(t, out, "Contributions to class 4")
	assert.Contains(t, out, "0.2000")
	assert.Contains(t, out, "-0.1000")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "2024-01-02T03:04:05Z")
	assert.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, out, "<b>bad</b>")
	assert.Contains(t, out, "rgba(76, 154, 90, 0.80)")
}

func TestRenderReportNeedsExplanation(t *testing.T) {
	assert.Error(t, RenderReport(&bytes.Buffer{}, ReportData{}))
	assert.Error(t, RenderReport(&bytes.Buffer{}, ReportData{Explanation: &lime.Explanation{}}))
}

func TestWriteReportOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "1-explanation-svm.html")
	require.NoError(t, writeFileAtomic(path, []byte("old")))

	data := ReportData{Method: Method{Name: "svm", DisplayName: "Support Vector Machine"}, Explanation: sampleExplanation()}
	require.NoError(t, WriteReport(path, data))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Support Vector Machine")
	assert.NoFileExists(t, path+".tmp")
}
