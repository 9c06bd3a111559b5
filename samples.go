package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"yashubustudio/explainer/explainer"
)

// builtinSamples are explained when no --samples file is given.
var builtinSamples = []string{
	"It 's not horrible , just horribly mediocre .",
	"The cast is uniformly excellent ... but the film itself is merely mildly charming .",
}

func initialSamples(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return append([]string(nil), builtinSamples...), nil
	}
	return loadSampleFile(path)
}

// loadSampleFile reads one sentence per non-empty line. Duplicates are dropped.
func loadSampleFile(path string) ([]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read samples")
	}
	samples := uniqueNormalized(strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"))
	if len(samples) == 0 {
		return nil, errors.Errorf("no samples found in %s", filepath.Clean(path))
	}
	return samples, nil
}

func uniqueNormalized(lines []string) []string {
	seen := make(map[string]struct{})
	res := make([]string, 0, len(lines))
	for _, normed := range explainer.NormalizeSentences(lines) {
		if _, ok := seen[normed]; ok {
			continue
		}
		seen[normed] = struct{}{}
		res = append(res, normed)
	}
	return res
}
