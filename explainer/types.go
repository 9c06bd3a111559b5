// Package explainer trains fine-grained sentiment classifiers from SST-style
// TSV files and explains their predictions token by token.
package explainer

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Kind selects the classifier strategy behind a method.
type Kind int

const (
	// KindLogistic is multinomial logistic regression over TF-IDF features.
	KindLogistic Kind = iota + 1
	// KindSVM is a linear SVM trained by SGD with the modified Huber loss.
	KindSVM
)

// String returns the config spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindLogistic:
		return "logistic"
	case KindSVM:
		return "svm"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logistic":
		return KindLogistic, nil
	case "svm":
		return KindSVM, nil
	}
	return 0, errors.Errorf("unknown classifier kind %q", s)
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "decode kind")
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Method describes one explainable classifier.
type Method struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	TrainFile   string `json:"trainFile"`
	DisplayName string `json:"displayName"`
	Lowercase   bool   `json:"lowercase"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	DataFile        string  `json:"dataFile"`
	OutputDir       string  `json:"outputDir"`
	NumSamples      int     `json:"numSamples"`
	NumFeatures     int     `json:"numFeatures"`
	TopLabels       int     `json:"topLabels"`
	KernelWidth     float64 `json:"kernelWidth"`
	Seed            int64   `json:"seed"`
	RetrainEachCall bool    `json:"retrainEachCall"`
	// Neighbors is the number of similar training sentences shown in a
	// report. Negative disables the section.
	Neighbors       int     `json:"neighbors"`
	LogLevel        string  `json:"logLevel"`
}

const (
	DefaultDataFile   = "data/sst/sst_train.txt"
	DefaultNumSamples = 1000
	defaultFeatures   = 20
	defaultSeed       = 42
)

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.NumSamples <= 0 {
		c.NumSamples = DefaultNumSamples
	}
	if c.NumFeatures <= 0 {
		c.NumFeatures = defaultFeatures
	}
	if c.TopLabels <= 0 {
		c.TopLabels = 1
	}
	if c.KernelWidth <= 0 {
		c.KernelWidth = 25
	}
	if c.Seed == 0 {
		c.Seed = defaultSeed
	}
	if c.Neighbors == 0 {
		c.Neighbors = 3
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
