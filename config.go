package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yashubustudio/explainer/explainer"
)

const envPrefix = "EXPLAINER"

// cliOptions holds parsed flags. Zero values mean "not given" and leave the
// config file value in place.
type cliOptions struct {
	configPath  string
	methods     []string
	moreMethods []string
	numSamples  int
	dataFile    string
	outputDir   string
	samplesFile string
	seed        int64
	retrain     bool
	logLevel    string
}

func envName(flag string) string {
	return fmt.Sprintf("%s_%s", envPrefix, strings.ToUpper(strings.ReplaceAll(flag, "-", "_")))
}

// applyTo overlays the flags on cfg.
func (o cliOptions) applyTo(cfg explainer.Config) (explainer.Config, error) {
	if o.numSamples < 0 {
		return cfg, errors.Errorf("num_samples must be positive, got %d", o.numSamples)
	}
	if o.numSamples > 0 {
		cfg.NumSamples = o.numSamples
	}
	if s := strings.TrimSpace(o.dataFile); s != "" {
		cfg.DataFile = s
	}
	if s := strings.TrimSpace(o.outputDir); s != "" {
		cfg.OutputDir = s
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.retrain {
		cfg.RetrainEachCall = true
	}
	if s := strings.TrimSpace(o.logLevel); s != "" {
		cfg.LogLevel = s
	}
	return sanitizeConfig(cfg)
}

func sanitizeConfig(cfg explainer.Config) (explainer.Config, error) {
	cfg.ApplyDefaults()
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, errors.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.TopLabels > 5 {
		cfg.TopLabels = 5
	}
	return cfg, nil
}
