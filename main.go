// Command explainer trains sentiment classifiers on SST data and writes one
// LIME explanation report per (sample, method) pair.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"yashubustudio/explainer/explainer"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newApp(opts *cliOptions, choices []string, stderr io.Writer) *kingpin.Application {
	app := kingpin.New("explainer", "Explain fine-grained sentiment predictions with LIME.")
	app.Writer(stderr)
	app.HelpFlag.Short('h')

	methodListVar(app.Flag("method",
		fmt.Sprintf("Enter one or more methods (choose from: %s). Repeat the flag, separate with commas or list them after -m.", strings.Join(choices, ", "))).
		Short('m').Required().Envar(envName("method")), &opts.methods)
	methodListVar(app.Arg("methods", "More methods, as in -m logistic svm."), &opts.moreMethods)
	app.Flag("num_samples", "Number of samples for the explainer instance (default 1000).").
		Short('n').Envar(envName("num_samples")).IntVar(&opts.numSamples)
	app.Flag("config", "Path to config.json (default: ./config.json).").
		Envar(envName("config")).StringVar(&opts.configPath)
	app.Flag("data", "Training TSV used by every method.").
		Envar(envName("data")).StringVar(&opts.dataFile)
	app.Flag("output-dir", "Directory for the HTML reports (default: current directory).").
		Envar(envName("output-dir")).StringVar(&opts.outputDir)
	app.Flag("samples", "File with one sentence per line to explain instead of the built-in samples.").
		Envar(envName("samples")).StringVar(&opts.samplesFile)
	app.Flag("seed", "Random seed for sampling and SGD (default 42).").
		Envar(envName("seed")).Int64Var(&opts.seed)
	app.Flag("retrain", "Fit a new model for every batch of perturbed texts.").
		Envar(envName("retrain")).BoolVar(&opts.retrain)
	app.Flag("log", "Log level: debug, info, warn, error.").
		Envar(envName("log")).StringVar(&opts.logLevel)
	return app
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	choices := explainer.DefaultRegistry("").Names()
	var opts cliOptions
	app := newApp(&opts, choices, stderr)
	if _, err := app.Parse(args); err != nil {
		app.Errorf("%s, try --help", err)
		return exitUsage
	}

	opts.methods = append(opts.methods, opts.moreMethods...)

	fileCfg, err := explainer.LoadConfig(opts.configPath)
	if err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}
	cfg, err := opts.applyTo(fileCfg)
	if err != nil {
		app.Errorf("%s, try --help", err)
		return exitUsage
	}

	// Built once at startup; the service only reads it.
	registry := explainer.DefaultRegistry(cfg.DataFile)
	methods, err := registry.Resolve(opts.methods)
	if err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}

	logger := newLogger(stderr, cfg.LogLevel)
	samples, err := initialSamples(opts.samplesFile)
	if err != nil {
		logger.Errorf("explainer: %v", err)
		return exitError
	}

	service, err := explainer.NewService(cfg, registry, logger, stdout)
	if err != nil {
		logger.Errorf("explainer: %v", err)
		return exitError
	}
	logger.WithFields(logrus.Fields{
		"run_id":      service.RunID(),
		"methods":     opts.methods,
		"num_samples": cfg.NumSamples,
		"data":        cfg.DataFile,
		"output_dir":  cfg.OutputDir,
		"retrain":     cfg.RetrainEachCall,
	}).Debug("starting")

	if _, err := service.Run(ctx, methods, samples); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("explainer: interrupted")
			return exitError
		}
		logger.Errorf("explainer: %v", err)
		return exitError
	}
	return exitOK
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
