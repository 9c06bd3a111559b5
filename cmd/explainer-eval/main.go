// Command explainer-eval trains the registered methods and scores them on a
// held-out SST file.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"yashubustudio/explainer/explainer"
)

type cliOptions struct {
	configPath string
	methods    []string
	dataFile   string
	evalFile   string
	outputPath string
	outputDir  string
	confusion  bool
	logLevel   string
}

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	_ = godotenv.Load()
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain maps flag and method-name mistakes to exitUsage, like the explainer
// command, and everything else to exitError.
func runMain(args []string, stdout, stderr io.Writer) int {
	logger := logrus.New()
	logger.SetOutput(stderr)

	opts, err := parseFlags(args, stderr)
	if err != nil {
		logger.Errorf("explainer-eval: %v, try --help", err)
		return exitUsage
	}
	if lvl, err := logrus.ParseLevel(opts.logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if err := run(opts, stdout, logger); err != nil {
		logger.Errorf("explainer-eval: %v", err)
		if errors.Is(err, explainer.ErrUnknownMethod) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	app := kingpin.New("explainer-eval", "Score sentiment methods on a labelled TSV.")
	app.Writer(stderr)
	app.Flag("method", "Methods to evaluate (default: all).").Short('m').
		Envar("EXPLAINER_METHOD").StringsVar(&opts.methods)
	app.Flag("config", "Path to config.json (default: ./config.json).").
		Envar("EXPLAINER_CONFIG").StringVar(&opts.configPath)
	app.Flag("data", "Training TSV (default from config).").
		Envar("EXPLAINER_DATA").StringVar(&opts.dataFile)
	app.Flag("eval", "Held-out TSV to score, e.g. data/sst/sst_dev.txt.").Required().
		Envar("EXPLAINER_EVAL").StringVar(&opts.evalFile)
	app.Flag("output", "CSV file for per-sentence predictions.").StringVar(&opts.outputPath)
	app.Flag("output-dir", "Directory for a timestamped predictions CSV when --output is omitted.").StringVar(&opts.outputDir)
	app.Flag("confusion", "Also print the confusion matrix.").BoolVar(&opts.confusion)
	app.Flag("log", "Log level: debug, info, warn, error.").Default("info").
		Envar("EXPLAINER_LOG").StringVar(&opts.logLevel)
	if _, err := app.Parse(args); err != nil {
		return opts, err
	}

	var methods []string
	for _, m := range opts.methods {
		for _, name := range strings.Split(m, ",") {
			if name = strings.TrimSpace(name); name != "" {
				methods = append(methods, name)
			}
		}
	}
	opts.methods = methods
	opts.evalFile = strings.TrimSpace(opts.evalFile)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)
	return opts, nil
}

func run(opts cliOptions, stdout io.Writer, logger logrus.FieldLogger) error {
	cfg, err := explainer.LoadConfig(opts.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if opts.dataFile != "" {
		cfg.DataFile = strings.TrimSpace(opts.dataFile)
	}
	registry := explainer.DefaultRegistry(cfg.DataFile)
	names := opts.methods
	if len(names) == 0 {
		names = registry.Names()
	}
	methods, err := registry.Resolve(names)
	if err != nil {
		return err
	}

	heldOut, err := explainer.LoadDataset(opts.evalFile)
	if err != nil {
		return errors.Wrap(err, "read held-out set")
	}
	service, err := explainer.NewService(cfg, registry, logger, stdout)
	if err != nil {
		return errors.Wrap(err, "init service")
	}

	var results []methodResult
	for _, m := range methods {
		start := time.Now()
		clf, err := service.Classifier(m)
		if err != nil {
			return err
		}
		metrics, err := explainer.Evaluate(clf, heldOut)
		if err != nil {
			return errors.Wrapf(err, "evaluate %s", m.Name)
		}
		logger.WithFields(logrus.Fields{
			"method":   m.Name,
			"accuracy": metrics.Accuracy,
			"elapsed":  time.Since(start),
		}).Info("evaluated")
		results = append(results, methodResult{method: m, classifier: clf, metrics: metrics})
	}

	printSummary(stdout, results)
	for _, res := range results {
		printClassTable(stdout, res)
		if opts.confusion {
			printConfusion(stdout, res)
		}
	}

	if opts.outputPath == "" && opts.outputDir == "" {
		return nil
	}
	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := writePredictionCSV(outputPath, heldOut, results); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Predictions saved to %s\n", outputPath)
	return nil
}

type methodResult struct {
	method     explainer.Method
	classifier explainer.Classifier
	metrics    *explainer.Metrics
}

func printSummary(w io.Writer, results []methodResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Method", "Name", "Accuracy", "Macro F1"})
	for _, res := range results {
		table.Append([]string{
			res.method.Name,
			res.method.DisplayName,
			formatScore(res.metrics.Accuracy),
			formatScore(res.metrics.MacroF1),
		})
	}
	table.Render()
}

func printClassTable(w io.Writer, res methodResult) {
	fmt.Fprintf(w, "\n%s\n", res.method.DisplayName)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Class", "Precision", "Recall", "F1", "Support"})
	total := 0
	for i, class := range res.metrics.Classes {
		total += res.metrics.Support[i]
		table.Append([]string{
			strconv.Itoa(class),
			formatScore(res.metrics.Precision[i]),
			formatScore(res.metrics.Recall[i]),
			formatScore(res.metrics.F1[i]),
			strconv.Itoa(res.metrics.Support[i]),
		})
	}
	table.SetFooter([]string{"macro", "", "", formatScore(res.metrics.MacroF1), strconv.Itoa(total)})
	table.Render()
}

func printConfusion(w io.Writer, res methodResult) {
	header := []string{"truth \\ pred"}
	for _, class := range res.metrics.Classes {
		header = append(header, strconv.Itoa(class))
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	for i, class := range res.metrics.Classes {
		row := []string{strconv.Itoa(class)}
		for _, n := range res.metrics.Confusion[i] {
			row = append(row, strconv.Itoa(n))
		}
		table.Append(row)
	}
	table.Render()
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", errors.Wrap(err, "resolve output path")
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", errors.Wrap(err, "create output directory")
		}
		return absPath, nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve output dir")
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	filename := fmt.Sprintf("predictions_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

// writePredictionCSV writes one row per held-out sentence with each method's
// predicted label and its probability.
func writePredictionCSV(path string, ds *explainer.Dataset, results []methodResult) error {
	texts := ds.Texts()
	columns := make([][]string, 0, 2*len(results))
	header := []string{"text", "truth"}
	for _, res := range results {
		probs, err := res.classifier.Predict(texts)
		if err != nil {
			return errors.Wrapf(err, "predict %s", res.method.Name)
		}
		classes := res.classifier.Classes()
		labels := make([]string, len(probs))
		scores := make([]string, len(probs))
		for i, row := range probs {
			best := 0
			for j := range row {
				if row[j] > row[best] {
					best = j
				}
			}
			labels[i] = strconv.Itoa(classes[best])
			scores[i] = formatScore(row[best])
		}
		header = append(header, res.method.Name, res.method.Name+"_prob")
		columns = append(columns, labels, scores)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create result file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, rec := range ds.Records {
		row := []string{rec.Text, strconv.Itoa(rec.Truth)}
		for _, col := range columns {
			row = append(row, col[i])
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush result")
	}
	return nil
}
