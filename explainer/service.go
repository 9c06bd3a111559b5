package explainer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yashubustudio/explainer/internal/lime"
)

// Service trains classifiers on demand and writes explanation reports.
type Service struct {
	cfg      Config
	registry *Registry
	logger   logrus.FieldLogger
	out      io.Writer
	runID    string

	datasets    map[string]*Dataset
	classifiers map[string]Classifier
	indexes     map[string]*sentenceIndex
	cache       *predictionCache
}

// NewService constructs a service. Progress lines go to out; diagnostics go
// to logger.
func NewService(cfg Config, registry *Registry, logger logrus.FieldLogger, out io.Writer) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if out == nil {
		out = io.Discard
	}
	cfg.ApplyDefaults()
	runID := uuid.NewString()
	return &Service{
		cfg:         cfg,
		registry:    registry,
		logger:      logger.WithField("run_id", runID),
		out:         out,
		runID:       runID,
		datasets:    make(map[string]*Dataset),
		classifiers: make(map[string]Classifier),
		indexes:     make(map[string]*sentenceIndex),
		cache:       newPredictionCache(),
	}, nil
}

// RunID identifies this service instance in logs and reports.
func (s *Service) RunID() string {
	return s.runID
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Registry returns the injected method table.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Dataset loads (once) the dataset at path.
func (s *Service) Dataset(path string) (*Dataset, error) {
	if ds, ok := s.datasets[path]; ok {
		return ds, nil
	}
	start := time.Now()
	ds, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"file":    path,
		"records": ds.Len(),
		"classes": ds.Categories.Values(),
		"elapsed": time.Since(start),
	}).Debug("dataset loaded")
	s.datasets[path] = ds
	return ds, nil
}

// Classifier returns the classifier for method, built once per service.
func (s *Service) Classifier(method Method) (Classifier, error) {
	if clf, ok := s.classifiers[method.Name]; ok {
		return clf, nil
	}
	ds, err := s.Dataset(method.TrainFile)
	if err != nil {
		return nil, err
	}
	clf, err := NewClassifier(method.Kind, ds, ClassifierOptions{
		Seed:            s.cfg.Seed,
		RetrainEachCall: s.cfg.RetrainEachCall,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "method %s", method.Name)
	}
	if !s.cfg.RetrainEachCall {
		start := time.Now()
		p, err := clf.Fitted()
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", method.Name)
		}
		s.logger.WithFields(logrus.Fields{
			"method":     method.Name,
			"vocabulary": p.NumFeatures(),
			"iterations": p.Iterations(),
			"elapsed":    time.Since(start),
		}).Debug("classifier fitted")
	}
	s.classifiers[method.Name] = clf
	return clf, nil
}

// Explain attributes the top predicted class of text to its tokens.
func (s *Service) Explain(ctx context.Context, method Method, text string) (*lime.Explanation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, lime.ErrEmptyText
	}
	if method.Lowercase {
		text = Lowercase(text)
	}
	clf, err := s.Classifier(method)
	if err != nil {
		return nil, err
	}
	ds, err := s.Dataset(method.TrainFile)
	if err != nil {
		return nil, err
	}

	predict := clf.Predict
	if !s.cfg.RetrainEachCall {
		predict = s.cache.wrap(method.Name, clf.Predict)
	}
	explainer := lime.NewTextExplainer(ds.Categories.Names(), s.cfg.Seed)
	explainer.KernelWidth = s.cfg.KernelWidth
	explainer.Split = strings.Fields

	exp, err := explainer.ExplainInstance(ctx, text, predict, lime.Options{
		TopLabels:   s.cfg.TopLabels,
		NumFeatures: s.cfg.NumFeatures,
		NumSamples:  s.cfg.NumSamples,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "explain with %s", method.Name)
	}
	return exp, nil
}

// Neighbors returns the k training sentences closest to text in the TF-IDF
// space of method's fitted pipeline.
func (s *Service) Neighbors(method Method, text string, k int) ([]Neighbor, error) {
	clf, err := s.Classifier(method)
	if err != nil {
		return nil, err
	}
	p, err := clf.Fitted()
	if err != nil {
		return nil, err
	}
	idx, ok := s.indexes[method.Name]
	if !ok {
		ds, err := s.Dataset(method.TrainFile)
		if err != nil {
			return nil, err
		}
		if idx, err = buildSentenceIndex(p, ds); err != nil {
			return nil, errors.Wrapf(err, "index %s", method.Name)
		}
		s.logger.WithFields(logrus.Fields{
			"method":    method.Name,
			"sentences": idx.Size(),
		}).Debug("sentence index built")
		s.indexes[method.Name] = idx
	}
	vecs, err := p.Vectorize([]string{text})
	if err != nil {
		return nil, err
	}
	return idx.Search(vecs[0], k), nil
}

// ReportPath is where the report of sample i (0-based) for method is written.
func (s *Service) ReportPath(i int, method string) string {
	return filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%d-explanation-%s.html", i+1, method))
}

// Run explains every sample with every method, methods outer, and returns
// the written report paths. It stops at the first error; reports already
// written are left in place.
func (s *Service) Run(ctx context.Context, methods []Method, samples []string) ([]string, error) {
	var written []string
	var durations stats.Float64Data
	for _, method := range methods {
		fmt.Fprintf(s.out, "Method: %s\n", strings.ToUpper(method.Name))
		for i, sample := range samples {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			text := Tokenize(sample)
			fmt.Fprintf(s.out, "Generating LIME explanation for example %d: `%s`\n", i+1, text)

			start := time.Now()
			exp, err := s.Explain(ctx, method, text)
			if err != nil {
				return written, err
			}
			var neighbors []Neighbor
			if s.cfg.Neighbors > 0 {
				if neighbors, err = s.Neighbors(method, exp.Text, s.cfg.Neighbors); err != nil {
					return written, err
				}
			}
			path := s.ReportPath(i, method.Name)
			err = WriteReport(path, ReportData{
				Method:      method,
				Explanation: exp,
				Neighbors:   neighbors,
				RunID:       s.runID,
				NumSamples:  s.cfg.NumSamples,
				Seed:        s.cfg.Seed,
				Generated:   time.Now(),
			})
			if err != nil {
				return written, errors.Wrapf(err, "write %s", path)
			}
			elapsed := time.Since(start)
			durations = append(durations, elapsed.Seconds())
			written = append(written, path)

			label := exp.AvailableLabels()[0]
			s.logger.WithFields(logrus.Fields{
				"method":  method.Name,
				"sample":  i + 1,
				"label":   exp.ClassName(label),
				"file":    path,
				"elapsed": elapsed,
			}).Info("explanation written")
		}
	}
	s.logSummary(durations)
	return written, nil
}

// RunNames resolves names against the registry, then calls Run.
func (s *Service) RunNames(ctx context.Context, names []string, samples []string) ([]string, error) {
	methods, err := s.registry.Resolve(names)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, methods, samples)
}

func (s *Service) logSummary(durations stats.Float64Data) {
	if len(durations) == 0 {
		return
	}
	mean, _ := stats.Mean(durations)
	median, _ := stats.Median(durations)
	longest, _ := stats.Max(durations)
	hits, misses := s.cache.stats()
	s.logger.WithFields(logrus.Fields{
		"reports":      len(durations),
		"mean_sec":     fmt.Sprintf("%.3f", mean),
		"median_sec":   fmt.Sprintf("%.3f", median),
		"max_sec":      fmt.Sprintf("%.3f", longest),
		"cache_hits":   hits,
		"cache_misses": misses,
	}).Info("run finished")
}
