package explainer

import (
	"github.com/pkg/errors"

	"yashubustudio/explainer/internal/linear"
)

// Classifier trains a pipeline on its dataset and scores texts with it.
type Classifier interface {
	// Train fits and returns a fresh pipeline.
	Train() (*Pipeline, error)
	// Predict returns an N×K probability matrix, columns in Classes order.
	Predict(texts []string) ([][]float64, error)
	// Fitted returns the pipeline Predict uses, fitting it on first use.
	Fitted() (*Pipeline, error)
	Classes() []int
}

// ClassifierOptions tunes classifier construction.
type ClassifierOptions struct {
	// Seed drives the SGD shuffling. Zero means 42.
	Seed int64
	// RetrainEachCall fits a new pipeline on every Predict call instead of
	// reusing the first one.
	RetrainEachCall bool
}

// NewClassifier returns the classifier implementation for kind.
func NewClassifier(kind Kind, ds *Dataset, opts ClassifierOptions) (Classifier, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("classifier: dataset is empty")
	}
	if opts.Seed == 0 {
		opts.Seed = defaultSeed
	}
	switch kind {
	case KindLogistic:
		return &LogisticClassifier{trainer{data: ds, opts: opts}}, nil
	case KindSVM:
		return &SVMClassifier{trainer{data: ds, opts: opts}}, nil
	default:
		return nil, errors.Errorf("classifier: unsupported kind %d", int(kind))
	}
}

// LogisticClassifier wraps multinomial logistic regression.
type LogisticClassifier struct {
	trainer
}

// Train fits a logistic pipeline.
func (c *LogisticClassifier) Train() (*Pipeline, error) {
	return c.train(c.model)
}

// Predict scores texts with the cached (or a fresh) logistic pipeline.
func (c *LogisticClassifier) Predict(texts []string) ([][]float64, error) {
	return c.predict(c.model, texts)
}

// Fitted returns the cached logistic pipeline.
func (c *LogisticClassifier) Fitted() (*Pipeline, error) {
	return c.ensure(c.model)
}

func (c *LogisticClassifier) model() linear.Model {
	return linear.NewLogisticRegression()
}

// SVMClassifier wraps the SGD-trained linear SVM.
type SVMClassifier struct {
	trainer
}

// Train fits an SVM pipeline.
func (c *SVMClassifier) Train() (*Pipeline, error) {
	return c.train(c.model)
}

// Predict scores texts with the cached (or a fresh) SVM pipeline.
func (c *SVMClassifier) Predict(texts []string) ([][]float64, error) {
	return c.predict(c.model, texts)
}

// Fitted returns the cached SVM pipeline.
func (c *SVMClassifier) Fitted() (*Pipeline, error) {
	return c.ensure(c.model)
}

func (c *SVMClassifier) model() linear.Model {
	m := linear.NewSGDClassifier()
	m.Seed = c.opts.Seed
	return m
}

// trainer holds the dataset and at most one fitted pipeline.
type trainer struct {
	data   *Dataset
	opts   ClassifierOptions
	fitted *Pipeline
}

func (t *trainer) train(newModel func() linear.Model) (*Pipeline, error) {
	p := newPipeline(newModel())
	if err := p.Fit(t.data.Texts(), t.data.Labels()); err != nil {
		return nil, errors.Wrapf(err, "train on %d records", t.data.Len())
	}
	return p, nil
}

func (t *trainer) predict(newModel func() linear.Model, texts []string) ([][]float64, error) {
	if t.opts.RetrainEachCall {
		t.fitted = nil
	}
	p, err := t.ensure(newModel)
	if err != nil {
		return nil, err
	}
	return p.PredictProba(texts)
}

func (t *trainer) ensure(newModel func() linear.Model) (*Pipeline, error) {
	if t.fitted != nil {
		return t.fitted, nil
	}
	p, err := t.train(newModel)
	if err != nil {
		return nil, err
	}
	t.fitted = p
	return p, nil
}

// Classes returns the dataset's categories in ascending order.
func (t *trainer) Classes() []int {
	return t.data.Categories.Values()
}
