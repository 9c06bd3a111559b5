package explainer

import (
	"github.com/pkg/errors"

	"yashubustudio/explainer/internal/linear"
	"yashubustudio/explainer/internal/textvec"
)

// Pipeline chains word counting, TF-IDF weighting and a linear model.
type Pipeline struct {
	vect  *textvec.CountVectorizer
	tfidf *textvec.TfidfTransformer
	model linear.Model
}

func newPipeline(model linear.Model) *Pipeline {
	return &Pipeline{
		vect:  textvec.NewCountVectorizer(),
		tfidf: &textvec.TfidfTransformer{},
		model: model,
	}
}

// Fit learns the vocabulary, the IDF weights and the model.
func (p *Pipeline) Fit(texts []string, labels []int) error {
	if len(texts) != len(labels) {
		return errors.Errorf("fit pipeline: %d texts but %d labels", len(texts), len(labels))
	}
	counts, err := p.vect.FitTransform(texts)
	if err != nil {
		return errors.Wrap(err, "fit vectorizer")
	}
	if err := p.tfidf.Fit(counts, p.vect.NumFeatures()); err != nil {
		return errors.Wrap(err, "fit tfidf")
	}
	X, err := p.tfidf.Transform(counts)
	if err != nil {
		return errors.Wrap(err, "transform tfidf")
	}
	if err := p.model.Fit(X, labels, p.vect.NumFeatures()); err != nil {
		return errors.Wrap(err, "fit model")
	}
	return nil
}

// Vectorize maps texts to L2-normalised TF-IDF rows.
func (p *Pipeline) Vectorize(texts []string) ([]textvec.Vector, error) {
	counts, err := p.vect.Transform(texts)
	if err != nil {
		return nil, err
	}
	return p.tfidf.Transform(counts)
}

// PredictProba returns one probability row per text, columns in Classes order.
func (p *Pipeline) PredictProba(texts []string) ([][]float64, error) {
	X, err := p.Vectorize(texts)
	if err != nil {
		return nil, err
	}
	return p.model.PredictProba(X)
}

// Predict returns the most probable class label per text.
func (p *Pipeline) Predict(texts []string) ([]int, error) {
	probs, err := p.PredictProba(texts)
	if err != nil {
		return nil, err
	}
	classes := p.model.Classes()
	out := make([]int, len(probs))
	for i, row := range probs {
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = classes[best]
	}
	return out, nil
}

// Classes returns the label of each probability column.
func (p *Pipeline) Classes() []int {
	return p.model.Classes()
}

// Iterations reports how many optimiser iterations the model's fit used.
func (p *Pipeline) Iterations() int {
	return p.model.Iterations()
}

// NumFeatures reports the vocabulary size.
func (p *Pipeline) NumFeatures() int {
	return p.vect.NumFeatures()
}
