package services

import (
	"fmt"
	"math"
	"sort"

	"alfredoptarigan/resume-ranker/internal/models"
)

// ClassificationResult is a probability distribution over all categories,
// ordered by descending probability with ties kept in label order.
type ClassificationResult struct {
	Probabilities []models.CategoryProbability
	TopCategory   string
	Confidence    float64
}

// Top returns the n most probable categories.
func (r ClassificationResult) Top(n int) models.TopCategories {
	if n > len(r.Probabilities) {
		n = len(r.Probabilities)
	}
	if n < 0 {
		n = 0
	}
	out := make(models.TopCategories, n)
	copy(out, r.Probabilities[:n])
	return out
}

// Probability returns the probability assigned to label, or 0 if unknown.
func (r ClassificationResult) Probability(label string) float64 {
	for _, p := range r.Probabilities {
		if p.Category == label {
			return p.Probability
		}
	}
	return 0
}

type Classifier interface {
	Classify(vec FeatureVector) (ClassificationResult, error)
	Categories() []string
	Info() models.ModelInfo
}

type classifier struct {
	model *Model
}

func NewClassifier(model *Model) Classifier {
	return &classifier{model: model}
}

func (c *classifier) Categories() []string { return c.model.Categories() }

func (c *classifier) Info() models.ModelInfo { return c.model.Info() }

// Classify scales the vector and applies softmax(W·x + b). The only error is a
// vector of the wrong length.
func (c *classifier) Classify(vec FeatureVector) (ClassificationResult, error) {
	if len(vec) != FeatureDims {
		return ClassificationResult{}, fmt.Errorf("feature vector has %d entries, want %d", len(vec), FeatureDims)
	}

	x := c.model.scaler.transform(vec)
	logits := make([]float64, len(c.model.labels))
	for k, row := range c.model.coef {
		z := c.model.intercept[k]
		for i, w := range row {
			z += w * x[i]
		}
		logits[k] = z
	}
	probs := softmax(logits)

	dist := make([]models.CategoryProbability, len(probs))
	for k, p := range probs {
		dist[k] = models.CategoryProbability{Category: c.model.labels[k], Probability: p}
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Probability > dist[j].Probability
	})

	return ClassificationResult{
		Probabilities: dist,
		TopCategory:   dist[0].Category,
		Confidence:    dist[0].Probability,
	}, nil
}

// softmax subtracts the max logit before exponentiating.
func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, z := range logits {
		if z > maxLogit {
			maxLogit = z
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Scaler standardizes features as (x - mean) / scale.
type Scaler struct {
	mean  []float64
	scale []float64
}

func newScaler(mean, scale []float64) *Scaler {
	s := &Scaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}
	for i, v := range s.scale {
		if v == 0 {
			s.scale[i] = 1
		}
	}
	return s
}

func (s *Scaler) transform(vec FeatureVector) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out
}
