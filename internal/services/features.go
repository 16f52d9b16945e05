package services

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Fixed layout of the feature vector consumed by the classifier.
const (
	LexicalDims   = 200
	SkillDims     = 717
	StatsDims     = 4
	FeatureDims   = LexicalDims + SkillDims + StatsDims
	NumCategories = 57
)

// FeatureVector is the raw (unscaled) numeric encoding of one resume.
type FeatureVector []float64

// Lexical returns the TF-IDF segment.
func (v FeatureVector) Lexical() []float64 { return v[:LexicalDims] }

// Skills returns the skill presence segment.
func (v FeatureVector) Skills() []float64 { return v[LexicalDims : LexicalDims+SkillDims] }

// Stats returns the text statistics segment.
func (v FeatureVector) Stats() []float64 { return v[LexicalDims+SkillDims:] }

type FeatureBuilder interface {
	Build(text string) FeatureVector
}

type featureBuilder struct {
	vectorizer *Vectorizer
	skills     *SkillVocabulary
}

func NewFeatureBuilder(model *Model) FeatureBuilder {
	return &featureBuilder{
		vectorizer: model.vectorizer,
		skills:     model.skills,
	}
}

// Build is deterministic and never fails; empty text yields an all-zero vector.
func (b *featureBuilder) Build(text string) FeatureVector {
	vec := make(FeatureVector, FeatureDims)
	tokens := tokenize(text)

	b.vectorizer.transform(tokens, vec.Lexical())
	b.skills.presence(tokens, vec.Skills())
	textStatistics(text, vec.Stats())

	return vec
}

// Vectorizer computes TF-IDF weights over a fixed vocabulary.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	ngramMax    int
	sublinearTF bool
}

// transform writes L2-normalized TF-IDF weights into out. Weights and the
// norm are accumulated in column order so equal input gives equal bits.
func (v *Vectorizer) transform(tokens []string, out []float64) {
	var counts [LexicalDims]float64
	matched := false
	for i := range tokens {
		for n := 1; n <= v.ngramMax && i+n <= len(tokens); n++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.vocabulary[term]; ok {
				counts[idx]++
				matched = true
			}
		}
	}
	if !matched {
		return
	}

	var norm float64
	for idx, tf := range counts {
		if tf == 0 {
			continue
		}
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.idf[idx]
		out[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for idx := range out {
		out[idx] /= norm
	}
}

// SkillVocabulary is the ordered list of skill terms used for presence flags.
type SkillVocabulary struct {
	terms     []string
	phrases   []string
	maxTokens int
}

func newSkillVocabulary(terms []string) *SkillVocabulary {
	sv := &SkillVocabulary{
		terms:     terms,
		phrases:   make([]string, len(terms)),
		maxTokens: 1,
	}
	for i, term := range terms {
		key, n := phraseKey(term)
		sv.phrases[i] = key
		if n > sv.maxTokens {
			sv.maxTokens = n
		}
	}
	return sv
}

// Terms returns the skill terms in feature order.
func (s *SkillVocabulary) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

func (s *SkillVocabulary) presence(tokens []string, out []float64) {
	if len(tokens) == 0 {
		return
	}
	grams := ngramSet(tokens, s.maxTokens)
	for i, phrase := range s.phrases {
		if phrase == "" {
			continue
		}
		if _, ok := grams[phrase]; ok {
			out[i] = 1
		}
	}
}

// textStatistics fills [rune count, word count, avg word length, unique ratio].
func textStatistics(text string, out []float64) {
	words := strings.Fields(text)
	out[0] = float64(utf8.RuneCountInString(text))
	out[1] = float64(len(words))
	if len(words) == 0 {
		out[0] = 0
		return
	}

	var runes int
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		runes += utf8.RuneCountInString(w)
		unique[strings.ToLower(w)] = struct{}{}
	}
	out[2] = float64(runes) / float64(len(words))
	out[3] = float64(len(unique)) / float64(len(words))
}
