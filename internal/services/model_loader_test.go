package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ranker/internal/apperr"
)

func TestLoadModel(t *testing.T) {
	dir := writeArtifactDir(t, testArtifacts())

	model, err := LoadModel(dir)
	require.NoError(t, err)

	info := model.Info()
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, FeatureDims, info.FeatureDims)
	assert.Equal(t, NumCategories, info.Categories)
	assert.Equal(t, SkillDims, info.SkillTerms)
	assert.Equal(t, len(testVocabulary), info.LexicalTerms)
	assert.Equal(t, dir, info.ArtifactDir)

	categories := model.Categories()
	require.Len(t, categories, NumCategories)
	assert.Equal(t, "Python Developer", categories[0])

	categories[0] = "mutated"
	assert.Equal(t, "Python Developer", model.Categories()[0])
}

func TestLoadModelMissingDirectory(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeModelNotLoaded, apperr.CodeOf(err))
}

func TestLoadModelManifestDimensionMismatch(t *testing.T) {
	dir := writeArtifactDir(t, testArtifacts())
	manifest := `version = "x"
lexical_dims = 200
skill_dims = 700
stats_dims = 4
categories = 57
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte(manifest), 0o644))

	_, err := LoadModel(dir)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeModelNotLoaded, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "dimensions")
}

func TestLoadModelRejectsShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifacts)
	}{
		{"too few labels", func(a *Artifacts) { a.Labels = a.Labels[:NumCategories-1] }},
		{"duplicate label", func(a *Artifacts) { a.Labels[1] = a.Labels[0] }},
		{"short coefficient row", func(a *Artifacts) { a.Coefficients[3] = a.Coefficients[3][:10] }},
		{"too few skills", func(a *Artifacts) { a.Skills = a.Skills[:SkillDims-1] }},
		{"duplicate skill", func(a *Artifacts) { a.Skills[5] = "PYTHON" }},
		{"vocabulary index out of range", func(a *Artifacts) { a.Vocabulary["overflow"] = LexicalDims }},
		{"vocabulary term not case folded", func(a *Artifacts) { a.Vocabulary["Golang"] = 100 }},
		{"vocabulary term split by tokenizer", func(a *Artifacts) { a.Vocabulary["ci-cd"] = 100 }},
		{"vocabulary term longer than ngram_max", func(a *Artifacts) { a.Vocabulary["rest api"] = 100 }},
		{"vocabulary trigram", func(a *Artifacts) {
			a.NGramMax = 2
			a.Vocabulary["deep machine learning"] = 100
		}},
		{"vocabulary term without word characters", func(a *Artifacts) { a.Vocabulary["--"] = 100 }},
		{"vocabulary index collision", func(a *Artifacts) { a.Vocabulary["golang"] = 0 }},
		{"short scaler", func(a *Artifacts) { a.Mean = a.Mean[:FeatureDims-1] }},
		{"short idf", func(a *Artifacts) { a.IDF = a.IDF[:LexicalDims-1] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifacts()
			tt.mutate(&a)

			_, err := LoadModel(writeArtifactDir(t, a))
			require.Error(t, err)
			assert.Equal(t, apperr.CodeModelNotLoaded, apperr.CodeOf(err))
		})
	}
}

func TestNewModelRejectsNonFinite(t *testing.T) {
	a := testArtifacts()
	a.Coefficients[0][0] = math.NaN()

	_, err := NewModel(a)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeModelNotLoaded, apperr.CodeOf(err))

	a = testArtifacts()
	a.Intercepts[2] = math.Inf(1)
	_, err = NewModel(a)
	require.Error(t, err)
}

func TestNewModelRejectsUnnormalizedVocabulary(t *testing.T) {
	a := testArtifacts()
	a.Vocabulary = map[string]int{"Python": 0, "Django": 1}

	_, err := NewModel(a)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeModelNotLoaded, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "not normalized")
}

func TestNewModelCopiesArtifacts(t *testing.T) {
	a := testArtifacts()
	model, err := NewModel(a)
	require.NoError(t, err)
	b := NewFeatureBuilder(model)
	c := NewClassifier(model)

	text := "python django developer"
	wantVec := b.Build(text)
	wantResult, err := c.Classify(wantVec)
	require.NoError(t, err)

	a.Vocabulary["python"] = 150
	a.IDF[0] = 9
	a.Coefficients[0][0] = 42
	a.Intercepts[1] = 7
	a.Skills[0] = "cobol"

	gotVec := b.Build(text)
	assert.Equal(t, wantVec, gotVec)
	gotResult, err := c.Classify(gotVec)
	require.NoError(t, err)
	assert.Equal(t, wantResult, gotResult)
}
