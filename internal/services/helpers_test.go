package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

var testVocabulary = []string{
	"python", "django", "developer", "java", "spring", "data", "sql", "design",
	"graphic", "photoshop", "api", "rest", "machine", "learning", "experience",
}

var namedTestSkills = []string{
	"python", "django", "java", "spring boot", "machine learning",
	"sql", "c++", "node.js", "photoshop", "docker",
}

var namedTestLabels = []string{"Python Developer", "Java Developer", "Designer"}

func testSkills() []string {
	skills := append([]string(nil), namedTestSkills...)
	for i := len(skills); i < SkillDims; i++ {
		skills = append(skills, fmt.Sprintf("skill%03d", i))
	}
	return skills
}

func testLabels() []string {
	labels := append([]string(nil), namedTestLabels...)
	for i := len(labels); i < NumCategories; i++ {
		labels = append(labels, fmt.Sprintf("Category %02d", i))
	}
	return labels
}

func skillIndex(t *testing.T, skill string) int {
	t.Helper()
	for i, s := range namedTestSkills {
		if s == skill {
			return LexicalDims + i
		}
	}
	t.Fatalf("unknown test skill %q", skill)
	return -1
}

// testArtifacts returns a valid model with all-zero weights, so every
// category is equally likely.
func testArtifacts() Artifacts {
	vocab := make(map[string]int, len(testVocabulary))
	for i, term := range testVocabulary {
		vocab[term] = i
	}
	idf := make([]float64, LexicalDims)
	for i := range idf {
		idf[i] = 1
	}
	scale := make([]float64, FeatureDims)
	for i := range scale {
		scale[i] = 1
	}
	coef := make([][]float64, NumCategories)
	for i := range coef {
		coef[i] = make([]float64, FeatureDims)
	}
	return Artifacts{
		Version:      "test",
		Vocabulary:   vocab,
		IDF:          idf,
		NGramMax:     1,
		Mean:         make([]float64, FeatureDims),
		Scale:        scale,
		Labels:       testLabels(),
		Coefficients: coef,
		Intercepts:   make([]float64, NumCategories),
		Skills:       testSkills(),
	}
}

// newTestModel builds a model whose "Python Developer", "Java Developer" and
// "Designer" rows react to python, java and photoshop skills.
func newTestModel(t *testing.T, mutate ...func(*Artifacts)) *Model {
	t.Helper()
	a := testArtifacts()
	a.Coefficients[0][skillIndex(t, "python")] = 5
	a.Coefficients[0][skillIndex(t, "django")] = 2
	a.Coefficients[1][skillIndex(t, "java")] = 5
	a.Coefficients[2][skillIndex(t, "photoshop")] = 5
	for _, m := range mutate {
		m(&a)
	}
	model, err := NewModel(a)
	require.NoError(t, err)
	return model
}

// writeArtifactDir writes a into a temporary artifact directory.
func writeArtifactDir(t *testing.T, a Artifacts) string {
	t.Helper()
	dir := t.TempDir()

	manifest := fmt.Sprintf(`version = %q
lexical_dims = %d
skill_dims = %d
stats_dims = %d
categories = %d

[files]
vectorizer = "vectorizer.json"
scaler = "scaler.json"
classifier = "classifier.json"
skills = "skills.txt"
`, a.Version, LexicalDims, SkillDims, StatsDims, NumCategories)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte(manifest), 0o644))

	writeJSON := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	writeJSON("vectorizer.json", vectorizerFile{
		Vocabulary: a.Vocabulary, IDF: a.IDF, NGramMax: a.NGramMax, SublinearTF: a.SublinearTF,
	})
	writeJSON("scaler.json", scalerFile{Mean: a.Mean, Scale: a.Scale})
	writeJSON("classifier.json", classifierFile{
		Labels: a.Labels, Coefficients: a.Coefficients, Intercepts: a.Intercepts,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills.txt"),
		[]byte(strings.Join(a.Skills, "\n")+"\n"), 0o644))

	return dir
}

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	return buildZip(t,
		zipEntry{name: "[Content_Types].xml", data: []byte(`<Types/>`)},
		zipEntry{name: docxBodyPart, data: []byte(body.String())},
	)
}

// pngHeader is enough of a PNG for format sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
