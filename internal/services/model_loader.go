package services

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/models"
)

const manifestFile = "manifest.toml"

// Manifest describes an artifact directory.
type Manifest struct {
	Version     string        `toml:"version"`
	LexicalDims int           `toml:"lexical_dims"`
	SkillDims   int           `toml:"skill_dims"`
	StatsDims   int           `toml:"stats_dims"`
	Categories  int           `toml:"categories"`
	Files       ManifestFiles `toml:"files"`
}

type ManifestFiles struct {
	Vectorizer string `toml:"vectorizer"`
	Scaler     string `toml:"scaler"`
	Classifier string `toml:"classifier"`
	Skills     string `toml:"skills"`
}

func defaultManifestFiles() ManifestFiles {
	return ManifestFiles{
		Vectorizer: "vectorizer.json",
		Scaler:     "scaler.json",
		Classifier: "classifier.json",
		Skills:     "skills.txt",
	}
}

type vectorizerFile struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NGramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
}

type scalerFile struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type classifierFile struct {
	Labels       []string    `json:"labels"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

// Artifacts is the in-memory content of an artifact directory.
type Artifacts struct {
	Version      string
	Vocabulary   map[string]int
	IDF          []float64
	NGramMax     int
	SublinearTF  bool
	Mean         []float64
	Scale        []float64
	Labels       []string
	Coefficients [][]float64
	Intercepts   []float64
	Skills       []string
}

// Model is the immutable, validated bundle of vectorizer, scaler, classifier
// weights and skill vocabulary. It is safe for concurrent use.
type Model struct {
	version    string
	dir        string
	loadedAt   time.Time
	labels     []string
	vectorizer *Vectorizer
	scaler     *Scaler
	skills     *SkillVocabulary
	coef       [][]float64
	intercept  []float64
}

// LoadModel reads and validates the artifact directory. Every failure is
// reported as MODEL_NOT_LOADED.
func LoadModel(dir string) (*Model, error) {
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	var vf vectorizerFile
	if err := readJSONArtifact(dir, manifest.Files.Vectorizer, &vf); err != nil {
		return nil, err
	}
	var sf scalerFile
	if err := readJSONArtifact(dir, manifest.Files.Scaler, &sf); err != nil {
		return nil, err
	}
	var cf classifierFile
	if err := readJSONArtifact(dir, manifest.Files.Classifier, &cf); err != nil {
		return nil, err
	}
	skills, err := readSkills(filepath.Join(dir, manifest.Files.Skills))
	if err != nil {
		return nil, err
	}

	model, err := NewModel(Artifacts{
		Version:      manifest.Version,
		Vocabulary:   vf.Vocabulary,
		IDF:          vf.IDF,
		NGramMax:     vf.NGramMax,
		SublinearTF:  vf.SublinearTF,
		Mean:         sf.Mean,
		Scale:        sf.Scale,
		Labels:       cf.Labels,
		Coefficients: cf.Coefficients,
		Intercepts:   cf.Intercepts,
		Skills:       skills,
	})
	if err != nil {
		return nil, err
	}
	model.dir = dir
	return model, nil
}

func readManifest(dir string) (*Manifest, error) {
	manifest := &Manifest{Files: defaultManifestFiles()}
	path := filepath.Join(dir, manifestFile)
	if _, err := toml.DecodeFile(path, manifest); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeModelNotLoaded, "failed to read "+manifestFile)
	}

	want := [4]int{LexicalDims, SkillDims, StatsDims, NumCategories}
	got := [4]int{manifest.LexicalDims, manifest.SkillDims, manifest.StatsDims, manifest.Categories}
	if got != want {
		return nil, apperr.Newf(apperr.CodeModelNotLoaded,
			"manifest dimensions %v do not match expected layout %v", got, want)
	}
	return manifest, nil
}

func readJSONArtifact(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return apperr.Wrap(err, apperr.CodeModelNotLoaded, "failed to read "+name)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(err, apperr.CodeModelNotLoaded, "failed to decode "+name)
	}
	return nil
}

func readSkills(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeModelNotLoaded, "failed to open skills list")
	}
	defer f.Close()

	var skills []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		skills = append(skills, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeModelNotLoaded, "failed to read skills list")
	}
	return skills, nil
}

// NewModel validates artifacts against the fixed feature layout.
func NewModel(a Artifacts) (*Model, error) {
	if err := validateArtifacts(a); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeModelNotLoaded, "invalid model artifacts")
	}

	ngramMax := a.NGramMax
	if ngramMax < 1 {
		ngramMax = 1
	}

	return &Model{
		version:  a.Version,
		loadedAt: time.Now().UTC(),
		labels:   append([]string(nil), a.Labels...),
		vectorizer: &Vectorizer{
			vocabulary:  maps.Clone(a.Vocabulary),
			idf:         slices.Clone(a.IDF),
			ngramMax:    ngramMax,
			sublinearTF: a.SublinearTF,
		},
		scaler:    newScaler(a.Mean, a.Scale),
		skills:    newSkillVocabulary(slices.Clone(a.Skills)),
		coef:      cloneRows(a.Coefficients),
		intercept: slices.Clone(a.Intercepts),
	}, nil
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// validateVocabulary requires every term to be in tokenizer form, within
// ngram_max tokens, and mapped to its own column.
func validateVocabulary(vocab map[string]int, ngramMax int) error {
	if ngramMax < 1 {
		ngramMax = 1
	}
	columns := make(map[int]string, len(vocab))
	for _, term := range slices.Sorted(maps.Keys(vocab)) {
		idx := vocab[term]
		if idx < 0 || idx >= LexicalDims {
			return fmt.Errorf("vocabulary term %q has index %d out of range", term, idx)
		}
		key, n := phraseKey(term)
		switch {
		case key == "":
			return fmt.Errorf("vocabulary term %q has no word characters", term)
		case key != term:
			return fmt.Errorf("vocabulary term %q is not normalized (tokenizes to %q)", term, key)
		case n > ngramMax:
			return fmt.Errorf("vocabulary term %q has %d tokens, ngram_max is %d", term, n, ngramMax)
		}
		if other, ok := columns[idx]; ok {
			return fmt.Errorf("vocabulary terms %q and %q share index %d", other, term, idx)
		}
		columns[idx] = term
	}
	return nil
}

func validateArtifacts(a Artifacts) error {
	if len(a.IDF) != LexicalDims {
		return fmt.Errorf("idf has %d entries, want %d", len(a.IDF), LexicalDims)
	}
	if a.NGramMax > 2 {
		return fmt.Errorf("ngram_max %d not supported", a.NGramMax)
	}
	if err := validateVocabulary(a.Vocabulary, a.NGramMax); err != nil {
		return err
	}
	if len(a.Mean) != FeatureDims || len(a.Scale) != FeatureDims {
		return fmt.Errorf("scaler has %d/%d entries, want %d", len(a.Mean), len(a.Scale), FeatureDims)
	}
	if len(a.Labels) != NumCategories {
		return fmt.Errorf("classifier has %d labels, want %d", len(a.Labels), NumCategories)
	}
	if err := checkUnique("label", a.Labels); err != nil {
		return err
	}
	if len(a.Coefficients) != NumCategories || len(a.Intercepts) != NumCategories {
		return fmt.Errorf("classifier has %d coefficient rows and %d intercepts, want %d",
			len(a.Coefficients), len(a.Intercepts), NumCategories)
	}
	for i, row := range a.Coefficients {
		if len(row) != FeatureDims {
			return fmt.Errorf("coefficient row %d has %d entries, want %d", i, len(row), FeatureDims)
		}
		if err := checkFinite(fmt.Sprintf("coefficient row %d", i), row); err != nil {
			return err
		}
	}
	if len(a.Skills) != SkillDims {
		return fmt.Errorf("skills list has %d terms, want %d", len(a.Skills), SkillDims)
	}
	if err := checkUnique("skill", a.Skills); err != nil {
		return err
	}

	for name, values := range map[string][]float64{
		"idf": a.IDF, "mean": a.Mean, "scale": a.Scale, "intercepts": a.Intercepts,
	} {
		if err := checkFinite(name, values); err != nil {
			return err
		}
	}
	return nil
}

func checkUnique(kind string, values []string) error {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate %s %q", kind, v)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func checkFinite(name string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not finite", name, i)
		}
	}
	return nil
}

// Categories returns the labels in artifact order.
func (m *Model) Categories() []string {
	return append([]string(nil), m.labels...)
}

// Skills returns the skill vocabulary.
func (m *Model) Skills() *SkillVocabulary { return m.skills }

func (m *Model) Info() models.ModelInfo {
	return models.ModelInfo{
		Version:      m.version,
		FeatureDims:  FeatureDims,
		Categories:   len(m.labels),
		SkillTerms:   len(m.skills.terms),
		LexicalTerms: len(m.vectorizer.vocabulary),
		ArtifactDir:  m.dir,
		LoadedAt:     m.loadedAt.Format(time.RFC3339),
	}
}
