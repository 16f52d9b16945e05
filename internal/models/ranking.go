package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RankingRequest is a validated ranking job: one job circular against a batch
// of resumes.
type RankingRequest struct {
	JobCircular   string
	Documents     []ResumeDocument
	TopK          int
	Skills        []string
	MinExperience *int
}

// CategoryProbability pairs a category label with its predicted probability.
type CategoryProbability struct {
	Category    string  `json:"category"`
	Probability float64 `json:"probability"`
}

// TopCategories is an ordered category→probability mapping. It marshals to a
// JSON object whose keys keep the slice order.
type TopCategories []CategoryProbability

func (tc TopCategories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range tc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(c.Probability, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object in key order.
func (tc *TopCategories) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := TopCategories{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var p float64
		if err := dec.Decode(&p); err != nil {
			return err
		}
		out = append(out, CategoryProbability{Category: key, Probability: p})
	}
	*tc = out
	return nil
}

type RankedResume struct {
	Filename          string        `json:"filename"`
	PredictedCategory string        `json:"predicted_category"`
	Confidence        float64       `json:"confidence"`
	JobRelevance      float64       `json:"job_relevance"`
	SkillBonus        float64       `json:"skill_bonus"`
	FinalScore        float64       `json:"final_score"`
	TopCategories     TopCategories `json:"top_categories"`
}

type RankingResponse struct {
	JobCircularPreview string         `json:"job_circular_preview"`
	SkillsSearched     []string       `json:"skills_searched"`
	MinExperience      *int           `json:"min_experience"`
	TotalResumes       int            `json:"total_resumes"`
	ProcessedResumes   int            `json:"processed_resumes"`
	TopK               int            `json:"top_k"`
	RankedResumes      []RankedResume `json:"ranked_resumes"`
}

type CategoriesResponse struct {
	TotalCategories int      `json:"total_categories"`
	Categories      []string `json:"categories"`
}

type ModelInfo struct {
	Version      string `json:"version"`
	FeatureDims  int    `json:"feature_dims"`
	Categories   int    `json:"categories"`
	SkillTerms   int    `json:"skill_terms"`
	LexicalTerms int    `json:"lexical_terms"`
	ArtifactDir  string `json:"artifact_dir,omitempty"`
	LoadedAt     string `json:"loaded_at,omitempty"`
}

type HealthResponse struct {
	Status      string     `json:"status"`
	ModelLoaded bool       `json:"model_loaded"`
	Model       *ModelInfo `json:"model,omitempty"`
	Error       string     `json:"error,omitempty"`
	Time        string     `json:"time"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
