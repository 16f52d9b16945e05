package services

import (
	"sort"

	"alfredoptarigan/resume-ranker/internal/apperr"
)

// Fusion weights; they sum to 1.
const (
	ConfidenceWeight = 0.50
	RelevanceWeight  = 0.30
	SkillBonusWeight = 0.20
)

// FuseScores combines the three sub-scores into a final score in [0,1].
func FuseScores(confidence, relevance, skillBonus float64) float64 {
	score := ConfidenceWeight*clamp01(confidence) +
		RelevanceWeight*clamp01(relevance) +
		SkillBonusWeight*clamp01(skillBonus)
	return clamp01(score)
}

// Candidate is a fully scored resume.
type Candidate struct {
	Filename       string
	Classification ClassificationResult
	Relevance      float64
	SkillBonus     float64
	FinalScore     float64
}

// RankCandidates orders candidates by final score descending, then filename,
// then input order, and keeps at most topK.
func RankCandidates(candidates []Candidate, topK int) ([]Candidate, error) {
	if topK < 1 {
		return nil, apperr.Newf(apperr.CodeInvalidParameter, "top_k must be at least 1, got %d", topK)
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Filename < ranked[j].Filename
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}
