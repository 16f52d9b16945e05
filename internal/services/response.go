package services

import (
	"math"

	"alfredoptarigan/resume-ranker/internal/models"
)

const (
	previewRunes       = 200
	topCategoriesShown = 3
)

// BuildRankingResponse renders a batch result for API clients. Displayed
// numbers are rounded to four decimals; ordering comes from the exact scores.
func BuildRankingResponse(req models.RankingRequest, result *RankingResult) models.RankingResponse {
	resp := models.RankingResponse{
		JobCircularPreview: PreviewJobCircular(req.JobCircular),
		TopK:               req.TopK,
		RankedResumes:      []models.RankedResume{},
	}
	if len(req.Skills) > 0 {
		resp.SkillsSearched = append([]string(nil), req.Skills...)
	}
	if req.MinExperience != nil && *req.MinExperience > 0 {
		years := *req.MinExperience
		resp.MinExperience = &years
	}
	if result == nil {
		return resp
	}

	resp.TotalResumes = result.Total
	resp.ProcessedResumes = result.Processed
	resp.RankedResumes = make([]models.RankedResume, 0, len(result.Ranked))
	for _, c := range result.Ranked {
		top := c.Classification.Top(topCategoriesShown)
		for i := range top {
			top[i].Probability = round4(top[i].Probability)
		}
		resp.RankedResumes = append(resp.RankedResumes, models.RankedResume{
			Filename:          c.Filename,
			PredictedCategory: c.Classification.TopCategory,
			Confidence:        round4(c.Classification.Confidence),
			JobRelevance:      round4(c.Relevance),
			SkillBonus:        round4(c.SkillBonus),
			FinalScore:        round4(c.FinalScore),
			TopCategories:     top,
		})
	}
	return resp
}

// PreviewJobCircular returns the first 200 characters, with "..." appended
// when the text was cut.
func PreviewJobCircular(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
