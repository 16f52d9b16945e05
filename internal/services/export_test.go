package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-ranker/internal/models"
)

func TestExportRankingXLSX(t *testing.T) {
	resp := models.RankingResponse{
		JobCircularPreview: "Python developer with Django experience",
		SkillsSearched:     []string{"python", "django"},
		TotalResumes:       2,
		ProcessedResumes:   2,
		TopK:               2,
		RankedResumes: []models.RankedResume{
			{
				Filename:          "jane.pdf",
				PredictedCategory: "Python Developer",
				Confidence:        0.9,
				JobRelevance:      0.75,
				SkillBonus:        1,
				FinalScore:        0.875,
				TopCategories:     models.TopCategories{{Category: "Python Developer", Probability: 0.9}},
			},
			{Filename: "john.docx", PredictedCategory: "Designer", FinalScore: 0.3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportRankingXLSX(&buf, resp, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, candidatesSheet}, f.GetSheetList())

	generated, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 03:04:05", generated)

	skills, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "python, django", skills)

	rows, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "jane.pdf", "Python Developer"}, rows[1][:3])
	assert.Equal(t, "Python Developer (0.9000)", rows[1][7])
	assert.Equal(t, "john.docx", rows[2][1])
}
