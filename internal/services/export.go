package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-ranker/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
)

// ExportRankingXLSX writes the ranking as an Excel workbook.
func ExportRankingXLSX(w io.Writer, resp models.RankingResponse, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := writeSummarySheet(f, resp, generatedAt); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, resp); err != nil {
		return fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, resp models.RankingResponse, generatedAt time.Time) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 80)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "Resume Ranking Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	minExperience := "-"
	if resp.MinExperience != nil {
		minExperience = fmt.Sprintf("%d years", *resp.MinExperience)
	}
	skills := "-"
	if len(resp.SkillsSearched) > 0 {
		skills = strings.Join(resp.SkillsSearched, ", ")
	}

	rows := [][2]any{
		{"Generated:", generatedAt.Format("2006-01-02 15:04:05")},
		{"Job Circular:", resp.JobCircularPreview},
		{"Skills Searched:", skills},
		{"Minimum Experience:", minExperience},
		{"Total Resumes:", resp.TotalResumes},
		{"Processed Resumes:", resp.ProcessedResumes},
		{"Top K:", resp.TopK},
	}
	row := 3
	for _, r := range rows {
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, label, r[0])
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1])
		row++
	}
	return nil
}

func writeCandidatesSheet(f *excelize.File, resp models.RankingResponse) error {
	headers := []string{
		"Rank", "Filename", "Predicted Category", "Confidence",
		"Job Relevance", "Skill Bonus", "Final Score", "Top Categories",
	}
	widths := []float64{8, 35, 28, 12, 14, 12, 12, 60}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(candidatesSheet, col, col, widths[i])
		cell := fmt.Sprintf("%s1", col)
		f.SetCellValue(candidatesSheet, cell, h)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, r := range resp.RankedResumes {
		row := i + 2
		values := []any{
			i + 1, r.Filename, r.PredictedCategory, r.Confidence,
			r.JobRelevance, r.SkillBonus, r.FinalScore, formatTopCategories(r.TopCategories),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(candidatesSheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func formatTopCategories(tc models.TopCategories) string {
	parts := make([]string, len(tc))
	for i, c := range tc {
		parts[i] = fmt.Sprintf("%s (%.4f)", c.Category, c.Probability)
	}
	return strings.Join(parts, "; ")
}
