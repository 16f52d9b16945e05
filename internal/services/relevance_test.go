package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceScore(t *testing.T) {
	s := NewRelevanceScorer()
	job := "Python developer with Django experience"

	tests := []struct {
		name   string
		resume string
		want   float64
	}{
		{"identical", job, 1},
		{"partial coverage", "Python Django developer", 0.75},
		{"case insensitive", "PYTHON DEVELOPER, DJANGO EXPERIENCE", 1},
		{"unrelated", "Graphic designer skilled in Photoshop", 0},
		{"empty resume", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.resume, job), 1e-12)
		})
	}
}

func TestRelevanceEmptyJob(t *testing.T) {
	s := NewRelevanceScorer()
	assert.Zero(t, s.Score("Python developer", ""))
	assert.Zero(t, s.Score("Python developer", "the and of"))
}

func TestRelevanceScoreJobMatchesScore(t *testing.T) {
	s := NewRelevanceScorer()
	job := NewJobCircular("Java Spring engineer")
	resume := "Senior Java engineer"
	assert.Equal(t, s.Score(resume, job.Text), s.ScoreJob(resume, job))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.25, clamp01(0.25))
}
