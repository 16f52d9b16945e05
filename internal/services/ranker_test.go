package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ranker/internal/apperr"
)

func TestFuseScores(t *testing.T) {
	assert.InDelta(t, 1.0, FuseScores(1, 1, 1), 1e-12)
	assert.InDelta(t, 0.6, FuseScores(0.8, 0.5, 0.25), 1e-12)
	assert.Zero(t, FuseScores(0, 0, 0))
	assert.InDelta(t, 0.6, FuseScores(2, -1, 0.5), 1e-12)
	assert.InDelta(t, 1.0, ConfidenceWeight+RelevanceWeight+SkillBonusWeight, 1e-12)
}

func TestRankCandidatesOrdering(t *testing.T) {
	candidates := []Candidate{
		{Filename: "c.pdf", FinalScore: 0.5},
		{Filename: "b.pdf", FinalScore: 0.9},
		{Filename: "a.pdf", FinalScore: 0.5},
		{Filename: "d.pdf", FinalScore: 0.1},
	}

	ranked, err := RankCandidates(candidates, 10)
	require.NoError(t, err)

	var names []string
	for _, c := range ranked {
		names = append(names, c.Filename)
	}
	assert.Equal(t, []string{"b.pdf", "a.pdf", "c.pdf", "d.pdf"}, names)
	assert.Equal(t, "c.pdf", candidates[0].Filename, "input must not be reordered")
}

func TestRankCandidatesTruncates(t *testing.T) {
	candidates := []Candidate{
		{Filename: "a", FinalScore: 0.2},
		{Filename: "b", FinalScore: 0.4},
		{Filename: "c", FinalScore: 0.3},
	}

	ranked, err := RankCandidates(candidates, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Filename)
	assert.Equal(t, "c", ranked[1].Filename)

	ranked, err = RankCandidates(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankCandidatesRejectsInvalidTopK(t *testing.T) {
	_, err := RankCandidates([]Candidate{{Filename: "a"}}, 0)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidParameter, apperr.CodeOf(err))
}
