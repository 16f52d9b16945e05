package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestSkillCoverage(t *testing.T) {
	resume := "Expert in Python, C++ and Spring Boot. Some JavaScript."

	assert.InDelta(t, 2.0/3.0, SkillCoverage(resume, []string{"python", "spring boot", "go"}), 1e-12)
	assert.Equal(t, 1.0, SkillCoverage(resume, []string{"C++"}))
	assert.Equal(t, 0.0, SkillCoverage(resume, []string{"java"}))
	assert.Equal(t, 1.0, SkillCoverage(resume, nil))
}

func TestSkillCoverageSymbolOnlySkill(t *testing.T) {
	assert.Equal(t, 1.0, SkillCoverage("Versioned with ++ operators", []string{"++"}))
	assert.Equal(t, 0.0, SkillCoverage("nothing here", []string{"++"}))
}

func TestDetectExperienceYears(t *testing.T) {
	tests := []struct {
		text  string
		years int
		found bool
	}{
		{"I have 5+ years of Python and 3 years of Go", 5, true},
		{"10 yrs in backend", 10, true},
		{"1 year as intern", 1, true},
		{"7 plus years leading teams", 7, true},
		{"99 years of experience", 0, false},
		{"born in 1990", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			years, found := DetectExperienceYears(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.years, years)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	assert.Equal(t, 1.0, ExperienceScore("7 years of Java", 5))
	assert.Equal(t, 1.0, ExperienceScore("5 years of Java", 5))
	assert.InDelta(t, 0.6, ExperienceScore("3 years of Java", 5), 1e-12)
	assert.Equal(t, 0.0, ExperienceScore("Java developer", 5))
	assert.Equal(t, 1.0, ExperienceScore("Java developer", 0))
}

func TestExperienceScoreIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, text := range []string{"1 year", "2 years", "4 years", "6 years", "9 years"} {
		score := ExperienceScore(text, 6)
		assert.GreaterOrEqual(t, score, prev)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestSkillMatcherScore(t *testing.T) {
	m := NewSkillMatcher()
	resume := "Python and Django developer with 3 years of experience"

	assert.Equal(t, NeutralSkillBonus, m.Score(resume, SkillCriteria{}))
	assert.Equal(t, NeutralSkillBonus, m.Score(resume, SkillCriteria{MinExperience: intPtr(0)}))
	assert.Equal(t, 0.5, m.Score(resume, SkillCriteria{Skills: []string{"python", "java"}}))
	assert.InDelta(t, 0.5, m.Score(resume, SkillCriteria{MinExperience: intPtr(6)}), 1e-12)
	assert.InDelta(t, 0.75, m.Score(resume, SkillCriteria{
		Skills:        []string{"python", "django"},
		MinExperience: intPtr(6),
	}), 1e-12)
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{"Python", "django", "machine learning"},
		ParseSkills(" Python, django,, PYTHON , machine learning "))
	assert.Nil(t, ParseSkills(""))
	assert.Nil(t, ParseSkills(" , ,"))
}
