package services

import (
	"regexp"
	"strconv"
	"strings"
)

// NeutralSkillBonus is the bonus when neither skills nor a minimum experience
// were requested.
const NeutralSkillBonus = 0.0

const maxPlausibleYears = 60

var experiencePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:\+|plus)?\s*(?:years?|yrs?)\b`)

// SkillCriteria are the optional, user-supplied matching criteria.
type SkillCriteria struct {
	Skills        []string
	MinExperience *int
}

func (c SkillCriteria) hasSkills() bool { return len(c.Skills) > 0 }

func (c SkillCriteria) hasExperience() bool { return c.MinExperience != nil && *c.MinExperience > 0 }

// Empty reports whether no criteria were supplied.
func (c SkillCriteria) Empty() bool { return !c.hasSkills() && !c.hasExperience() }

type SkillMatcher interface {
	Score(resumeText string, criteria SkillCriteria) float64
}

type skillMatcher struct{}

func NewSkillMatcher() SkillMatcher {
	return &skillMatcher{}
}

// Score averages skill coverage and experience sufficiency over the criteria
// that were supplied.
func (m *skillMatcher) Score(resumeText string, criteria SkillCriteria) float64 {
	if criteria.Empty() {
		return NeutralSkillBonus
	}

	var total float64
	var parts int
	if criteria.hasSkills() {
		total += SkillCoverage(resumeText, criteria.Skills)
		parts++
	}
	if criteria.hasExperience() {
		total += ExperienceScore(resumeText, *criteria.MinExperience)
		parts++
	}
	return clamp01(total / float64(parts))
}

// SkillCoverage returns found/requested. An empty list scores 1.
func SkillCoverage(resumeText string, skills []string) float64 {
	if len(skills) == 0 {
		return 1
	}

	tokens := tokenize(resumeText)
	maxN := 1
	keys := make([]string, len(skills))
	for i, skill := range skills {
		key, n := phraseKey(skill)
		keys[i] = key
		if n > maxN {
			maxN = n
		}
	}
	grams := ngramSet(tokens, maxN)

	var folded string
	var found int
	for i, key := range keys {
		if key != "" {
			if _, ok := grams[key]; ok {
				found++
			}
			continue
		}
		// no word characters in the skill: plain substring match
		needle := normalizeText(strings.TrimSpace(skills[i]))
		if needle == "" {
			continue
		}
		if folded == "" {
			folded = normalizeText(resumeText)
		}
		if strings.Contains(folded, needle) {
			found++
		}
	}
	return float64(found) / float64(len(skills))
}

// DetectExperienceYears returns the largest "N years" figure in the text.
func DetectExperienceYears(text string) (int, bool) {
	best, ok := 0, false
	for _, m := range experiencePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > maxPlausibleYears {
			continue
		}
		if !ok || n > best {
			best, ok = n, true
		}
	}
	return best, ok
}

// ExperienceScore is 1 when the detected experience meets minYears and
// detected/minYears otherwise. Nothing detected scores 0.
func ExperienceScore(resumeText string, minYears int) float64 {
	if minYears <= 0 {
		return 1
	}
	years, ok := DetectExperienceYears(resumeText)
	if !ok {
		return 0
	}
	if years >= minYears {
		return 1
	}
	return float64(years) / float64(minYears)
}

// ParseSkills splits a comma-separated list, trimming entries and dropping
// empties and case-insensitive duplicates while keeping the first spelling.
func ParseSkills(raw string) []string {
	var skills []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}
