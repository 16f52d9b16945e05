package services

// JobCircular is a job description with its keyword set computed once per request.
type JobCircular struct {
	Text     string
	Keywords map[string]struct{}
}

func NewJobCircular(text string) JobCircular {
	return JobCircular{Text: text, Keywords: keywordSet(text)}
}

type RelevanceScorer interface {
	Score(resumeText, jobText string) float64
	ScoreJob(resumeText string, job JobCircular) float64
}

type relevanceScorer struct{}

func NewRelevanceScorer() RelevanceScorer {
	return &relevanceScorer{}
}

func (s *relevanceScorer) Score(resumeText, jobText string) float64 {
	return s.ScoreJob(resumeText, NewJobCircular(jobText))
}

// ScoreJob returns the share of job keywords that also appear in the resume.
func (s *relevanceScorer) ScoreJob(resumeText string, job JobCircular) float64 {
	if len(job.Keywords) == 0 {
		return 0
	}
	resume := keywordSet(resumeText)
	if len(resume) == 0 {
		return 0
	}

	var common int
	for kw := range job.Keywords {
		if _, ok := resume[kw]; ok {
			common++
		}
	}
	return clamp01(float64(common) / float64(len(job.Keywords)))
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
