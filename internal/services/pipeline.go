package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
)

type PipelineConfig struct {
	Concurrency int
	Timeout     time.Duration
	Archive     ArchiveLimits
}

// RankingResult is the outcome of one batch.
type RankingResult struct {
	RunID     string
	Total     int
	Processed int
	Ranked    []Candidate
	Outcomes  []models.DocumentOutcome
	Duration  time.Duration
}

// Failed returns the outcomes of documents that did not reach ranking.
func (r *RankingResult) Failed() []models.DocumentOutcome {
	var failed []models.DocumentOutcome
	for _, o := range r.Outcomes {
		if o.State == models.StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

type Pipeline interface {
	Run(ctx context.Context, req models.RankingRequest) (*RankingResult, error)
}

// docEntry is an expanded document, or the error that replaced it.
type docEntry struct {
	doc models.ResumeDocument
	err error
}

type pipeline struct {
	model      *Model
	features   FeatureBuilder
	classifier Classifier
	extractor  TextExtractor
	archives   ArchiveExpander
	relevance  RelevanceScorer
	skills     SkillMatcher
	workers    *workerPool
	timeout    time.Duration
	log        *zap.Logger
}

// NewPipeline wires the ranking stages. A nil model is accepted so callers can
// keep serving; Run then reports MODEL_NOT_LOADED.
func NewPipeline(model *Model, extractor TextExtractor, cfg PipelineConfig, log *zap.Logger) (Pipeline, error) {
	archives, err := NewArchiveExpander(cfg.Archive)
	if err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	p := &pipeline{
		model:     model,
		extractor: extractor,
		archives:  archives,
		relevance: NewRelevanceScorer(),
		skills:    NewSkillMatcher(),
		workers:   newWorkerPool(cfg.Concurrency, log),
		timeout:   cfg.Timeout,
		log:       log,
	}
	if model != nil {
		p.features = NewFeatureBuilder(model)
		p.classifier = NewClassifier(model)
	}
	return p, nil
}

// ValidateRequest rejects requests that cannot be processed at all.
func ValidateRequest(req models.RankingRequest) error {
	if strings.TrimSpace(req.JobCircular) == "" {
		return apperr.New(apperr.CodeInvalidParameter, "job_circular is required")
	}
	if len(req.Documents) == 0 {
		return apperr.New(apperr.CodeEmptyBatch, "at least one resume file is required")
	}
	if req.TopK < 1 {
		return apperr.Newf(apperr.CodeInvalidParameter, "top_k must be at least 1, got %d", req.TopK)
	}
	if req.MinExperience != nil && *req.MinExperience < 0 {
		return apperr.Newf(apperr.CodeInvalidParameter, "min_experience must not be negative, got %d", *req.MinExperience)
	}
	return nil
}

func (p *pipeline) Run(ctx context.Context, req models.RankingRequest) (*RankingResult, error) {
	if p.model == nil {
		return nil, apperr.New(apperr.CodeModelNotLoaded, "model artifacts are not loaded")
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	log := logger.WithFields(p.log, zap.String("run_id", runID))

	entries, err := p.expand(req.Documents)
	if err != nil {
		log.Warn("batch rejected", zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperr.New(apperr.CodeEmptyBatch, "no resume documents found in upload")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	job := NewJobCircular(req.JobCircular)
	criteria := SkillCriteria{Skills: req.Skills, MinExperience: req.MinExperience}

	outcomes := make([]models.DocumentOutcome, len(entries))
	jobs := make([]documentJob, 0, len(entries))
	for i, entry := range entries {
		if entry.err != nil {
			outcomes[i] = failedOutcome(entry.doc.Filename, models.StatePending, entry.err)
			continue
		}
		jobs = append(jobs, documentJob{index: i, doc: entry})
	}

	log.Info("ranking batch",
		zap.Int("documents", len(entries)),
		zap.Int("top_k", req.TopK),
		zap.Int("skills", len(req.Skills)))

	collected := p.workers.run(ctx, jobs, func(ctx context.Context, dj documentJob) documentResult {
		return p.evaluate(ctx, dj, job, criteria)
	})

	candidates := make([]Candidate, 0, len(jobs))
	for _, dj := range jobs {
		res, ok := collected[dj.index]
		if !ok {
			outcomes[dj.index] = failedOutcome(dj.doc.doc.Filename, models.StatePending,
				apperr.New(apperr.CodeTimeout, "document did not finish before the request deadline"))
			continue
		}
		outcomes[dj.index] = res.outcome
		if res.candidate != nil {
			candidates = append(candidates, *res.candidate)
		}
	}

	ranked, err := RankCandidates(candidates, req.TopK)
	if err != nil {
		return nil, err
	}
	for i := range outcomes {
		if outcomes[i].State == models.StateScored {
			outcomes[i].State = models.StateIncluded
		}
	}

	result := &RankingResult{
		RunID:     runID,
		Total:     len(entries),
		Processed: len(candidates),
		Ranked:    ranked,
		Outcomes:  outcomes,
		Duration:  time.Since(started),
	}
	for _, o := range result.Failed() {
		log.Info("document skipped",
			zap.String("filename", o.Filename),
			zap.String("code", o.Code),
			zap.String("error", logger.TruncateForLog(o.Error, 200)))
	}
	log.Info("batch ranked",
		zap.Int("total", result.Total),
		zap.Int("processed", result.Processed),
		zap.Int("returned", len(ranked)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// expand stops only on a request-level archive error.
func (p *pipeline) expand(docs []models.ResumeDocument) ([]docEntry, error) {
	var entries []docEntry
	for doc, err := range p.archives.ExpandBatch(docs) {
		if apperr.Is(err, apperr.CodeArchiveLimitExceeded) {
			return nil, err
		}
		entries = append(entries, docEntry{doc: doc, err: err})
	}
	return entries, nil
}

// evaluate runs one document through extraction, features, classification and
// scoring. A panic in any stage fails only this document.
func (p *pipeline) evaluate(ctx context.Context, dj documentJob, job JobCircular, criteria SkillCriteria) (res documentResult) {
	doc := dj.doc.doc
	state := models.StatePending
	res.index = dj.index

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic while ranking document",
				zap.String("filename", doc.Filename),
				zap.String("stage", string(state)),
				zap.Any("panic", r))
			res.candidate = nil
			res.outcome = failedOutcome(doc.Filename, state,
				apperr.Newf(apperr.CodeInternal, "unexpected failure after %s stage: %v", state, r))
		}
	}()

	fail := func(err error) documentResult {
		res.outcome = failedOutcome(doc.Filename, state, err)
		return res
	}

	text, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return fail(err)
	}
	state = models.StateExtracted
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	vec := p.features.Build(text)
	state = models.StateFeatureBuilt
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	classification, err := p.classifier.Classify(vec)
	if err != nil {
		return fail(apperr.Wrap(err, apperr.CodeInternal, "classification failed"))
	}
	state = models.StateClassified
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	relevance := p.relevance.ScoreJob(text, job)
	bonus := p.skills.Score(text, criteria)
	state = models.StateScored

	res.candidate = &Candidate{
		Filename:       doc.Filename,
		Classification: classification,
		Relevance:      relevance,
		SkillBonus:     bonus,
		FinalScore:     FuseScores(classification.Confidence, relevance, bonus),
	}
	res.outcome = models.DocumentOutcome{Filename: doc.Filename, State: state}
	return res
}

func failedOutcome(filename string, reached models.DocumentState, err error) models.DocumentOutcome {
	return models.DocumentOutcome{
		Filename: filename,
		State:    models.StateFailed,
		Reached:  reached,
		Code:     string(apperr.CodeOf(err)),
		Error:    err.Error(),
	}
}
