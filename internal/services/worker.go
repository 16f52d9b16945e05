package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
)

type documentJob struct {
	index int
	doc   docEntry
}

type documentResult struct {
	index     int
	candidate *Candidate
	outcome   models.DocumentOutcome
}

type processFunc func(ctx context.Context, job documentJob) documentResult

// workerPool drains a job queue with a fixed number of goroutines.
type workerPool struct {
	concurrency int
	log         *zap.Logger
}

func newWorkerPool(concurrency int, log *zap.Logger) *workerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &workerPool{
		concurrency: concurrency,
		log:         logger.OrNop(log),
	}
}

// run processes jobs until all finish or ctx is done. Jobs without a result
// when ctx ends are missing from the returned map. The results channel is
// buffered for every job so workers still running after a deadline never block.
func (w *workerPool) run(ctx context.Context, jobs []documentJob, process processFunc) map[int]documentResult {
	collected := make(map[int]documentResult, len(jobs))
	if len(jobs) == 0 {
		return collected
	}

	queue := make(chan documentJob)
	results := make(chan documentResult, len(jobs))
	var wg sync.WaitGroup

	workers := min(w.concurrency, len(jobs))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go w.processJobs(ctx, i+1, queue, results, process, &wg)
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for {
		select {
		case res, ok := <-results:
			if !ok {
				return collected
			}
			collected[res.index] = res
		case <-ctx.Done():
			w.log.Warn("batch deadline reached",
				zap.Int("completed", len(collected)),
				zap.Int("total", len(jobs)))
			return drainResults(results, collected)
		}
	}
}

func (w *workerPool) processJobs(ctx context.Context, workerID int, queue <-chan documentJob, results chan<- documentResult, process processFunc, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range queue {
		if ctx.Err() != nil {
			return
		}
		w.log.Debug("worker processing document",
			zap.Int("worker", workerID),
			zap.String("filename", job.doc.doc.Filename))
		results <- process(ctx, job)
	}
}

// drainResults keeps results that were already delivered when the deadline hit.
func drainResults(results <-chan documentResult, collected map[int]documentResult) map[int]documentResult {
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return collected
			}
			collected[res.index] = res
		default:
			return collected
		}
	}
}
