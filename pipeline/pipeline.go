// Package pipeline implements Background Pipelines (spec §4.8): named
// recurring tasks (interval, concurrency cap, per-target timeout, handler)
// that reuse the Workflow Engine's scheduling primitives — bounded fan-out
// via golang.org/x/sync/errgroup — but run on a timer instead of a
// dependency graph. Scheduling itself is driven by robfig/cron/v3, the
// pack's recurring-job library (grounded on haasonsaas-nexus's
// internal/gateway/managers/scheduler.go, which wraps the same package for
// its own cron jobs).
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/quillforge/core/log"
)

// Result is one target's outcome within a pipeline tick.
type Result struct {
	Target string
	Err    error
}

// BatchSummary collates one tick's per-target results, per spec §4.8's
// "Failure isolation: a per-target failure never affects siblings; all
// results are collated into a batch summary."
type BatchSummary struct {
	Name      string
	Started   time.Time
	Duration  time.Duration
	Succeeded int
	Failed    int
	Errors    []string
}

// Job is one named recurring pipeline.
type Job struct {
	Name            string
	Interval        time.Duration
	ConcurrencyCap  int
	PerTargetTimeout time.Duration
	Discover        func(ctx context.Context) ([]string, error)
	Handle          func(ctx context.Context, target string) error
}

// Scheduler runs a set of Jobs on robfig/cron/v3, fanning each tick out
// across its discovered targets with an errgroup bounded to the job's
// ConcurrencyCap — the same pattern the Workflow Engine uses for
// per-round step concurrency (workflow/engine.go's runRound).
type Scheduler struct {
	cron   *cron.Cron
	logger log.Logger

	mu        sync.Mutex
	summaries []BatchSummary
	maxKept   int
}

// NewScheduler returns a Scheduler ready to accept jobs via Register.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		logger:  log.GetDefaultLogger(),
		maxKept: 50,
	}
}

// Register schedules job to run every job.Interval. It returns the
// underlying cron.EntryID so callers can later inspect/remove it.
func (s *Scheduler) Register(job Job) (cron.EntryID, error) {
	cap := job.ConcurrencyCap
	if cap <= 0 {
		cap = 8
	}
	perTarget := job.PerTargetTimeout
	if perTarget <= 0 {
		perTarget = 5 * time.Minute
	}

	spec := fmt.Sprintf("@every %s", job.Interval.String())
	return s.cron.AddFunc(spec, func() {
		summary := s.runTick(context.Background(), job, cap, perTarget)
		s.recordSummary(summary)
	})
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler without blocking; the returned context is done
// once any in-flight tick's goroutines have returned.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// Summaries returns the most recently recorded batch summaries, newest
// last.
func (s *Scheduler) Summaries() []BatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BatchSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

func (s *Scheduler) recordSummary(summary BatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	if len(s.summaries) > s.maxKept {
		s.summaries = s.summaries[len(s.summaries)-s.maxKept:]
	}
}

func (s *Scheduler) runTick(ctx context.Context, job Job, concurrencyCap int, perTarget time.Duration) BatchSummary {
	started := time.Now()
	summary := BatchSummary{Name: job.Name, Started: started}

	targets, err := job.Discover(ctx)
	if err != nil {
		s.logger.Error("pipeline %s: discover failed: %v", job.Name, err)
		summary.Errors = append(summary.Errors, err.Error())
		summary.Duration = time.Since(started)
		return summary
	}
	if len(targets) == 0 {
		summary.Duration = time.Since(started)
		return summary
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyCap)

	results := make(chan Result, len(targets))
	for _, target := range targets {
		target := target
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, perTarget)
			defer cancel()

			err := job.Handle(tctx, target)
			results <- Result{Target: target, Err: err}
			return nil // per-target failures never cancel siblings
		})
	}
	_ = g.Wait()
	close(results)

	for r := range results {
		if r.Err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", r.Target, r.Err))
		} else {
			summary.Succeeded++
		}
	}
	summary.Duration = time.Since(started)
	s.logger.Debug("pipeline %s: tick done succeeded=%d failed=%d duration=%s", job.Name, summary.Succeeded, summary.Failed, summary.Duration)
	return summary
}
