// Package pipeline implements the Background Pipelines component (spec
// §4.8): feed polling, presence reaping, and checkpoint GC, each expressed
// as a Job scheduled by robfig/cron/v3 and fanned out per tick with
// golang.org/x/sync/errgroup, the same bounded-concurrency idiom the
// Workflow Engine uses for per-round step execution.
package pipeline
