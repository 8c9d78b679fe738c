// Package publish provides the canonical publish pipeline: run the generator,
// stage the artifact set, and commit and push only when the staged content
// differs from HEAD. All execution paths (CLI, tests) route through Service.
package publish

import (
	"context"
	"time"

	"github.com/openclaw/predmarkets/internal/config"
)

// Service is the canonical interface for executing a publish run.
type Service interface {
	// Run executes the pipeline: bind → generate → stage → detect → commit → push.
	// Returns a Result with detailed outcomes and any error encountered.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs required to execute a publish run.
type Request struct {
	// Config is the loaded configuration for this run.
	Config *config.Config

	// Options provides optional run behavior modifiers.
	Options Options
}

// Options provides optional configuration for run behavior.
type Options struct {
	// DryRun executes generation and change detection but skips commit and push.
	DryRun bool

	// SkipGenerate stages whatever is already in the worktree without running
	// the generator first.
	SkipGenerate bool
}

// Result contains the outcome of a publish run.
type Result struct {
	// Status indicates overall run outcome.
	Status Status

	// RunID uniquely identifies this run in logs and metrics.
	RunID string

	// Changed reports whether the staged artifact set differed from HEAD.
	Changed bool

	// CommitHash is set when a commit was created.
	CommitHash string

	// CommitMessage is the message of the created commit.
	CommitMessage string

	// FailedStep names the pipeline step that failed (empty on success).
	FailedStep string

	// Duration is the total run execution time.
	Duration time.Duration

	// StartTime is when the run started.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time
}

// Status represents the outcome of a publish run.
type Status string

const (
	// StatusPublished indicates a commit was created and pushed.
	StatusPublished Status = "published"

	// StatusNoop indicates the artifacts matched HEAD and nothing was committed.
	StatusNoop Status = "noop"

	// StatusFailed indicates the run stopped at a failed step.
	StatusFailed Status = "failed"
)

// IsSuccess returns true if the run completed without error.
func (s Status) IsSuccess() bool {
	return s == StatusPublished || s == StatusNoop
}

// Pipeline step names used in logs and metric labels.
const (
	StepBind     = "bind"
	StepGenerate = "generate"
	StepStage    = "stage"
	StepDetect   = "detect"
	StepCommit   = "commit"
	StepPush     = "push"
)
