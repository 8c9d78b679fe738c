package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/generator"
	"github.com/openclaw/predmarkets/internal/gitrepo"
	"github.com/openclaw/predmarkets/internal/logfields"
	"github.com/openclaw/predmarkets/internal/metrics"
)

// commitMessagePrefix is fixed; the suffix is the local timestamp.
const commitMessagePrefix = "chore: update prediction markets today"

// Repo is the repository surface the pipeline needs (implemented by
// *gitrepo.Client; tests inject stubs).
type Repo interface {
	Path() string
	Stage(paths []string) error
	HasStagedChanges() (bool, error)
	Commit(message string) (string, error)
	Push(ctx context.Context, remote, branch string) error
	AheadOfRemote(remote, branch string) (bool, error)
}

// RepoFactory binds a configured repository path to a Repo.
type RepoFactory func(cfg config.RepoConfig) (Repo, error)

// Generator runs the artifact generator to completion.
type Generator interface {
	Run(ctx context.Context) error
}

// GeneratorFactory builds a Generator for the configured command, rooted at
// the repository path.
type GeneratorFactory func(cfg config.GeneratorConfig, repoPath string) (Generator, error)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	repoFactory      RepoFactory
	generatorFactory GeneratorFactory
	recorder         metrics.Recorder
	now              func() time.Time
}

// NewService creates a DefaultService with production factories.
func NewService() *DefaultService {
	return &DefaultService{
		repoFactory: func(cfg config.RepoConfig) (Repo, error) {
			return gitrepo.Open(cfg)
		},
		generatorFactory: func(cfg config.GeneratorConfig, repoPath string) (Generator, error) {
			timeout, err := parseTimeout(cfg.Timeout)
			if err != nil {
				return nil, err
			}
			return generator.New(cfg.Command, repoPath, timeout), nil
		},
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// WithRepoFactory injects a custom repository factory (for testing).
func (s *DefaultService) WithRepoFactory(factory RepoFactory) *DefaultService {
	s.repoFactory = factory
	return s
}

// WithGeneratorFactory injects a custom generator factory (for testing).
func (s *DefaultService) WithGeneratorFactory(factory GeneratorFactory) *DefaultService {
	s.generatorFactory = factory
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	s.recorder = r
	return s
}

// WithClock injects a clock (tests pin the commit timestamp).
func (s *DefaultService) WithClock(now func() time.Time) *DefaultService {
	s.now = now
	return s
}

// Run executes the complete publish pipeline. Steps run strictly in order and
// the first failure aborts the run; nothing is retried or rolled back.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := s.now()
	result := &Result{
		RunID:     uuid.NewString(),
		StartTime: startTime,
	}
	log := slog.With(logfields.RunID(result.RunID))

	fail := func(step string, sentinel, err error) (*Result, error) {
		s.recorder.IncStepResult(step, metrics.ResultFatal)
		s.recorder.IncPublishOutcome(metrics.OutcomeFailed)
		result.Status = StatusFailed
		result.FailedStep = step
		s.finish(result)
		log.Error("Publish failed", logfields.Step(step), logfields.Error(err))
		return result, fmt.Errorf("%w: %w", sentinel, err)
	}

	if req.Config == nil {
		return fail(StepBind, ErrBind, fmt.Errorf("config required"))
	}
	cfg := req.Config

	// Step 1: bind to the pre-existing checkout. Never clones.
	repo, err := s.timedRepoBind(cfg.Repo, log)
	if err != nil {
		return fail(StepBind, ErrBind, err)
	}

	// Step 2: run the generator subprocess.
	if req.Options.SkipGenerate {
		s.recorder.IncStepResult(StepGenerate, metrics.ResultSkipped)
		log.Info("Generator skipped", logfields.Step(StepGenerate))
	} else {
		if err := s.timedGenerate(ctx, cfg.Generator, repo.Path(), log); err != nil {
			return fail(StepGenerate, ErrGenerate, err)
		}
	}

	// Step 3: stage the fixed artifact set.
	stageStart := s.now()
	if err := repo.Stage(cfg.Repo.Artifacts); err != nil {
		s.recorder.ObserveStepDuration(StepStage, s.now().Sub(stageStart))
		return fail(StepStage, ErrStage, err)
	}
	s.observeStep(StepStage, s.now().Sub(stageStart))
	log.Info("Artifacts staged", logfields.Step(StepStage), logfields.Count(len(cfg.Repo.Artifacts)))

	// Step 4: detect staged changes against HEAD.
	detectStart := s.now()
	changed, err := repo.HasStagedChanges()
	if err != nil {
		s.recorder.ObserveStepDuration(StepDetect, s.now().Sub(detectStart))
		return fail(StepDetect, ErrStage, err)
	}
	s.observeStep(StepDetect, s.now().Sub(detectStart))
	result.Changed = changed

	if !changed {
		// A previous run may have committed but failed to push; surface that the
		// local branch is already ahead so the operator knows a rerun will not
		// re-publish it.
		if ahead, aerr := repo.AheadOfRemote(cfg.Repo.Remote, cfg.Repo.Branch); aerr == nil && ahead {
			log.Warn("No staged changes but local branch is ahead of remote",
				logfields.Remote(cfg.Repo.Remote), logfields.Branch(cfg.Repo.Branch))
		}
		s.recorder.IncPublishOutcome(metrics.OutcomeNoop)
		result.Status = StatusNoop
		s.finish(result)
		log.Info("No changes to publish", logfields.Status(string(StatusNoop)))
		return result, nil
	}

	if req.Options.DryRun {
		result.Status = StatusNoop
		s.recorder.IncPublishOutcome(metrics.OutcomeNoop)
		s.finish(result)
		log.Info("Dry run: changes detected, commit and push skipped")
		return result, nil
	}

	// Step 5: commit with the timestamped message. The timestamp is read here,
	// not at pipeline start: generation can take minutes and the message must
	// carry the commit instant.
	commitStart := s.now()
	message := commitMessage(commitStart, cfg.Market.Timezone)
	hash, err := repo.Commit(message)
	if err != nil {
		s.recorder.ObserveStepDuration(StepCommit, s.now().Sub(commitStart))
		return fail(StepCommit, ErrCommit, err)
	}
	s.observeStep(StepCommit, s.now().Sub(commitStart))
	result.CommitHash = hash
	result.CommitMessage = message
	log.Info("Commit created", logfields.Step(StepCommit), logfields.Commit(hash))

	// Step 6: push to the configured remote branch.
	pushStart := s.now()
	if err := repo.Push(ctx, cfg.Repo.Remote, cfg.Repo.Branch); err != nil {
		s.recorder.ObserveStepDuration(StepPush, s.now().Sub(pushStart))
		return fail(StepPush, ErrPush, err)
	}
	s.observeStep(StepPush, s.now().Sub(pushStart))

	s.recorder.IncPublishOutcome(metrics.OutcomePublished)
	result.Status = StatusPublished
	s.finish(result)
	log.Info("Publish complete",
		logfields.Status(string(StatusPublished)),
		logfields.Commit(hash),
		logfields.Remote(cfg.Repo.Remote),
		logfields.Branch(cfg.Repo.Branch),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultService) timedRepoBind(cfg config.RepoConfig, log *slog.Logger) (Repo, error) {
	start := s.now()
	repo, err := s.repoFactory(cfg)
	s.recorder.ObserveStepDuration(StepBind, s.now().Sub(start))
	if err != nil {
		return nil, err
	}
	s.recorder.IncStepResult(StepBind, metrics.ResultSuccess)
	log.Info("Repository bound", logfields.Step(StepBind), logfields.Repository(repo.Path()))
	return repo, nil
}

func (s *DefaultService) timedGenerate(ctx context.Context, cfg config.GeneratorConfig, repoPath string, log *slog.Logger) error {
	gen, err := s.generatorFactory(cfg, repoPath)
	if err != nil {
		return err
	}
	start := s.now()
	log.Info("Running generator", logfields.Step(StepGenerate))
	err = gen.Run(ctx)
	d := s.now().Sub(start)
	s.recorder.ObserveStepDuration(StepGenerate, d)
	if err != nil {
		return err
	}
	s.recorder.IncStepResult(StepGenerate, metrics.ResultSuccess)
	log.Info("Generator finished", logfields.Step(StepGenerate), logfields.DurationMS(float64(d.Milliseconds())))
	return nil
}

func (s *DefaultService) observeStep(step string, d time.Duration) {
	s.recorder.ObserveStepDuration(step, d)
	s.recorder.IncStepResult(step, metrics.ResultSuccess)
}

func (s *DefaultService) finish(result *Result) {
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObservePipelineDuration(result.Duration)
}

// commitMessage formats the fixed message with the run's local timestamp.
// When the timezone cannot be loaded the system zone is used.
func commitMessage(now time.Time, timezone string) string {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			now = now.In(loc)
		}
	}
	return fmt.Sprintf("%s %s", commitMessagePrefix, now.Format("2006-01-02 15:04:05 MST"))
}

// parseTimeout parses the generator timeout setting ("" or "0" = none).
func parseTimeout(v string) (time.Duration, error) {
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid generator timeout %q: %w", v, err)
	}
	return d, nil
}
