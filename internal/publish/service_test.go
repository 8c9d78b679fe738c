package publish

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/metrics"
)

type stubRepo struct {
	path        string
	staged      []string
	hasChanges  bool
	ahead       bool
	stageErr    error
	detectErr   error
	commitErr   error
	pushErr     error
	commitCalls int
	pushCalls   int
	lastMessage string
}

func (r *stubRepo) Path() string { return r.path }

func (r *stubRepo) Stage(paths []string) error {
	r.staged = append([]string(nil), paths...)
	return r.stageErr
}

func (r *stubRepo) HasStagedChanges() (bool, error) { return r.hasChanges, r.detectErr }

func (r *stubRepo) Commit(message string) (string, error) {
	r.commitCalls++
	r.lastMessage = message
	if r.commitErr != nil {
		return "", r.commitErr
	}
	return "abc123", nil
}

func (r *stubRepo) Push(_ context.Context, _, _ string) error {
	r.pushCalls++
	return r.pushErr
}

func (r *stubRepo) AheadOfRemote(_, _ string) (bool, error) { return r.ahead, nil }

type captureRecorder struct {
	results   []string
	durations []string
	outcomes  []string
}

func (r *captureRecorder) ObserveStepDuration(step string, _ time.Duration) {
	r.durations = append(r.durations, step)
}
func (r *captureRecorder) ObservePipelineDuration(time.Duration) {}
func (r *captureRecorder) IncStepResult(step string, result metrics.ResultLabel) {
	r.results = append(r.results, step+"/"+string(result))
}
func (r *captureRecorder) IncPublishOutcome(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}
func (r *captureRecorder) IncPlatformFetch(string, string) {}

type stubGenerator struct {
	err  error
	runs int
}

func (g *stubGenerator) Run(context.Context) error {
	g.runs++
	return g.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Repo.Path = t.TempDir()
	cfg.ApplyDefaults()
	return cfg
}

func newTestService(repo *stubRepo, gen *stubGenerator) *DefaultService {
	return NewService().
		WithRepoFactory(func(config.RepoConfig) (Repo, error) { return repo, nil }).
		WithGeneratorFactory(func(config.GeneratorConfig, string) (Generator, error) { return gen, nil })
}

func TestRunNoopWhenNothingChanged(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: false}
	gen := &stubGenerator{}
	svc := newTestService(repo, gen)
	cfg := testConfig(t)

	result, err := svc.Run(context.Background(), Request{Config: cfg})

	require.NoError(t, err)
	assert.Equal(t, StatusNoop, result.Status)
	assert.True(t, result.Status.IsSuccess())
	assert.False(t, result.Changed)
	assert.Equal(t, 1, gen.runs)
	assert.Equal(t, cfg.Repo.Artifacts, repo.staged)
	assert.Zero(t, repo.commitCalls)
	assert.Zero(t, repo.pushCalls)
	assert.NotEmpty(t, result.RunID)
}

func TestRunPublishesWhenChanged(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: true}
	svc := newTestService(repo, &stubGenerator{}).WithClock(func() time.Time {
		return time.Date(2026, 8, 30, 14, 5, 6, 0, time.UTC)
	})
	cfg := testConfig(t)
	cfg.Market.Timezone = "UTC"

	result, err := svc.Run(context.Background(), Request{Config: cfg})

	require.NoError(t, err)
	assert.Equal(t, StatusPublished, result.Status)
	assert.True(t, result.Changed)
	assert.Equal(t, "abc123", result.CommitHash)
	assert.Equal(t, "chore: update prediction markets today 2026-08-30 14:05:06 UTC", result.CommitMessage)
	assert.Equal(t, result.CommitMessage, repo.lastMessage)
	assert.Equal(t, 1, repo.commitCalls)
	assert.Equal(t, 1, repo.pushCalls)
}

func TestCommitMessageUsesCommitTime(t *testing.T) {
	// The generator can run for minutes; the message must carry the instant the
	// commit is created, not the instant the pipeline started.
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	current := start
	advancing := func() time.Time {
		now := current
		current = current.Add(5 * time.Minute)
		return now
	}

	repo := &stubRepo{path: "/repo", hasChanges: true}
	svc := newTestService(repo, &stubGenerator{}).WithClock(advancing)
	cfg := testConfig(t)
	cfg.Market.Timezone = "UTC"

	result, err := svc.Run(context.Background(), Request{Config: cfg})

	require.NoError(t, err)
	assert.NotContains(t, result.CommitMessage, "10:00:00")

	stamp := strings.TrimPrefix(result.CommitMessage, "chore: update prediction markets today ")
	committedAt, err := time.Parse("2006-01-02 15:04:05 MST", stamp)
	require.NoError(t, err)
	assert.True(t, committedAt.After(start))
}

func TestRunRecordsEveryStepOnPublish(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: true}
	rec := &captureRecorder{}
	svc := newTestService(repo, &stubGenerator{}).WithRecorder(rec)

	_, err := svc.Run(context.Background(), Request{Config: testConfig(t)})

	require.NoError(t, err)
	for _, step := range []string{StepBind, StepGenerate, StepStage, StepDetect, StepCommit, StepPush} {
		assert.Contains(t, rec.results, step+"/success", "step %s", step)
		assert.Contains(t, rec.durations, step, "step %s", step)
	}
	assert.Equal(t, []string{metrics.OutcomePublished}, rec.outcomes)
}

func TestCommitMessagePattern(t *testing.T) {
	msg := commitMessage(time.Now(), "Asia/Shanghai")
	assert.Regexp(t,
		regexp.MustCompile(`^chore: update prediction markets today \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \S+$`),
		msg)
}

func TestRunFailsFastOnGenerator(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: true}
	gen := &stubGenerator{err: fmt.Errorf("exit status 3")}
	svc := newTestService(repo, gen)

	result, err := svc.Run(context.Background(), Request{Config: testConfig(t)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerate)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, StepGenerate, result.FailedStep)
	assert.Nil(t, repo.staged)
	assert.Zero(t, repo.commitCalls)
}

func TestRunFailsFastOnStage(t *testing.T) {
	repo := &stubRepo{path: "/repo", stageErr: fmt.Errorf("missing artifact")}
	svc := newTestService(repo, &stubGenerator{})

	result, err := svc.Run(context.Background(), Request{Config: testConfig(t)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStage)
	assert.Equal(t, StepStage, result.FailedStep)
	assert.Zero(t, repo.commitCalls)
	assert.Zero(t, repo.pushCalls)
}

func TestRunFailsOnPushAfterCommit(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: true, pushErr: fmt.Errorf("remote rejected")}
	svc := newTestService(repo, &stubGenerator{})

	result, err := svc.Run(context.Background(), Request{Config: testConfig(t)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPush)
	assert.Equal(t, StepPush, result.FailedStep)
	assert.Equal(t, 1, repo.commitCalls)
	assert.Equal(t, "abc123", result.CommitHash)
}

func TestRunFailsOnBind(t *testing.T) {
	svc := NewService().WithRepoFactory(func(config.RepoConfig) (Repo, error) {
		return nil, errors.New("not a git repository")
	})

	result, err := svc.Run(context.Background(), Request{Config: testConfig(t)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBind)
	assert.Equal(t, StepBind, result.FailedStep)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := NewService().Run(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBind)
}

func TestRunDryRunSkipsCommitAndPush(t *testing.T) {
	repo := &stubRepo{path: "/repo", hasChanges: true}
	svc := newTestService(repo, &stubGenerator{})

	result, err := svc.Run(context.Background(), Request{
		Config:  testConfig(t),
		Options: Options{DryRun: true},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusNoop, result.Status)
	assert.True(t, result.Changed)
	assert.Zero(t, repo.commitCalls)
	assert.Zero(t, repo.pushCalls)
}

func TestRunSkipGenerate(t *testing.T) {
	repo := &stubRepo{path: "/repo"}
	gen := &stubGenerator{}
	svc := newTestService(repo, gen)

	_, err := svc.Run(context.Background(), Request{
		Config:  testConfig(t),
		Options: Options{SkipGenerate: true},
	})

	require.NoError(t, err)
	assert.Zero(t, gen.runs)
	assert.Equal(t, len(repo.staged), len(testConfig(t).Repo.Artifacts))
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseTimeout("45s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	_, err = parseTimeout("soon")
	assert.Error(t, err)
}
