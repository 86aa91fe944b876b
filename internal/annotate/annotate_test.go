package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximumstock/benchlinks/internal/config"
	"github.com/maximumstock/benchlinks/internal/github"
)

type comment struct {
	pr   int
	body string
}

// fakeService serves canned runs, artifacts and pulls and records every call.
type fakeService struct {
	mu        sync.Mutex
	runs      map[string]github.WorkflowRun
	artifacts map[int64]github.Artifact
	pulls     map[string]github.PullRequest
	runErr    error

	calls    map[string]int
	comments []comment
}

func newFakeService() *fakeService {
	return &fakeService{
		runs: map[string]github.WorkflowRun{
			"master":    {ID: 100, CheckSuiteID: 10, Branch: "master", Status: "completed"},
			"feature-x": {ID: 200, CheckSuiteID: 20, Branch: "feature-x", Status: "completed"},
		},
		artifacts: map[int64]github.Artifact{
			100: {ID: 1, Name: "benchmark"},
			200: {ID: 2, Name: "benchmark"},
		},
		pulls: map[string]github.PullRequest{
			"feature-x": {Number: 42},
		},
		calls: map[string]int{},
	}
}

func (f *fakeService) record(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
}

func (f *fakeService) LatestCompletedRun(_ context.Context, owner, repo, branch string) (github.WorkflowRun, error) {
	f.record("runs:" + branch)
	if f.runErr != nil {
		return github.WorkflowRun{}, f.runErr
	}
	run, ok := f.runs[branch]
	if !ok {
		return github.WorkflowRun{}, fmt.Errorf("%w for branch %q in %s/%s", github.ErrNoWorkflowRun, branch, owner, repo)
	}
	return run, nil
}

func (f *fakeService) FirstArtifact(_ context.Context, _, _ string, runID int64) (github.Artifact, error) {
	f.record(fmt.Sprintf("artifacts:%d", runID))
	a, ok := f.artifacts[runID]
	if !ok {
		return github.Artifact{}, fmt.Errorf("%w for workflow run %d", github.ErrNoArtifact, runID)
	}
	return a, nil
}

func (f *fakeService) PullRequestForBranch(_ context.Context, _, _, branch string) (github.PullRequest, error) {
	f.record("pulls:" + branch)
	pr, ok := f.pulls[branch]
	if !ok {
		return github.PullRequest{}, fmt.Errorf("%w with head %q", github.ErrNoPullRequest, branch)
	}
	return pr, nil
}

func (f *fakeService) CreateComment(_ context.Context, _, _ string, prNumber int, body string) (int64, error) {
	f.record("comment")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, comment{pr: prNumber, body: body})
	return 555, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.ErrorLevel})
}

func TestRun_EndToEnd(t *testing.T) {
	svc := newFakeService()
	var printed bytes.Buffer
	a := New(config.Default(), svc, quietLogger(), Options{
		OnLinks: func(ref, branch Link) error {
			fmt.Fprintf(&printed, "%s Benchmark: %s\n", ref.Label, ref.URL)
			fmt.Fprintf(&printed, "%s Benchmark: %s\n", branch.Label, branch.URL)
			return nil
		},
	})

	res, err := a.Run(context.Background(), "feature-x")
	require.NoError(t, err)

	assert.Equal(t,
		"Master Benchmark: https://github.com/maximumstock/dns-thingy/suites/10/artifacts/1\n"+
			"Branch Benchmark: https://github.com/maximumstock/dns-thingy/suites/20/artifacts/2\n",
		printed.String())

	require.Len(t, svc.comments, 1)
	assert.Equal(t, 42, svc.comments[0].pr)
	assert.Contains(t, svc.comments[0].body, "https://github.com/maximumstock/dns-thingy/suites/10/artifacts/1")
	assert.Contains(t, svc.comments[0].body, "https://github.com/maximumstock/dns-thingy/suites/20/artifacts/2")

	assert.Equal(t, 42, res.PullRequest)
	assert.Equal(t, int64(555), res.CommentID)
	assert.True(t, res.Posted)
	assert.Equal(t, "maximumstock/dns-thingy", res.Repository)
	assert.Equal(t, int64(100), res.Reference.RunID)
	assert.Equal(t, int64(200), res.Branch.RunID)
}

func TestRun_CommentFormat(t *testing.T) {
	svc := newFakeService()
	_, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	require.NoError(t, err)
	require.Len(t, svc.comments, 1)

	lines := strings.Split(svc.comments[0].body, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "- "), "line %q should start with a bullet", l)
	}
	assert.Equal(t, "- https://github.com/maximumstock/dns-thingy/suites/10/artifacts/1", lines[0])
	assert.Equal(t, "- https://github.com/maximumstock/dns-thingy/suites/20/artifacts/2", lines[1])
}

func TestRun_EachLookupOnce(t *testing.T) {
	svc := newFakeService()
	_, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"runs:master":     1,
		"runs:feature-x":  1,
		"artifacts:100":   1,
		"artifacts:200":   1,
		"pulls:feature-x": 1,
		"comment":         1,
	}, svc.calls)
}

func TestRun_NoRunFailsWithoutComment(t *testing.T) {
	svc := newFakeService()
	delete(svc.runs, "feature-x")

	res, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, github.ErrNoWorkflowRun)
	assert.Contains(t, err.Error(), `"feature-x"`)
	assert.NotContains(t, err.Error(), "null")
	assert.Empty(t, svc.comments)
	assert.Zero(t, svc.calls["pulls:feature-x"])
}

func TestRun_NoArtifactFailsWithoutComment(t *testing.T) {
	svc := newFakeService()
	delete(svc.artifacts, 100)

	_, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	assert.ErrorIs(t, err, github.ErrNoArtifact)
	assert.Empty(t, svc.comments)
}

func TestRun_NoPullRequestFails(t *testing.T) {
	svc := newFakeService()
	delete(svc.pulls, "feature-x")

	linksReported := false
	a := New(config.Default(), svc, quietLogger(), Options{
		OnLinks: func(_, _ Link) error {
			linksReported = true
			return nil
		},
	})

	_, err := a.Run(context.Background(), "feature-x")
	assert.ErrorIs(t, err, github.ErrNoPullRequest)
	assert.True(t, linksReported, "links are reported before the pull request lookup")
	assert.Zero(t, svc.calls["comment"])
}

func TestRun_TransportErrorPropagates(t *testing.T) {
	svc := newFakeService()
	svc.runErr = fmt.Errorf("listing workflow runs: %w", github.ErrAuth)

	_, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	assert.ErrorIs(t, err, github.ErrAuth)
	assert.Empty(t, svc.comments)
}

func TestRun_EmptyBranch(t *testing.T) {
	svc := newFakeService()

	_, err := New(config.Default(), svc, quietLogger(), Options{}).Run(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyBranch)
	assert.Empty(t, svc.calls)
}

func TestRun_DryRun(t *testing.T) {
	svc := newFakeService()

	res, err := New(config.Default(), svc, quietLogger(), Options{DryRun: true}).Run(context.Background(), "feature-x")
	require.NoError(t, err)
	assert.False(t, res.Posted)
	assert.Zero(t, res.PullRequest)
	assert.NotEmpty(t, res.Comment)
	assert.Zero(t, svc.calls["pulls:feature-x"])
	assert.Zero(t, svc.calls["comment"])
}

func TestRun_OnLinksErrorStops(t *testing.T) {
	svc := newFakeService()
	a := New(config.Default(), svc, quietLogger(), Options{
		OnLinks: func(_, _ Link) error { return errors.New("stdout closed") },
	})

	_, err := a.Run(context.Background(), "feature-x")
	assert.ErrorContains(t, err, "stdout closed")
	assert.Empty(t, svc.comments)
}

func TestRun_CustomReferenceAndHost(t *testing.T) {
	svc := newFakeService()
	svc.runs["main"] = github.WorkflowRun{ID: 300, CheckSuiteID: 30}
	svc.artifacts[300] = github.Artifact{ID: 3}

	cfg := config.Default()
	cfg.ReferenceBranch = "main"
	cfg.Host = "ghe.example.com"

	res, err := New(cfg, svc, quietLogger(), Options{}).Run(context.Background(), "feature-x")
	require.NoError(t, err)
	assert.Equal(t, "Main", res.Reference.Label)
	assert.Equal(t, "https://ghe.example.com/maximumstock/dns-thingy/suites/30/artifacts/3", res.Reference.URL)
}

func TestArtifactURL(t *testing.T) {
	assert.Equal(t,
		"https://github.com/octo/bench/suites/10/artifacts/1",
		ArtifactURL("github.com", "octo", "bench", 10, 1))
}

func TestReferenceLabel(t *testing.T) {
	assert.Equal(t, "Master", ReferenceLabel("master"))
	assert.Equal(t, "Release/1.x", ReferenceLabel("release/1.x"))
	assert.Equal(t, "", ReferenceLabel(""))
	assert.Equal(t, "Étoile", ReferenceLabel("étoile"))
	assert.Equal(t, "Ümlaut-branch", ReferenceLabel("ümlaut-branch"))
	assert.True(t, utf8.ValidString(ReferenceLabel("étoile")))
	assert.Equal(t, "123-fix", ReferenceLabel("123-fix"))
}
