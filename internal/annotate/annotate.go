package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/maximumstock/benchlinks/internal/config"
	"github.com/maximumstock/benchlinks/internal/github"
)

// ErrEmptyBranch is returned when Run is called without a branch name.
var ErrEmptyBranch = errors.New("branch name must not be empty")

// Service is the GitHub API surface the annotator depends on.
//
// The reference and branch lookups run in separate goroutines, so
// implementations must be safe for concurrent use.
type Service interface {
	LatestCompletedRun(ctx context.Context, owner, repo, branch string) (github.WorkflowRun, error)
	FirstArtifact(ctx context.Context, owner, repo string, runID int64) (github.Artifact, error)
	PullRequestForBranch(ctx context.Context, owner, repo, branch string) (github.PullRequest, error)
	CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (int64, error)
}

// Link is a resolved benchmark artifact for one branch.
type Link struct {
	Label        string `json:"label"`
	Branch       string `json:"branch"`
	RunID        int64  `json:"runId"`
	CheckSuiteID int64  `json:"checkSuiteId"`
	ArtifactID   int64  `json:"artifactId"`
	ArtifactName string `json:"artifactName,omitempty"`
	URL          string `json:"url"`
}

// Result is the outcome of one annotation run.
type Result struct {
	Repository  string `json:"repository"`
	Reference   Link   `json:"reference"`
	Branch      Link   `json:"branch"`
	PullRequest int    `json:"pullRequest,omitempty"`
	CommentID   int64  `json:"commentId,omitempty"`
	Comment     string `json:"comment"`
	Posted      bool   `json:"posted"`
}

// Options tunes a single Annotator.
type Options struct {
	// DryRun resolves and reports links without looking up the pull request or commenting.
	DryRun bool
	// OnLinks is called once both links are resolved, before the pull request lookup.
	OnLinks func(reference, branch Link) error
}

// Annotator posts benchmark artifact links for a branch and the reference branch
// to the branch's pull request.
type Annotator struct {
	cfg    config.Config
	svc    Service
	logger *log.Logger
	opts   Options
}

// New creates an Annotator. cfg supplies repository identity, host and reference branch.
func New(cfg config.Config, svc Service, logger *log.Logger, opts Options) *Annotator {
	if logger == nil {
		logger = log.Default()
	}
	return &Annotator{cfg: cfg, svc: svc, logger: logger, opts: opts}
}

// Run resolves both benchmark links, reports them, and comments on the pull request for branch.
// Any empty lookup aborts the run before a comment is posted.
func (a *Annotator) Run(ctx context.Context, branch string) (*Result, error) {
	if strings.TrimSpace(branch) == "" {
		return nil, ErrEmptyBranch
	}

	res := &Result{Repository: a.cfg.Repository()}

	// The two branches share nothing until both links exist.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := a.resolveLink(gctx, a.cfg.ReferenceBranch, ReferenceLabel(a.cfg.ReferenceBranch))
		res.Reference = l
		return err
	})
	g.Go(func() error {
		l, err := a.resolveLink(gctx, branch, "Branch")
		res.Branch = l
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Comment = BuildComment(res.Reference, res.Branch)

	if a.opts.OnLinks != nil {
		if err := a.opts.OnLinks(res.Reference, res.Branch); err != nil {
			return nil, fmt.Errorf("reporting links: %w", err)
		}
	}

	if a.opts.DryRun {
		a.logger.Info("Dry run, not commenting", "branch", branch)
		return res, nil
	}

	pr, err := a.svc.PullRequestForBranch(ctx, a.cfg.Owner, a.cfg.Repo, branch)
	if err != nil {
		return nil, err
	}
	res.PullRequest = pr.Number
	a.logger.Debug("Found pull request", "number", pr.Number, "url", pr.URL)

	id, err := a.svc.CreateComment(ctx, a.cfg.Owner, a.cfg.Repo, pr.Number, res.Comment)
	if err != nil {
		return nil, err
	}
	res.CommentID = id
	res.Posted = true
	a.logger.Info("Posted benchmark links", "pr", pr.Number, "comment", id)

	return res, nil
}

func (a *Annotator) resolveLink(ctx context.Context, branch, label string) (Link, error) {
	run, err := a.svc.LatestCompletedRun(ctx, a.cfg.Owner, a.cfg.Repo, branch)
	if err != nil {
		return Link{}, err
	}
	a.logger.Debug("Found workflow run", "branch", branch, "run", run.ID, "suite", run.CheckSuiteID)

	artifact, err := a.svc.FirstArtifact(ctx, a.cfg.Owner, a.cfg.Repo, run.ID)
	if err != nil {
		return Link{}, err
	}
	a.logger.Debug("Found artifact", "branch", branch, "artifact", artifact.ID, "name", artifact.Name)

	return Link{
		Label:        label,
		Branch:       branch,
		RunID:        run.ID,
		CheckSuiteID: run.CheckSuiteID,
		ArtifactID:   artifact.ID,
		ArtifactName: artifact.Name,
		URL:          ArtifactURL(a.cfg.Host, a.cfg.Owner, a.cfg.Repo, run.CheckSuiteID, artifact.ID),
	}, nil
}

// ArtifactURL builds the browser URL of an artifact within a check suite.
func ArtifactURL(host, owner, repo string, checkSuiteID, artifactID int64) string {
	return fmt.Sprintf("https://%s/%s/%s/suites/%d/artifacts/%d", host, owner, repo, checkSuiteID, artifactID)
}

// BuildComment renders the pull request comment: one bullet per link, reference first.
func BuildComment(reference, branch Link) string {
	return fmt.Sprintf("- %s\n- %s", reference.URL, branch.URL)
}

// ReferenceLabel is the display label for the reference branch, e.g. "Master" for master.
func ReferenceLabel(branch string) string {
	r, size := utf8.DecodeRuneInString(branch)
	if r == utf8.RuneError {
		return branch
	}
	return string(unicode.ToUpper(r)) + branch[size:]
}
