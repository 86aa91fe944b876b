package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"

	"github.com/maximumstock/benchlinks/internal/gitctx"
)

const defaultAPIURL = "https://api.github.com"

// Lookup errors. Each one means the provider answered but the list was empty.
var (
	// ErrNoWorkflowRun indicates no completed workflow run exists for a branch.
	ErrNoWorkflowRun = errors.New("no completed workflow run found")

	// ErrNoArtifact indicates a workflow run produced no artifacts.
	ErrNoArtifact = errors.New("no artifact found")

	// ErrNoPullRequest indicates no open pull request has the branch as head.
	ErrNoPullRequest = errors.New("no pull request found")
)

var (
	// ErrMissingToken indicates GITHUB_TOKEN is not set.
	ErrMissingToken = errors.New("GITHUB_TOKEN environment variable is not set")

	// ErrAuth indicates the API rejected the credentials (401/403).
	ErrAuth = errors.New("authentication failed")

	// ErrSecondaryRateLimit is returned when GitHub throttles requests with a 403
	// secondary rate limit response. It is not an authentication failure.
	ErrSecondaryRateLimit = errors.New("secondary rate limit exceeded")
)

// ActionsService is the subset of the GitHub Actions API used for benchmark lookups.
type ActionsService interface {
	ListRepositoryWorkflowRuns(ctx context.Context, owner, repo string, opts *github.ListWorkflowRunsOptions) (*github.WorkflowRuns, *github.Response, error)
	ListWorkflowRunArtifacts(ctx context.Context, owner, repo string, runID int64, opts *github.ListOptions) (*github.ArtifactList, *github.Response, error)
}

// PullRequestsService is the subset of the pull request API used to find a branch's PR.
type PullRequestsService interface {
	List(ctx context.Context, owner string, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
}

// IssuesService is the subset of the issues API used to post comments.
type IssuesService interface {
	CreateComment(ctx context.Context, owner string, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// WorkflowRun is a completed CI run on a branch.
type WorkflowRun struct {
	ID           int64  `json:"id"`
	CheckSuiteID int64  `json:"checkSuiteId"`
	Branch       string `json:"branch"`
	Status       string `json:"status"`
}

// Artifact is a file bundle uploaded by a workflow run.
type Artifact struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PullRequest identifies the pull request a comment is posted to.
type PullRequest struct {
	Number int    `json:"number"`
	URL    string `json:"url,omitempty"`
}

// Client provides access to the GitHub REST API.
//
// Every lookup takes the first element of the list the API returns. This
// relies on GitHub ordering runs, artifacts and pulls newest first.
type Client struct {
	actions ActionsService
	pulls   PullRequestsService
	issues  IssuesService
}

// NewClient creates a new GitHub client. Requires GITHUB_TOKEN env var.
// apiURL overrides GITHUB_API_URL when non-empty.
func NewClient(ctx context.Context, apiURL string, timeout time.Duration) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}

	if apiURL == "" {
		apiURL = os.Getenv("GITHUB_API_URL")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	httpCli := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpCli.Timeout = timeout

	gh := github.NewClient(httpCli)
	if apiURL != defaultAPIURL {
		var err error
		gh, err = gh.WithEnterpriseURLs(apiURL+"/", apiURL+"/")
		if err != nil {
			return nil, fmt.Errorf("configuring API URL %q: %w", apiURL, err)
		}
	}

	return NewFromServices(gh.Actions, gh.PullRequests, gh.Issues), nil
}

// NewFromServices creates a Client with injected services.
func NewFromServices(actions ActionsService, pulls PullRequestsService, issues IssuesService) *Client {
	return &Client{actions: actions, pulls: pulls, issues: issues}
}

// LatestCompletedRun returns the most recent completed workflow run on branch.
func (c *Client) LatestCompletedRun(ctx context.Context, owner, repo, branch string) (WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{
		Branch:      branch,
		Status:      "completed",
		ListOptions: github.ListOptions{PerPage: 1},
	}

	runs, resp, err := c.actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		return WorkflowRun{}, apiError(err, resp, "listing workflow runs")
	}
	if runs == nil || len(runs.WorkflowRuns) == 0 {
		return WorkflowRun{}, fmt.Errorf("%w for branch %q in %s/%s", ErrNoWorkflowRun, branch, owner, repo)
	}

	run := runs.WorkflowRuns[0]
	return WorkflowRun{
		ID:           run.GetID(),
		CheckSuiteID: run.GetCheckSuiteID(),
		Branch:       run.GetHeadBranch(),
		Status:       run.GetStatus(),
	}, nil
}

// FirstArtifact returns the first artifact uploaded by a workflow run.
func (c *Client) FirstArtifact(ctx context.Context, owner, repo string, runID int64) (Artifact, error) {
	list, resp, err := c.actions.ListWorkflowRunArtifacts(ctx, owner, repo, runID, &github.ListOptions{PerPage: 1})
	if err != nil {
		return Artifact{}, apiError(err, resp, "listing artifacts")
	}
	if list == nil || len(list.Artifacts) == 0 {
		return Artifact{}, fmt.Errorf("%w for workflow run %d in %s/%s", ErrNoArtifact, runID, owner, repo)
	}

	a := list.Artifacts[0]
	return Artifact{ID: a.GetID(), Name: a.GetName()}, nil
}

// PullRequestForBranch returns the most recent open pull request whose head is branch.
func (c *Client) PullRequestForBranch(ctx context.Context, owner, repo, branch string) (PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + branch,
		ListOptions: github.ListOptions{PerPage: 1},
	}

	prs, resp, err := c.pulls.List(ctx, owner, repo, opts)
	if err != nil {
		return PullRequest{}, apiError(err, resp, "listing pull requests")
	}
	if len(prs) == 0 {
		return PullRequest{}, fmt.Errorf("%w with head %q in %s/%s", ErrNoPullRequest, branch, owner, repo)
	}

	return PullRequest{Number: prs[0].GetNumber(), URL: prs[0].GetHTMLURL()}, nil
}

// CreateComment posts body as a new comment on a pull request and returns the comment ID.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (int64, error) {
	comment, resp, err := c.issues.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, apiError(err, resp, "creating comment")
	}
	return comment.GetID(), nil
}

func apiError(err error, resp *github.Response, action string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: rate limited until %s: %w", action, rateErr.Rate.Reset.Time.Format(time.RFC3339), err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if d := abuseErr.GetRetryAfter(); d > 0 {
			return fmt.Errorf("%s: %w: retry after %s: %v", action, ErrSecondaryRateLimit, d, err)
		}
		return fmt.Errorf("%s: %w: %v", action, ErrSecondaryRateLimit, err)
	}
	if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%s: %w: %v", action, ErrAuth, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL of the working directory.
func DetectRepo(ctx context.Context) (owner, repo string, err error) {
	url, err := gitctx.OriginURL(ctx, "")
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: %w", err)
	}
	return ParseRemoteURL(url)
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
