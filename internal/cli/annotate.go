package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maximumstock/benchlinks/internal/annotate"
	"github.com/maximumstock/benchlinks/internal/config"
	"github.com/maximumstock/benchlinks/internal/gitctx"
	"github.com/maximumstock/benchlinks/internal/github"
	"github.com/maximumstock/benchlinks/internal/logging"
	"github.com/maximumstock/benchlinks/internal/output"
	"github.com/maximumstock/benchlinks/internal/redact"
)

// Shared annotate flags
var (
	flagOwner           string
	flagRepo            string
	flagReferenceBranch string
	flagHost            string
	flagAPIURL          string
	flagFormat          string
	flagLogLevel        string
	flagTimeout         int
	flagDryRun          bool
	flagDetectRepo      bool
	flagCurrentBranch   bool
)

// currentBranch resolves the checked-out branch. Tests replace it.
var currentBranch = func(ctx context.Context) (string, error) {
	return gitctx.CurrentBranch(ctx, "")
}

// newService builds the GitHub client. Tests replace it with a fake.
var newService = func(ctx context.Context, cfg config.Config) (annotate.Service, error) {
	return github.NewClient(ctx, cfg.APIURL, cfg.Timeout())
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [branch]",
	Short: "Comment benchmark links on the pull request for a branch",
	Args:  branchArgs,
	RunE:  runAnnotate,
}

func addAnnotateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagOwner, "owner", "", "GitHub repository owner")
	cmd.Flags().StringVar(&flagRepo, "repo", "", "Repository name, owner/name, or git remote URL")
	cmd.Flags().StringVar(&flagReferenceBranch, "reference-branch", "", "Branch to compare against (default master)")
	cmd.Flags().StringVar(&flagHost, "host", "", "Host used in artifact links (default github.com)")
	cmd.Flags().StringVar(&flagAPIURL, "api-url", "", "GitHub API base URL (default $GITHUB_API_URL or api.github.com)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Timeout in seconds for all GitHub API calls")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Resolve and print links but don't post a comment")
	cmd.Flags().BoolVar(&flagDetectRepo, "detect-repo", false, "Detect owner/repo from the git remote origin")
	cmd.Flags().BoolVar(&flagCurrentBranch, "current-branch", false, "Use the checked-out git branch instead of a branch argument")
}

// branchArgs requires exactly one branch argument unless --current-branch is set.
func branchArgs(cmd *cobra.Command, args []string) error {
	if flagCurrentBranch {
		return cobra.NoArgs(cmd, args)
	}
	return cobra.ExactArgs(1)(cmd, args)
}

func buildOverrides() (map[string]string, error) {
	m := make(map[string]string)
	if flagRepo != "" {
		switch {
		case strings.Contains(flagRepo, "://") || strings.Contains(flagRepo, "@"):
			owner, repo, err := github.ParseRemoteURL(flagRepo)
			if err != nil {
				return nil, err
			}
			m["repository"] = owner + "/" + repo
		case strings.Contains(flagRepo, "/"):
			m["repository"] = flagRepo
		default:
			m["repo"] = flagRepo
		}
	}
	if flagOwner != "" {
		m["owner"] = flagOwner
	}
	if flagReferenceBranch != "" {
		m["referenceBranch"] = flagReferenceBranch
	}
	if flagHost != "" {
		m["host"] = flagHost
	}
	if flagAPIURL != "" {
		m["apiUrl"] = flagAPIURL
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = strconv.Itoa(flagTimeout)
	}
	return m, nil
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	var branch string
	if flagCurrentBranch {
		b, err := currentBranch(cmd.Context())
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		branch = b
	} else {
		branch = args[0]
	}

	overrides, err := buildOverrides()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	if flagDetectRepo {
		owner, repo, err := github.DetectRepo(cmd.Context())
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\nUse --repo owner/name to specify manually.\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		cfg.Owner, cfg.Repo = owner, repo
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	logger, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
	defer cancel()

	svc, err := newService(ctx, cfg)
	if err != nil {
		logger.Error("Cannot create GitHub client", "err", redact.Secrets(err.Error()))
		exitCode = exitCodeFor(err)
		return nil
	}

	stdout := cmd.OutOrStdout()
	a := annotate.New(cfg, svc, logger, annotate.Options{
		DryRun: flagDryRun,
		OnLinks: func(reference, head annotate.Link) error {
			return writer.WriteLinks(stdout, reference, head)
		},
	})

	logger.Debug("Annotating", "repo", cfg.Repository(), "branch", branch, "reference", cfg.ReferenceBranch)
	res, err := a.Run(ctx, branch)
	if err != nil {
		logger.Error("Annotation failed", "branch", branch, "err", redact.Secrets(err.Error()))
		exitCode = exitCodeFor(err)
		return nil
	}

	if err := writer.WriteResult(stdout, res); err != nil {
		logger.Error("Writing output failed", "err", err)
		exitCode = ExitRuntimeError
		return nil
	}

	return nil
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, annotate.ErrEmptyBranch):
		return ExitUsageError
	case errors.Is(err, github.ErrMissingToken), errors.Is(err, github.ErrAuth):
		return ExitAuthError
	case errors.Is(err, github.ErrNoWorkflowRun),
		errors.Is(err, github.ErrNoArtifact),
		errors.Is(err, github.ErrNoPullRequest):
		return ExitNotFound
	default:
		return ExitRuntimeError
	}
}

func init() {
	addAnnotateFlags(annotateCmd)
}
