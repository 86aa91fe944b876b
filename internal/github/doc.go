// Package github wraps the GitHub REST API calls benchlinks needs: listing
// completed workflow runs for a branch, listing a run's artifacts, finding the
// open pull request for a branch, and posting an issue comment.
//
// The client authenticates with the GITHUB_TOKEN environment variable and
// honours GITHUB_API_URL for GitHub Enterprise. Empty lists are reported as
// [ErrNoWorkflowRun], [ErrNoArtifact] or [ErrNoPullRequest]; rejected
// credentials as [ErrAuth].
package github
