// Benchlinks posts benchmark artifact links to a pull request.
//
// For a given branch it finds the latest completed CI run on that branch and
// on the reference branch, builds a download link for each run's first
// artifact, prints both links, and comments them on the branch's open pull
// request. Exit codes are deterministic so the tool can gate CI jobs.
//
// Usage:
//
//	benchlinks feature-x                   # annotate the PR for feature-x
//	benchlinks feature-x --dry-run         # print links only
//	benchlinks feature-x --format json     # machine-readable result
//	benchlinks config set referenceBranch main
//	benchlinks annotate version            # a branch named like a subcommand
//	benchlinks -- version                  # same
//
// Positional branch names that match a subcommand (annotate, config,
// completion, help, version) run that subcommand. The annotate subcommand
// and the "--" separator always treat the next argument as a branch.
//
// A GITHUB_TOKEN with pull request write access must be set.
package main
