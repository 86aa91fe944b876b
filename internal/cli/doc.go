// Package cli wires together the Cobra command tree for the benchlinks binary.
//
// The root command (and its alias, annotate) takes a branch name, loads
// configuration, resolves benchmark artifact links through the GitHub API and
// comments them on the branch's pull request. The config and version
// subcommands manage settings. Handlers set deterministic exit codes for CI.
package cli
