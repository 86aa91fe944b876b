package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached; pass a branch name explicitly")

// runGit executes git with args in dir. Tests replace it.
var runGit = func(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	branch, err := runGit(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("cannot determine current branch: %w", err)
	}
	if branch == "HEAD" || branch == "" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

// OriginURL returns the URL of the origin remote.
func OriginURL(ctx context.Context, dir string) (string, error) {
	url, err := runGit(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("git remote get-url origin failed: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("origin remote has no URL")
	}
	return url, nil
}
