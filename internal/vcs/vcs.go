// Package vcs reads change timestamps from the source-control history.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNoGit is returned when the git executable is not on PATH.
var ErrNoGit = errors.New("git is required but not found in PATH")

// LastChange returns the committer date (strict ISO 8601) of the most recent
// commit touching any of paths, relative to root. With no paths it returns the
// date of HEAD. An empty string with a nil error means the history has no
// matching commit.
func LastChange(ctx context.Context, root string, paths ...string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", ErrNoGit
	}

	args := []string{"log", "-1", "--format=%cI"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git log in %s: %w\n%s", root, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git log in %s: %w", root, err)
	}

	stamp := strings.TrimSpace(string(output))
	if stamp == "" {
		return "", nil
	}
	if _, err := time.Parse(time.RFC3339, stamp); err != nil {
		return "", fmt.Errorf("unexpected git date %q: %w", stamp, err)
	}
	return stamp, nil
}
