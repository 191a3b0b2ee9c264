// Package git wraps the git and gh CLIs behind a service with an
// injectable executor, covering repository identity probing, ahead/behind
// sync math, pull request lookup, and CI check normalization.
package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/zhubert/ghsync/internal/exec"
)

// GitService executes git and gh operations in workspace directories.
type GitService struct {
	executor exec.CommandExecutor
}

// NewGitService creates a service backed by real subprocesses.
func NewGitService() *GitService {
	return &GitService{executor: exec.NewRealExecutor()}
}

// NewGitServiceWithExecutor creates a service with a custom executor.
// This is primarily used for testing.
func NewGitServiceWithExecutor(executor exec.CommandExecutor) *GitService {
	return &GitService{executor: executor}
}

// IsGitRepo reports whether path is inside a git working tree.
func (s *GitService) IsGitRepo(ctx context.Context, path string) bool {
	err := s.executor.Run(ctx, path, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CurrentBranch returns the checked-out branch name, or empty string for
// a detached HEAD or a failed command.
func (s *GitService) CurrentBranch(ctx context.Context, repoPath string) string {
	output, err := s.executor.Output(ctx, repoPath, "git", "branch", "--show-current")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// RemoteURL returns the URL of the named remote, or empty string when the
// remote does not exist. A missing remote is a normal state, not an error.
func (s *GitService) RemoteURL(ctx context.Context, repoPath, remote string) string {
	output, err := s.executor.Output(ctx, repoPath, "git", "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// GetDefaultBranch returns the default branch name (main or master).
func (s *GitService) GetDefaultBranch(ctx context.Context, repoPath string) string {
	output, err := s.executor.Output(ctx, repoPath, "git", "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(output))
		if i := strings.LastIndex(ref, "/"); i >= 0 {
			return ref[i+1:]
		}
	}

	if err := s.executor.Run(ctx, repoPath, "git", "rev-parse", "--verify", "main"); err == nil {
		return "main"
	}
	return "master"
}

// HeadCommit returns the full hash of HEAD.
func (s *GitService) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	output, err := s.executor.Output(ctx, repoPath, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// revListCount runs `git rev-list <range> --count` and returns the count.
// A nonzero exit (typically a missing ref) yields zero: "unknown" and
// "zero" are indistinguishable to callers and zero is the safe default.
func (s *GitService) revListCount(ctx context.Context, repoPath, revRange string) int {
	output, err := s.executor.Output(ctx, repoPath, "git", "rev-list", revRange, "--count")
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0
	}
	return count
}

// remoteRefExists verifies that <remote>/<branch> resolves locally.
func (s *GitService) remoteRefExists(ctx context.Context, repoPath, remote, branch string) bool {
	err := s.executor.Run(ctx, repoPath, "git", "rev-parse", "--verify", "--quiet", remote+"/"+branch)
	return err == nil
}
