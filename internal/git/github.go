package git

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/zhubert/ghsync/internal/exec"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/remote"
)

// PRState classifies a pull request for display.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateDraft  PRState = "draft"
	PRStateMerged PRState = "merged"
)

// PullRequest is the normalized result of a gh pr view lookup.
type PullRequest struct {
	Number int     `json:"number"`
	URL    string  `json:"url"`
	State  PRState `json:"state"`
}

// prLookupTimeout bounds each gh pr view attempt so a hung network call
// cannot stall the whole fallback loop.
const prLookupTimeout = 8 * time.Second

type ghPRView struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	State   string `json:"state"`
	IsDraft bool   `json:"isDraft"`
}

// FindPullRequest locates the PR for branch, trying each remote attempt
// in order. A nonzero exit, empty output, or malformed JSON moves on to
// the next attempt; exhausting all attempts returns nil. No open PR is
// an expected, common outcome, not an error.
func (s *GitService) FindPullRequest(ctx context.Context, repoPath, branch string, attempts []remote.Attempt, originOwnerRepo string) *PullRequest {
	log := logger.WithComponent("github")

	for _, attempt := range attempts {
		branchRef := remote.BranchRef(attempt, branch, originOwnerRepo)

		res := s.executor.Execute(ctx, exec.Spec{
			Dir:     repoPath,
			Name:    "gh",
			Args:    []string{"pr", "view", branchRef, "--repo", attempt.RepoRef, "--json", "number,url,state,isDraft"},
			Timeout: prLookupTimeout,
		})
		if !res.Success() || len(strings.TrimSpace(string(res.Stdout))) == 0 {
			log.Debug("pr view attempt failed", "repo", attempt.RepoRef, "branchRef", branchRef, "exitCode", res.ExitCode)
			continue
		}

		var view ghPRView
		if err := json.Unmarshal(res.Stdout, &view); err != nil {
			log.Debug("pr view returned malformed JSON, trying next remote", "repo", attempt.RepoRef, "error", err)
			continue
		}
		if view.Number == 0 || view.URL == "" {
			continue
		}

		state := PRStateOpen
		switch {
		case view.State == "MERGED":
			state = PRStateMerged
		case view.IsDraft:
			state = PRStateDraft
		}

		return &PullRequest{Number: view.Number, URL: view.URL, State: state}
	}

	return nil
}

// MarkPullRequestReady flips a draft PR to ready, trying each remote in
// order and succeeding on the first zero exit. This is a write operation
// and carries the workspace id so the executor records it in the audit
// trail.
func (s *GitService) MarkPullRequestReady(ctx context.Context, repoPath, branch, workspaceID string, attempts []remote.Attempt, originOwnerRepo string) bool {
	log := logger.WithComponent("github")

	for _, attempt := range attempts {
		branchRef := remote.BranchRef(attempt, branch, originOwnerRepo)

		res := s.executor.Execute(ctx, exec.Spec{
			Dir:         repoPath,
			Name:        "gh",
			Args:        []string{"pr", "ready", branchRef, "--repo", attempt.RepoRef},
			Timeout:     prLookupTimeout,
			WorkspaceID: workspaceID,
			Kind:        "pr-ready",
		})
		if res.Success() {
			log.Info("marked PR ready", "repo", attempt.RepoRef, "branchRef", branchRef)
			return true
		}
		log.Debug("pr ready attempt failed", "repo", attempt.RepoRef, "branchRef", branchRef, "exitCode", res.ExitCode)
	}

	return false
}

// CommitURL builds the GitHub web URL for a commit. Pure; the repo ref
// comes from the same remote-attempt ordering as every other operation.
func CommitURL(repoRef, commitHash string) string {
	return "https://github.com/" + repoRef + "/commit/" + commitHash
}
