package git

import (
	"context"
	"strings"
	"sync"

	"github.com/zhubert/ghsync/internal/logger"
)

// SyncCounts reports how far a local branch has diverged from a remote
// ref. Recomputed on every call; remote state changes too often to cache.
type SyncCounts struct {
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
	Branch string `json:"branch,omitempty"`
}

// CommitsBehindBase counts commits on the base branch that HEAD does not
// have. A fork compares against upstream, everything else against origin.
// The fetch is best-effort: stale local refs are acceptable, and a
// missing ref counts as zero.
func (s *GitService) CommitsBehindBase(ctx context.Context, repoPath, baseBranch string, isFork bool) int {
	remoteName := "origin"
	if isFork {
		remoteName = "upstream"
	}

	// Tolerate fetch failure: offline or auth problems leave us counting
	// against whatever refs are already local.
	if err := s.executor.Run(ctx, repoPath, "git", "fetch", remoteName, baseBranch); err != nil {
		logger.WithComponent("git").Debug("fetch failed, using stale refs", "remote", remoteName, "branch", baseBranch, "error", err)
	}

	return s.revListCount(ctx, repoPath, "HEAD.."+remoteName+"/"+baseBranch)
}

// pushDestination resolves which remote the current branch actually
// pushes to: branch.<b>.pushRemote first, then branch.<b>.remote, then
// the literal "origin". In fork workflows the tracking remote is often
// upstream while the PR commits live on the contributor's own push
// target; conflating the two produces wrong ahead/behind numbers.
// fromTracking reports whether the answer came from branch.<b>.remote,
// which permits a one-shot origin retry when the ref turns out missing.
func (s *GitService) pushDestination(ctx context.Context, repoPath, branch string) (remoteName string, fromTracking bool) {
	if out, err := s.executor.Output(ctx, repoPath, "git", "config", "branch."+branch+".pushRemote"); err == nil {
		if v := strings.TrimSpace(string(out)); v != "" {
			return v, false
		}
	}
	if out, err := s.executor.Output(ctx, repoPath, "git", "config", "branch."+branch+".remote"); err == nil {
		if v := strings.TrimSpace(string(out)); v != "" {
			return v, true
		}
	}
	return "origin", false
}

// RemoteCommits computes ahead/behind between the current branch and its
// push destination's copy of the branch.
func (s *GitService) RemoteCommits(ctx context.Context, repoPath string) SyncCounts {
	log := logger.WithComponent("git")

	branch := s.CurrentBranch(ctx, repoPath)
	if branch == "" {
		return SyncCounts{}
	}

	remoteName, fromTracking := s.pushDestination(ctx, repoPath, branch)

	if err := s.executor.Run(ctx, repoPath, "git", "fetch", remoteName, branch); err != nil {
		log.Debug("fetch failed, using stale refs", "remote", remoteName, "branch", branch, "error", err)
	}

	if !s.remoteRefExists(ctx, repoPath, remoteName, branch) {
		// The tracking remote may not hold the branch at all (it often
		// points at upstream in fork setups). Retry once against origin
		// unless an explicit pushRemote said otherwise.
		if fromTracking && remoteName != "origin" {
			remoteName = "origin"
			if err := s.executor.Run(ctx, repoPath, "git", "fetch", remoteName, branch); err != nil {
				log.Debug("origin retry fetch failed", "branch", branch, "error", err)
			}
			if !s.remoteRefExists(ctx, repoPath, remoteName, branch) {
				return SyncCounts{Branch: branch}
			}
		} else {
			return SyncCounts{Branch: branch}
		}
	}

	remoteRef := remoteName + "/" + branch

	// Ahead and behind have no data dependency; count them concurrently.
	var ahead, behind int
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ahead = s.revListCount(ctx, repoPath, remoteRef+"..HEAD")
	}()
	go func() {
		defer wg.Done()
		behind = s.revListCount(ctx, repoPath, "HEAD.."+remoteRef)
	}()
	wg.Wait()

	return SyncCounts{Ahead: ahead, Behind: behind, Branch: branch}
}
