// Package engine orchestrates the sync operations exposed to the CLI:
// identity resolution with caching, PR lookup and mutation, ahead/behind
// math, and CI status. Every operation takes a workspace id and returns a
// Response; errors never cross this boundary as panics or raw error
// values.
package engine

import (
	"context"

	"github.com/zhubert/ghsync/internal/config"
	apperrors "github.com/zhubert/ghsync/internal/errors"
	"github.com/zhubert/ghsync/internal/exec"
	"github.com/zhubert/ghsync/internal/git"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/remote"
	"github.com/zhubert/ghsync/internal/timeline"
)

// Response is the uniform result envelope for engine operations.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(data any) Response {
	return Response{Success: true, Data: data}
}

func fail(msg string) Response {
	return Response{Success: false, Error: msg}
}

// BehindBase reports how far a workspace's branch trails its base branch.
type BehindBase struct {
	Behind     int    `json:"behind"`
	BaseBranch string `json:"base_branch"`
}

// Engine wires the config store, git service, and audit trail together.
type Engine struct {
	cfg *config.Config
	git *git.GitService
}

// New creates an engine backed by real subprocesses, auditing write
// operations to the default timeline file.
func New(cfg *config.Config) *Engine {
	var executor *exec.RealExecutor
	if path, err := timeline.DefaultPath(); err == nil {
		executor = exec.NewRealExecutorWithAuditor(timeline.NewRecorder(path))
	} else {
		logger.WithComponent("engine").Warn("timeline disabled", "error", err)
		executor = exec.NewRealExecutor()
	}
	return &Engine{cfg: cfg, git: git.NewGitServiceWithExecutor(executor)}
}

// NewWithService creates an engine with an injected git service.
// This is primarily used for testing.
func NewWithService(cfg *config.Config, svc *git.GitService) *Engine {
	return &Engine{cfg: cfg, git: svc}
}

// ResolveRepoIdentity returns the workspace's repository identity,
// probing and caching it when the cached record is missing or invalid.
// A probe that finds nothing still succeeds with an empty identity;
// "no info available" is not an error.
func (e *Engine) ResolveRepoIdentity(ctx context.Context, workspaceID string) Response {
	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}
	return ok(identity)
}

// resolveIdentity is the shared cache-or-probe path. A non-nil Response
// means the operation failed before an identity could be produced.
func (e *Engine) resolveIdentity(ctx context.Context, workspaceID string) (config.RepoIdentity, *Response) {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		r := fail(apperrors.WorkspaceNotFound(workspaceID).Error())
		return config.RepoIdentity{}, &r
	}

	if cached := e.cfg.GetCachedIdentity(workspaceID); cached.Valid() {
		return *cached, nil
	}

	identity := e.git.ProbeIdentity(ctx, ws.Path)

	// Whole-record write: partial updates could leave a record that
	// passes the cache-hit check but is unusable.
	e.cfg.SetCachedIdentity(workspaceID, identity)
	if err := e.cfg.Save(); err != nil {
		r := fail("failed to persist identity cache: " + err.Error())
		return config.RepoIdentity{}, &r
	}

	return identity, nil
}

func attemptsFor(identity config.RepoIdentity) []remote.Attempt {
	return remote.AttemptsFor(identity.OwnerRepo, identity.OriginOwnerRepo, identity.IsFork)
}

// FindPullRequest looks up the PR for the workspace's current branch.
// Data is nil when no PR exists; that is a success, not an error.
func (e *Engine) FindPullRequest(ctx context.Context, workspaceID string) Response {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		return fail(apperrors.WorkspaceNotFound(workspaceID).Error())
	}

	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}
	if identity.CurrentBranch == "" || identity.OwnerRepo == "" {
		return ok(nil)
	}

	pr := e.git.FindPullRequest(ctx, ws.Path, identity.CurrentBranch, attemptsFor(identity), identity.OriginOwnerRepo)
	if pr == nil {
		return ok(nil)
	}
	return ok(pr)
}

// MarkPullRequestReady flips the workspace's draft PR to ready.
func (e *Engine) MarkPullRequestReady(ctx context.Context, workspaceID string) Response {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		return fail(apperrors.WorkspaceNotFound(workspaceID).Error())
	}

	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}
	if identity.CurrentBranch == "" || identity.OwnerRepo == "" {
		return fail("repository identity unresolved")
	}

	if !e.git.MarkPullRequestReady(ctx, ws.Path, identity.CurrentBranch, workspaceID, attemptsFor(identity), identity.OriginOwnerRepo) {
		return fail("could not mark pull request ready on any remote")
	}
	return ok(true)
}

// CommitGitHubURL builds the web URL for a commit in the workspace's
// repository. No subprocess runs once the identity is resolved.
func (e *Engine) CommitGitHubURL(ctx context.Context, workspaceID, commitHash string) Response {
	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}

	attempts := attemptsFor(identity)
	if len(attempts) == 0 {
		return fail("repository identity unresolved")
	}
	return ok(git.CommitURL(attempts[0].RepoRef, commitHash))
}

// CommitsBehindBase counts commits on the base branch that the workspace
// does not have. An empty baseBranch falls back to the workspace's
// configured base branch, then to the repository default.
func (e *Engine) CommitsBehindBase(ctx context.Context, workspaceID, baseBranch string) Response {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		return fail(apperrors.WorkspaceNotFound(workspaceID).Error())
	}

	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}

	if baseBranch == "" {
		baseBranch = ws.BaseBranch
	}
	if baseBranch == "" {
		baseBranch = e.git.GetDefaultBranch(ctx, ws.Path)
	}

	behind := e.git.CommitsBehindBase(ctx, ws.Path, baseBranch, identity.IsFork)
	return ok(BehindBase{Behind: behind, BaseBranch: baseBranch})
}

// PullRequestRemoteCommits computes ahead/behind between the current
// branch and its push destination.
func (e *Engine) PullRequestRemoteCommits(ctx context.Context, workspaceID string) Response {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		return fail(apperrors.WorkspaceNotFound(workspaceID).Error())
	}
	return ok(e.git.RemoteCommits(ctx, ws.Path))
}

// CIStatus fetches and normalizes CI checks for the workspace's branch.
// Data is nil when no CI data exists.
func (e *Engine) CIStatus(ctx context.Context, workspaceID string) Response {
	ws := e.cfg.GetWorkspace(workspaceID)
	if ws == nil {
		return fail(apperrors.WorkspaceNotFound(workspaceID).Error())
	}

	identity, resp := e.resolveIdentity(ctx, workspaceID)
	if resp != nil {
		return *resp
	}
	if identity.CurrentBranch == "" || identity.OwnerRepo == "" {
		return ok(nil)
	}

	status := e.git.CIStatusFor(ctx, ws.Path, identity.CurrentBranch, attemptsFor(identity), identity.OriginOwnerRepo)
	if status == nil {
		return ok(nil)
	}
	return ok(status)
}
