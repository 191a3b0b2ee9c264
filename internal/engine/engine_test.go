package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/zhubert/ghsync/internal/config"
	"github.com/zhubert/ghsync/internal/exec"
	"github.com/zhubert/ghsync/internal/git"
)

func newTestEngine(t *testing.T, mock *exec.MockExecutor) (*Engine, *config.Config) {
	t.Helper()

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	cfg.AddWorkspace(config.Workspace{
		ID:        "ws-1",
		Name:      "widgets",
		Path:      "/repo",
		CreatedAt: time.Now(),
	})

	return NewWithService(cfg, git.NewGitServiceWithExecutor(mock)), cfg
}

func addIdentityProbes(mock *exec.MockExecutor, branch, originURL, upstreamURL string) {
	mock.AddExactMatch("git", []string{"branch", "--show-current"}, exec.MockResponse{
		Stdout: []byte(branch + "\n"),
	})
	if originURL != "" {
		mock.AddExactMatch("git", []string{"remote", "get-url", "origin"}, exec.MockResponse{
			Stdout: []byte(originURL + "\n"),
		})
	} else {
		mock.AddExactMatch("git", []string{"remote", "get-url", "origin"}, exec.MockResponse{
			Err: fmt.Errorf("error: No such remote 'origin'"),
		})
	}
	if upstreamURL != "" {
		mock.AddExactMatch("git", []string{"remote", "get-url", "upstream"}, exec.MockResponse{
			Stdout: []byte(upstreamURL + "\n"),
		})
	} else {
		mock.AddExactMatch("git", []string{"remote", "get-url", "upstream"}, exec.MockResponse{
			Err: fmt.Errorf("error: No such remote 'upstream'"),
		})
	}
}

func TestResolveRepoIdentity_ProbesAndCaches(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	addIdentityProbes(mock, "feature-x", "git@github.com:acme/widgets.git", "")

	e, cfg := newTestEngine(t, mock)

	resp := e.ResolveRepoIdentity(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("resolve failed: %s", resp.Error)
	}

	identity, okType := resp.Data.(config.RepoIdentity)
	if !okType {
		t.Fatalf("Data is %T, want config.RepoIdentity", resp.Data)
	}
	if identity.OwnerRepo != "acme/widgets" || identity.IsFork {
		t.Errorf("identity = %+v", identity)
	}

	cached := cfg.GetCachedIdentity("ws-1")
	if !cached.Valid() {
		t.Fatal("identity should be cached after probe")
	}

	// Second resolve: cache hit, zero subprocess invocations.
	before := mock.CallCount()
	resp2 := e.ResolveRepoIdentity(context.Background(), "ws-1")
	if !resp2.Success {
		t.Fatalf("second resolve failed: %s", resp2.Error)
	}
	if mock.CallCount() != before {
		t.Errorf("cache hit ran %d extra commands", mock.CallCount()-before)
	}
	if resp2.Data.(config.RepoIdentity) != identity {
		t.Errorf("cached identity %+v differs from probed %+v", resp2.Data, identity)
	}
}

func TestResolveRepoIdentity_MissingWorkspace(t *testing.T) {
	e, _ := newTestEngine(t, exec.NewMockExecutor(nil))

	resp := e.ResolveRepoIdentity(context.Background(), "nope")
	if resp.Success {
		t.Error("expected failure for missing workspace")
	}
	if resp.Error == "" {
		t.Error("expected error message")
	}
}

func TestResolveRepoIdentity_EmptyProbeStillSucceeds(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	addIdentityProbes(mock, "", "", "")

	e, _ := newTestEngine(t, mock)

	resp := e.ResolveRepoIdentity(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("empty probe should succeed with empty identity, got: %s", resp.Error)
	}
	identity := resp.Data.(config.RepoIdentity)
	if identity.Valid() {
		t.Errorf("identity should be invalid, got %+v", identity)
	}
}

func TestFindPullRequest_UsesCachedIdentity(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("gh", []string{"pr", "view", "alice:feature-x", "--repo", "acme/widgets", "--json", "number,url,state,isDraft"}, exec.MockResponse{
		Stdout: []byte(`{"number":42,"url":"https://github.com/acme/widgets/pull/42","state":"OPEN","isDraft":false}`),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch:   "feature-x",
		OwnerRepo:       "acme/widgets",
		IsFork:          true,
		OriginOwnerRepo: "alice/widgets",
	})

	resp := e.FindPullRequest(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("FindPullRequest failed: %s", resp.Error)
	}

	pr, okType := resp.Data.(*git.PullRequest)
	if !okType {
		t.Fatalf("Data is %T, want *git.PullRequest", resp.Data)
	}
	if pr.Number != 42 || pr.State != git.PRStateOpen {
		t.Errorf("pr = %+v", pr)
	}
}

func TestFindPullRequest_NoIdentityIsNullNotError(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	addIdentityProbes(mock, "", "", "")

	e, _ := newTestEngine(t, mock)

	resp := e.FindPullRequest(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("expected success with nil data, got error: %s", resp.Error)
	}
	if resp.Data != nil {
		t.Errorf("Data = %+v, want nil", resp.Data)
	}
}

func TestFindPullRequest_NoPRIsNullNotError(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddPrefixMatch("gh", []string{"pr", "view"}, exec.MockResponse{
		Err: fmt.Errorf("no pull requests found"),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.FindPullRequest(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("missing PR should not be an error: %s", resp.Error)
	}
	if resp.Data != nil {
		t.Errorf("Data = %+v, want nil", resp.Data)
	}
}

func TestMarkPullRequestReady(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("gh", []string{"pr", "ready", "feature-x", "--repo", "acme/widgets"}, exec.MockResponse{})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.MarkPullRequestReady(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("MarkPullRequestReady failed: %s", resp.Error)
	}
}

func TestMarkPullRequestReady_AllRemotesFail(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddPrefixMatch("gh", []string{"pr", "ready"}, exec.MockResponse{
		Err: fmt.Errorf("not found"),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.MarkPullRequestReady(context.Background(), "ws-1")
	if resp.Success {
		t.Error("expected failure when every remote rejects pr ready")
	}
}

func TestCommitGitHubURL(t *testing.T) {
	mock := exec.NewMockExecutor(nil)

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch:   "feature-x",
		OwnerRepo:       "acme/widgets",
		IsFork:          true,
		OriginOwnerRepo: "alice/widgets",
	})

	resp := e.CommitGitHubURL(context.Background(), "ws-1", "abc123")
	if !resp.Success {
		t.Fatalf("CommitGitHubURL failed: %s", resp.Error)
	}
	want := "https://github.com/acme/widgets/commit/abc123"
	if resp.Data != want {
		t.Errorf("Data = %v, want %q", resp.Data, want)
	}

	// Identity was cached, so no subprocess should have run.
	if mock.CallCount() != 0 {
		t.Errorf("expected no commands, got %d", mock.CallCount())
	}
}

func TestCommitsBehindBase(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"fetch", "upstream", "main"}, exec.MockResponse{})
	mock.AddExactMatch("git", []string{"rev-list", "HEAD..upstream/main", "--count"}, exec.MockResponse{
		Stdout: []byte("6\n"),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch:   "feature-x",
		OwnerRepo:       "acme/widgets",
		IsFork:          true,
		OriginOwnerRepo: "alice/widgets",
	})

	resp := e.CommitsBehindBase(context.Background(), "ws-1", "main")
	if !resp.Success {
		t.Fatalf("CommitsBehindBase failed: %s", resp.Error)
	}

	data := resp.Data.(BehindBase)
	if data.Behind != 6 || data.BaseBranch != "main" {
		t.Errorf("data = %+v", data)
	}
}

func TestCommitsBehindBase_DefaultsToWorkspaceBase(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"fetch", "origin", "develop"}, exec.MockResponse{})
	mock.AddExactMatch("git", []string{"rev-list", "HEAD..origin/develop", "--count"}, exec.MockResponse{
		Stdout: []byte("2\n"),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetWorkspaceBaseBranch("ws-1", "develop")
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.CommitsBehindBase(context.Background(), "ws-1", "")
	if !resp.Success {
		t.Fatalf("CommitsBehindBase failed: %s", resp.Error)
	}
	data := resp.Data.(BehindBase)
	if data.BaseBranch != "develop" || data.Behind != 2 {
		t.Errorf("data = %+v", data)
	}
}

func TestPullRequestRemoteCommits(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"branch", "--show-current"}, exec.MockResponse{
		Stdout: []byte("feature-x\n"),
	})
	mock.AddExactMatch("git", []string{"config", "branch.feature-x.pushRemote"}, exec.MockResponse{
		ExitCode: 1,
		Err:      fmt.Errorf("exit status 1"),
	})
	mock.AddExactMatch("git", []string{"config", "branch.feature-x.remote"}, exec.MockResponse{
		Stdout: []byte("origin\n"),
	})
	mock.AddExactMatch("git", []string{"fetch", "origin", "feature-x"}, exec.MockResponse{})
	mock.AddExactMatch("git", []string{"rev-parse", "--verify", "--quiet", "origin/feature-x"}, exec.MockResponse{
		Stdout: []byte("abc\n"),
	})
	mock.AddExactMatch("git", []string{"rev-list", "origin/feature-x..HEAD", "--count"}, exec.MockResponse{
		Stdout: []byte("1\n"),
	})
	mock.AddExactMatch("git", []string{"rev-list", "HEAD..origin/feature-x", "--count"}, exec.MockResponse{
		Stdout: []byte("0\n"),
	})

	e, _ := newTestEngine(t, mock)

	resp := e.PullRequestRemoteCommits(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("PullRequestRemoteCommits failed: %s", resp.Error)
	}
	counts := resp.Data.(git.SyncCounts)
	if counts.Ahead != 1 || counts.Behind != 0 || counts.Branch != "feature-x" {
		t.Errorf("counts = %+v", counts)
	}
}

func TestCIStatus(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("gh", []string{"pr", "checks", "feature-x", "--repo", "acme/widgets", "--json", "name,state,link"}, exec.MockResponse{
		Stdout: []byte(`[{"name":"build","state":"SUCCESS"}]`),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.CIStatus(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("CIStatus failed: %s", resp.Error)
	}
	status := resp.Data.(*git.CIStatus)
	if status.Rollup != git.RollupSuccess {
		t.Errorf("Rollup = %s, want success", status.Rollup)
	}
}

func TestCIStatus_NoData(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddPrefixMatch("gh", []string{"pr", "checks"}, exec.MockResponse{
		Stdout: []byte(`[]`),
	})

	e, cfg := newTestEngine(t, mock)
	cfg.SetCachedIdentity("ws-1", config.RepoIdentity{
		CurrentBranch: "feature-x",
		OwnerRepo:     "acme/widgets",
	})

	resp := e.CIStatus(context.Background(), "ws-1")
	if !resp.Success {
		t.Fatalf("CIStatus failed: %s", resp.Error)
	}
	if resp.Data != nil {
		t.Errorf("Data = %+v, want nil for no CI data", resp.Data)
	}
}
