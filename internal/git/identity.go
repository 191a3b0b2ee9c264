package git

import (
	"context"
	"sync"

	"github.com/zhubert/ghsync/internal/config"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/remote"
)

// ProbeIdentity inspects the repository at repoPath and builds its
// RepoIdentity from scratch: current branch, resolved owner/repo, fork
// flag, and the origin owner/repo. The origin and upstream URL probes
// have no data dependency and run concurrently.
//
// Probe failures yield an empty identity rather than an error. A missing
// remote, a detached HEAD, or a directory that is not a repository are
// all normal states the caller renders as "no info available."
func (s *GitService) ProbeIdentity(ctx context.Context, repoPath string) config.RepoIdentity {
	log := logger.WithComponent("git")

	branch := s.CurrentBranch(ctx, repoPath)

	var originURL, upstreamURL string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		originURL = s.RemoteURL(ctx, repoPath, "origin")
	}()
	go func() {
		defer wg.Done()
		upstreamURL = s.RemoteURL(ctx, repoPath, "upstream")
	}()
	wg.Wait()

	originParts, originOK := remote.ParseOwnerRepo(originURL)
	upstreamParts, upstreamOK := remote.ParseOwnerRepo(upstreamURL)

	identity := config.RepoIdentity{CurrentBranch: branch}

	if originOK {
		identity.OriginOwnerRepo = originParts.String()
	}

	isFork := remote.IsForkOf(originURL, upstreamURL)
	identity.IsFork = isFork

	// Preferred owner/repo: upstream when forked, else origin, else
	// upstream when origin is absent or unparseable.
	switch {
	case isFork:
		identity.OwnerRepo = upstreamParts.String()
	case originOK:
		identity.OwnerRepo = originParts.String()
	case upstreamOK:
		identity.OwnerRepo = upstreamParts.String()
	}

	log.Debug("probed repo identity",
		"path", repoPath,
		"branch", branch,
		"ownerRepo", identity.OwnerRepo,
		"isFork", identity.IsFork,
		"originOwnerRepo", identity.OriginOwnerRepo,
	)

	return identity
}
