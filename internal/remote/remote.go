// Package remote classifies GitHub remote URLs and decides which remote
// to address for PR, CI, and sync operations. All functions are pure;
// callers supply the URLs and identity facts.
package remote

import "strings"

// OwnerRepo is a parsed GitHub "owner/repo" pair.
type OwnerRepo struct {
	Owner string
	Repo  string
}

// String returns the canonical "owner/repo" form.
func (o OwnerRepo) String() string {
	return o.Owner + "/" + o.Repo
}

// Attempt addresses one remote for a fallback loop.
type Attempt struct {
	RepoRef     string // "owner/repo" passed to gh --repo
	RemoteLabel string // "origin" or "upstream"
}

// ParseOwnerRepo extracts the owner/repo pair from a GitHub remote URL.
// Both SSH (git@github.com:owner/repo) and HTTPS
// (https://github.com/owner/repo) forms are supported, with or without a
// .git suffix. Non-GitHub URLs return ok=false.
func ParseOwnerRepo(url string) (OwnerRepo, bool) {
	url = strings.TrimSpace(url)

	var rest string
	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		rest = strings.TrimPrefix(url, "git@github.com:")
	case strings.HasPrefix(url, "https://github.com/"):
		rest = strings.TrimPrefix(url, "https://github.com/")
	default:
		return OwnerRepo{}, false
	}

	rest = strings.TrimSuffix(rest, ".git")
	rest = strings.TrimSuffix(rest, "/")

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return OwnerRepo{}, false
	}

	return OwnerRepo{Owner: parts[0], Repo: parts[1]}, true
}

// IsForkOf reports whether origin is a fork of upstream: same repository
// name, different owner. False when either URL fails to parse, and false
// when origin and upstream point at the same owner/repo.
func IsForkOf(originURL, upstreamURL string) bool {
	origin, ok := ParseOwnerRepo(originURL)
	if !ok {
		return false
	}
	upstream, ok := ParseOwnerRepo(upstreamURL)
	if !ok {
		return false
	}
	return origin.Repo == upstream.Repo && origin.Owner != upstream.Owner
}

// AttemptsFor returns the ordered remotes to try for a remote-dependent
// operation. In a fork workflow the upstream repository is tried first
// (the PR conventionally lives there), then the contributor's origin.
// Otherwise only the resolved repository is tried. Every remote-dependent
// call site must consume this single ordering so the fork-preference
// policy cannot drift.
func AttemptsFor(ownerRepo, originOwnerRepo string, isFork bool) []Attempt {
	if ownerRepo == "" {
		return nil
	}

	if isFork && originOwnerRepo != "" && originOwnerRepo != ownerRepo {
		return []Attempt{
			{RepoRef: ownerRepo, RemoteLabel: "upstream"},
			{RepoRef: originOwnerRepo, RemoteLabel: "origin"},
		}
	}

	return []Attempt{{RepoRef: ownerRepo, RemoteLabel: "origin"}}
}

// BranchRef returns the branch reference to pass to gh for the given
// attempt. Addressing the upstream remote of a fork requires GitHub's
// cross-fork qualification "<origin-owner>:<branch>"; origin takes the
// bare branch name.
func BranchRef(attempt Attempt, branch, originOwnerRepo string) string {
	if attempt.RemoteLabel != "upstream" {
		return branch
	}

	owner, _, found := strings.Cut(originOwnerRepo, "/")
	if !found || owner == "" {
		return branch
	}
	return owner + ":" + branch
}
