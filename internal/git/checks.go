package git

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/zhubert/ghsync/internal/exec"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/remote"
)

// CheckStatus is the lifecycle phase of a CI check.
type CheckStatus string

const (
	CheckQueued     CheckStatus = "queued"
	CheckInProgress CheckStatus = "in_progress"
	CheckCompleted  CheckStatus = "completed"
)

// CheckConclusion is the outcome of a completed check. Empty means the
// external state carried no usable conclusion.
type CheckConclusion string

const (
	ConclusionSuccess        CheckConclusion = "success"
	ConclusionFailure        CheckConclusion = "failure"
	ConclusionNeutral        CheckConclusion = "neutral"
	ConclusionCancelled      CheckConclusion = "cancelled"
	ConclusionSkipped        CheckConclusion = "skipped"
	ConclusionTimedOut       CheckConclusion = "timed_out"
	ConclusionActionRequired CheckConclusion = "action_required"
	ConclusionNone           CheckConclusion = ""
)

// NormalizedCheck is one CI check in canonical form.
type NormalizedCheck struct {
	Name       string          `json:"name"`
	Link       string          `json:"link,omitempty"`
	Status     CheckStatus     `json:"status"`
	Conclusion CheckConclusion `json:"conclusion,omitempty"`
}

// RollupState is the single aggregate status over all checks.
type RollupState string

const (
	RollupFailure    RollupState = "failure"
	RollupInProgress RollupState = "in_progress"
	RollupPending    RollupState = "pending"
	RollupSuccess    RollupState = "success"
	RollupNeutral    RollupState = "neutral"
)

// CIStatus is the normalized result of a gh pr checks call. A nil
// *CIStatus means no CI data exists for the branch.
type CIStatus struct {
	Checks       []NormalizedCheck `json:"checks"`
	Rollup       RollupState       `json:"rollup"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
}

// NormalizeCheckState maps an external check state onto the canonical
// {status, conclusion} pair. The table is exhaustive over the states gh
// reports; anything unrecognized is completed with no conclusion.
func NormalizeCheckState(state string) (CheckStatus, CheckConclusion) {
	switch strings.ToUpper(state) {
	case "PENDING", "QUEUED", "WAITING":
		return CheckQueued, ConclusionNone
	case "IN_PROGRESS":
		return CheckInProgress, ConclusionNone
	case "SUCCESS":
		return CheckCompleted, ConclusionSuccess
	case "FAILURE", "ERROR":
		return CheckCompleted, ConclusionFailure
	case "CANCELLED":
		return CheckCompleted, ConclusionCancelled
	case "SKIPPED":
		return CheckCompleted, ConclusionSkipped
	case "NEUTRAL":
		return CheckCompleted, ConclusionNeutral
	case "TIMED_OUT":
		return CheckCompleted, ConclusionTimedOut
	case "ACTION_REQUIRED":
		return CheckCompleted, ConclusionActionRequired
	default:
		return CheckCompleted, ConclusionNone
	}
}

// Rollup aggregates normalized checks by strict priority: any failure
// wins, then any run still in progress, then anything queued, then
// success when every conclusion is success, skipped, or neutral.
// Skipped and neutral checks count toward "all checks succeeded."
func Rollup(checks []NormalizedCheck) RollupState {
	if len(checks) == 0 {
		return RollupNeutral
	}

	anyInProgress := false
	anyQueued := false
	allBenign := true

	for _, c := range checks {
		switch {
		case c.Conclusion == ConclusionFailure:
			return RollupFailure
		case c.Status == CheckInProgress:
			anyInProgress = true
		case c.Status == CheckQueued:
			anyQueued = true
		}
		if c.Conclusion != ConclusionSuccess && c.Conclusion != ConclusionSkipped && c.Conclusion != ConclusionNeutral {
			allBenign = false
		}
	}

	switch {
	case anyInProgress:
		return RollupInProgress
	case anyQueued:
		return RollupPending
	case allBenign:
		return RollupSuccess
	default:
		return RollupNeutral
	}
}

type ghCheck struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Link  string `json:"link"`
}

// CIStatusFor fetches and normalizes CI checks for branch, trying each
// remote attempt in order. gh pr checks exits nonzero when any check is
// failing or pending, so the stdout JSON is parsed regardless of exit
// code. Returns nil when no attempt yields check data: "no CI data" is
// distinct from an empty success rollup.
func (s *GitService) CIStatusFor(ctx context.Context, repoPath, branch string, attempts []remote.Attempt, originOwnerRepo string) *CIStatus {
	log := logger.WithComponent("github")

	for _, attempt := range attempts {
		branchRef := remote.BranchRef(attempt, branch, originOwnerRepo)

		res := s.executor.Execute(ctx, exec.Spec{
			Dir:     repoPath,
			Name:    "gh",
			Args:    []string{"pr", "checks", branchRef, "--repo", attempt.RepoRef, "--json", "name,state,link"},
			Timeout: prLookupTimeout,
		})
		if len(strings.TrimSpace(string(res.Stdout))) == 0 {
			log.Debug("pr checks attempt yielded no output", "repo", attempt.RepoRef, "branchRef", branchRef, "exitCode", res.ExitCode)
			continue
		}

		var raw []ghCheck
		if err := json.Unmarshal(res.Stdout, &raw); err != nil {
			log.Debug("pr checks returned malformed JSON, trying next remote", "repo", attempt.RepoRef, "error", err)
			continue
		}
		if len(raw) == 0 {
			continue
		}

		return normalizeChecks(raw)
	}

	return nil
}

func normalizeChecks(raw []ghCheck) *CIStatus {
	status := &CIStatus{Checks: make([]NormalizedCheck, 0, len(raw))}
	for _, c := range raw {
		st, concl := NormalizeCheckState(c.State)
		status.Checks = append(status.Checks, NormalizedCheck{
			Name:       c.Name,
			Link:       c.Link,
			Status:     st,
			Conclusion: concl,
		})
		switch concl {
		case ConclusionSuccess:
			status.SuccessCount++
		case ConclusionFailure:
			status.FailureCount++
		}
	}
	status.Rollup = Rollup(status.Checks)
	return status
}
