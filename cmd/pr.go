package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/git"
)

var prCmd = &cobra.Command{
	Use:   "pr [workspace]",
	Short: "Show the pull request for the current branch",
	Long: `Looks up the pull request for the workspace's current branch. For forks
the upstream repository is checked first, then the origin, so cross-fork
pull requests are found without extra flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPR,
}

var prReadyCmd = &cobra.Command{
	Use:   "ready [workspace]",
	Short: "Mark the current branch's draft pull request as ready",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPRReady,
}

var prCommitCmd = &cobra.Command{
	Use:   "commit <hash> [workspace]",
	Short: "Print the GitHub URL for a commit",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPRCommit,
}

func init() {
	prCmd.AddCommand(prReadyCmd)
	prCmd.AddCommand(prCommitCmd)
	rootCmd.AddCommand(prCmd)
}

func runPR(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}

	resp := eng.FindPullRequest(cmd.Context(), id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	if resp.Data == nil {
		fmt.Println(dimStyle.Render("No pull request for the current branch."))
		return nil
	}

	pr := resp.Data.(*git.PullRequest)
	state := string(pr.State)
	switch pr.State {
	case git.PRStateMerged:
		state = successStyle.Render(state)
	case git.PRStateDraft:
		state = dimStyle.Render(state)
	default:
		state = warnStyle.Render(state)
	}
	fmt.Printf("%s #%d (%s)\n%s\n", labelStyle.Render("PR"), pr.Number, state, pr.URL)
	return nil
}

func runPRReady(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}

	resp := eng.MarkPullRequestReady(cmd.Context(), id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	fmt.Println(successStyle.Render("Pull request marked ready for review."))
	return nil
}

func runPRCommit(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args[1:])
	if err != nil {
		return err
	}

	resp := eng.CommitGitHubURL(cmd.Context(), id, args[0])
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	fmt.Println(resp.Data)
	return nil
}
