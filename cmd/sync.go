package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/engine"
	"github.com/zhubert/ghsync/internal/git"
)

var syncBaseBranch string

var syncCmd = &cobra.Command{
	Use:   "sync [workspace]",
	Short: "Show how far the branch has drifted from its remotes",
	Long: `Reports two distances: commits on the base branch the workspace does
not have, and the ahead/behind counts between the current branch and
the remote it pushes to.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncBaseBranch, "base", "", "Base branch to compare against (defaults to the workspace's configured base)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}

	resp := eng.CommitsBehindBase(cmd.Context(), id, syncBaseBranch)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	base := resp.Data.(engine.BehindBase)
	if base.Behind == 0 {
		fmt.Printf("%s up to date with %s\n", successStyle.Render("✓"), base.BaseBranch)
	} else {
		fmt.Printf("%s %d commits behind %s\n", warnStyle.Render("↓"), base.Behind, base.BaseBranch)
	}

	resp = eng.PullRequestRemoteCommits(cmd.Context(), id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	counts := resp.Data.(git.SyncCounts)
	if counts.Branch == "" {
		fmt.Println(dimStyle.Render("No current branch; skipping push remote comparison."))
		return nil
	}
	fmt.Printf("%s %s: %d ahead, %d behind its push remote\n",
		labelStyle.Render("Branch"), counts.Branch, counts.Ahead, counts.Behind)
	return nil
}
