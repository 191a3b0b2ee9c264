package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/config"
	"github.com/zhubert/ghsync/internal/engine"
	"github.com/zhubert/ghsync/internal/git"
)

var statusCmd = &cobra.Command{
	Use:   "status [workspace]",
	Short: "Show the full GitHub sync picture for a workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}
	ws := cfg.GetWorkspace(id)
	ctx := cmd.Context()

	fmt.Println(labelStyle.Render(ws.Name) + dimStyle.Render("  "+ws.Path))

	resp := eng.ResolveRepoIdentity(ctx, id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	identity, _ := resp.Data.(config.RepoIdentity)
	printIdentity(identity)
	if identity.CurrentBranch == "" && identity.OwnerRepo == "" {
		return nil
	}

	if resp = eng.CommitsBehindBase(ctx, id, ""); resp.Success {
		base := resp.Data.(engine.BehindBase)
		if base.Behind == 0 {
			fmt.Printf("%s up to date with %s\n", successStyle.Render("✓"), base.BaseBranch)
		} else {
			fmt.Printf("%s %d commits behind %s\n", warnStyle.Render("↓"), base.Behind, base.BaseBranch)
		}
	}

	if resp = eng.FindPullRequest(ctx, id); resp.Success {
		if resp.Data == nil {
			fmt.Println(dimStyle.Render("No pull request for the current branch."))
		} else {
			pr := resp.Data.(*git.PullRequest)
			fmt.Printf("%s #%d (%s)  %s\n", labelStyle.Render("PR"), pr.Number, pr.State, pr.URL)
		}
	}

	if resp = eng.CIStatus(ctx, id); resp.Success {
		if resp.Data == nil {
			fmt.Println(dimStyle.Render("No CI data."))
		} else {
			printChecks(resp.Data.(*git.CIStatus))
		}
	}
	return nil
}
