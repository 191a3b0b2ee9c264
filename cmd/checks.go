package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/git"
)

var checksCmd = &cobra.Command{
	Use:   "checks [workspace]",
	Short: "Show CI check status for the current branch's pull request",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChecks,
}

func init() {
	rootCmd.AddCommand(checksCmd)
}

func runChecks(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}

	resp := eng.CIStatus(cmd.Context(), id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	if resp.Data == nil {
		fmt.Println(dimStyle.Render("No CI data for the current branch."))
		return nil
	}

	status := resp.Data.(*git.CIStatus)
	printChecks(status)
	return nil
}

func printChecks(status *git.CIStatus) {
	fmt.Printf("%s %s (%d passed, %d failed)\n",
		labelStyle.Render("CI:"), styleRollup(string(status.Rollup)),
		status.SuccessCount, status.FailureCount)

	for _, check := range status.Checks {
		marker := checkMarker(check)
		line := fmt.Sprintf("  %s %s", marker, check.Name)
		if check.Link != "" {
			line += dimStyle.Render("  " + check.Link)
		}
		fmt.Println(line)
	}
}

func checkMarker(check git.NormalizedCheck) string {
	if check.Status != git.CheckCompleted {
		return warnStyle.Render("●")
	}
	switch check.Conclusion {
	case git.ConclusionSuccess:
		return successStyle.Render("✓")
	case git.ConclusionFailure, git.ConclusionTimedOut, git.ConclusionActionRequired:
		return failureStyle.Render("✗")
	default:
		return dimStyle.Render("−")
	}
}
