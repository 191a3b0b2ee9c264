package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/config"
)

var refreshIdentity bool

var identityCmd = &cobra.Command{
	Use:   "identity [workspace]",
	Short: "Show the workspace's repository identity",
	Long: `Shows the current branch, owner/repo, and fork status for a workspace.
The identity is cached after the first probe; use --refresh to force a
re-probe when remotes or branches have changed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIdentity,
}

func init() {
	identityCmd.Flags().BoolVar(&refreshIdentity, "refresh", false, "Discard the cached identity and re-probe")
	rootCmd.AddCommand(identityCmd)
}

func runIdentity(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}

	if refreshIdentity {
		cfg.ClearCachedIdentity(id)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
	}

	resp := eng.ResolveRepoIdentity(cmd.Context(), id)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	identity, _ := resp.Data.(config.RepoIdentity)
	printIdentity(identity)
	return nil
}

func printIdentity(identity config.RepoIdentity) {
	if identity.CurrentBranch == "" && identity.OwnerRepo == "" {
		fmt.Println(dimStyle.Render("No repository information available."))
		return
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Branch:"), identity.CurrentBranch)
	fmt.Printf("%s %s\n", labelStyle.Render("Repository:"), identity.OwnerRepo)
	if identity.IsFork {
		fmt.Printf("%s fork of %s (origin %s)\n", labelStyle.Render("Fork:"), identity.OwnerRepo, identity.OriginOwnerRepo)
	}
}
