package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/config"
)

var workspaceBaseBranch string

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage tracked repositories",
	Long:  `Commands for registering, listing, and removing the repositories ghsync tracks.`,
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a repository",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceAdd,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered repositories",
	RunE:  runWorkspaceList,
}

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop tracking a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceRemove,
}

var workspaceRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceRename,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceUse,
}

func init() {
	workspaceAddCmd.Flags().StringVar(&workspaceBaseBranch, "base", "", "Base branch to compare against (defaults to the repository default)")
	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceRemoveCmd)
	workspaceCmd.AddCommand(workspaceRenameCmd)
	workspaceCmd.AddCommand(workspaceUseCmd)
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspaceAdd(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[1], err)
	}

	ws := config.Workspace{
		ID:         uuid.NewString(),
		Name:       args[0],
		Path:       path,
		BaseBranch: workspaceBaseBranch,
		CreatedAt:  time.Now(),
	}
	if !cfg.AddWorkspace(ws) {
		return fmt.Errorf("a workspace with that name or path already exists")
	}
	if cfg.GetActiveWorkspaceID() == "" {
		cfg.SetActiveWorkspaceID(ws.ID)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Printf("Added %s (%s)\n", ws.Name, ws.Path)
	return nil
}

func runWorkspaceList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	workspaces := cfg.GetWorkspaces()
	if len(workspaces) == 0 {
		fmt.Println("No workspaces. Add one with 'ghsync workspace add <name> <path>'.")
		return nil
	}

	activeID := cfg.GetActiveWorkspaceID()
	for _, ws := range workspaces {
		marker := "  "
		if ws.ID == activeID {
			marker = "* "
		}
		line := fmt.Sprintf("%s%s  %s", marker, labelStyle.Render(ws.Name), ws.Path)
		if ws.BaseBranch != "" {
			line += dimStyle.Render("  (base: " + ws.BaseBranch + ")")
		}
		if ws.Identity != nil && ws.Identity.OwnerRepo != "" {
			line += dimStyle.Render("  " + ws.Identity.OwnerRepo)
		}
		fmt.Println(line)
	}
	return nil
}

func runWorkspaceRemove(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ws := cfg.GetWorkspaceByName(args[0])
	if ws == nil {
		return fmt.Errorf("no workspace named %q", args[0])
	}
	cfg.RemoveWorkspace(ws.ID)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runWorkspaceRename(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ws := cfg.GetWorkspaceByName(args[0])
	if ws == nil {
		return fmt.Errorf("no workspace named %q", args[0])
	}
	if !cfg.RenameWorkspace(ws.ID, args[1]) {
		return fmt.Errorf("could not rename %q to %q", args[0], args[1])
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Printf("Renamed %s to %s\n", args[0], args[1])
	return nil
}

func runWorkspaceUse(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ws := cfg.GetWorkspaceByName(args[0])
	if ws == nil {
		return fmt.Errorf("no workspace named %q", args[0])
	}
	cfg.SetActiveWorkspaceID(ws.ID)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Printf("Active workspace is now %s\n", ws.Name)
	return nil
}
