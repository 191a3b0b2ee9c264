package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/config"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/timeline"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached identities, the command timeline, and log files",
	Long: `Discards every workspace's cached repository identity, truncates the
command timeline, and removes log files. Workspaces themselves are kept.

It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(_ *cobra.Command, _ []string) error {
	return runCleanWithReader(os.Stdin)
}

// runCleanWithReader allows injecting a reader for testing
func runCleanWithReader(input io.Reader) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	workspaces := cfg.GetWorkspaces()
	cached := 0
	for _, ws := range workspaces {
		if ws.Identity != nil {
			cached++
		}
	}

	fmt.Printf("This will clear %d cached identities, the command timeline, and log files.\n", cached)
	if !skipConfirm && !confirm(input, "Continue?") {
		fmt.Println("Aborted.")
		return nil
	}

	for _, ws := range workspaces {
		cfg.ClearCachedIdentity(ws.ID)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	if path, err := timeline.DefaultPath(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error locating timeline: %v\n", err)
	} else if err := timeline.NewRecorder(path).Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing timeline: %v\n", err)
	}

	removed, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	fmt.Printf("Cleared %d cached identities and %d log files.\n", cached, removed)
	return nil
}

// confirm prompts for a yes/no answer on input. Anything other than
// "y" or "yes" counts as no.
func confirm(input io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(input)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
