package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/config"
	"github.com/zhubert/ghsync/internal/engine"
	"github.com/zhubert/ghsync/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "ghsync",
	Short: "Keep local branches in sync with their GitHub remotes",
	Long: `ghsync tracks the GitHub state of your working branches: the pull
request for the current branch, how far it has drifted from its base,
and whether CI is passing. Fork workflows are handled transparently,
including cross-fork pull requests opened against an upstream.`,
	RunE:          runStatus,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
}

func initLogging() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	defer logger.Close()
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("ghsync %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("ghsync %s\n", version)
}

// loadEngine loads the config and builds the sync engine on top of it.
func loadEngine() (*config.Config, *engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, engine.New(cfg), nil
}

// resolveWorkspaceID maps an optional positional argument to a workspace
// ID. Names are tried before raw IDs; with no argument the active
// workspace is used.
func resolveWorkspaceID(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		if ws := cfg.GetWorkspaceByName(args[0]); ws != nil {
			return ws.ID, nil
		}
		if ws := cfg.GetWorkspace(args[0]); ws != nil {
			return ws.ID, nil
		}
		return "", fmt.Errorf("no workspace named %q", args[0])
	}
	if id := cfg.GetActiveWorkspaceID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no workspace given and no active workspace set; run 'ghsync workspace use <name>'")
}
