package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/ghsync/internal/engine"
	"github.com/zhubert/ghsync/internal/git"
	"github.com/zhubert/ghsync/internal/logger"
	"github.com/zhubert/ghsync/internal/notification"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch [workspace]",
	Short: "Poll GitHub state and notify on changes",
	Long: `Polls the workspace's base-branch drift and CI rollup on an interval
and sends a desktop notification when the branch falls behind its base
or when CI finishes. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Poll interval in seconds (defaults to the configured interval)")
	rootCmd.AddCommand(watchCmd)
}

// watchState carries the previous poll's observations so notifications
// fire on transitions, not on every tick.
type watchState struct {
	behind  int
	rollup  git.RollupState
	prState git.PRState
	primed  bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, eng, err := loadEngine()
	if err != nil {
		return err
	}
	id, err := resolveWorkspaceID(cfg, args)
	if err != nil {
		return err
	}
	ws := cfg.GetWorkspace(id)

	interval := watchInterval
	if interval <= 0 {
		interval = cfg.GetWatchIntervalSeconds()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s every %ds. Press Ctrl-C to stop.\n", ws.Name, interval)

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	var state watchState
	pollOnce(ctx, eng, id, ws.Name, cfg.GetNotificationsEnabled(), &state)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		case <-ticker.C:
			pollOnce(ctx, eng, id, ws.Name, cfg.GetNotificationsEnabled(), &state)
		}
	}
}

func pollOnce(ctx context.Context, eng *engine.Engine, id, name string, notify bool, state *watchState) {
	log := logger.WithComponent("watch")

	behind := state.behind
	if resp := eng.CommitsBehindBase(ctx, id, ""); resp.Success {
		base := resp.Data.(engine.BehindBase)
		behind = base.Behind
		if behind == 0 {
			fmt.Printf("%s  %s up to date with %s\n", time.Now().Format("15:04:05"), name, base.BaseBranch)
		} else {
			fmt.Printf("%s  %s is %d behind %s\n", time.Now().Format("15:04:05"), name, behind, base.BaseBranch)
		}
		if notify && state.primed && behind > 0 && state.behind == 0 {
			if err := notification.BranchBehind(name, behind, base.BaseBranch); err != nil {
				log.Debug("notification failed", "error", err)
			}
		}
	} else {
		log.Warn("behind-base poll failed", "error", resp.Error)
	}

	prState := state.prState
	if resp := eng.FindPullRequest(ctx, id); resp.Success {
		if resp.Data == nil {
			prState = ""
		} else {
			pr := resp.Data.(*git.PullRequest)
			prState = pr.State
			if notify && state.primed && prState != state.prState {
				if err := notification.Send("ghsync", fmt.Sprintf("%s pull request #%d is now %s", name, pr.Number, prState)); err != nil {
					log.Debug("notification failed", "error", err)
				}
			}
		}
	} else {
		log.Warn("pull request poll failed", "error", resp.Error)
	}

	rollup := state.rollup
	if resp := eng.CIStatus(ctx, id); resp.Success {
		if resp.Data == nil {
			rollup = ""
		} else {
			status := resp.Data.(*git.CIStatus)
			rollup = status.Rollup
			fmt.Printf("%s  CI %s (%d passed, %d failed)\n",
				time.Now().Format("15:04:05"), styleRollup(string(rollup)),
				status.SuccessCount, status.FailureCount)
		}
		if notify && state.primed && rollup != state.rollup {
			switch rollup {
			case git.RollupFailure:
				if err := notification.ChecksFailed(name); err != nil {
					log.Debug("notification failed", "error", err)
				}
			case git.RollupSuccess:
				if err := notification.ChecksPassed(name); err != nil {
					log.Debug("notification failed", "error", err)
				}
			}
		}
	} else {
		log.Warn("CI poll failed", "error", resp.Error)
	}

	state.behind = behind
	state.rollup = rollup
	state.prState = prState
	state.primed = true
}
