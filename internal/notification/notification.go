// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"strconv"

	"github.com/gen2brain/beeep"

	"github.com/zhubert/ghsync/internal/logger"
)

// notifyFunc matches beeep.Notify so tests can swap in a recorder.
type notifyFunc func(title, message string, icon any) error

var notifier notifyFunc = beeep.Notify

// SetNotifier replaces the notification backend. Intended for tests.
func SetNotifier(fn func(title, message string, icon any) error) {
	notifier = fn
}

// ResetNotifier restores the default beeep backend.
func ResetNotifier() {
	notifier = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title, "message", message)
	// Empty icon - beeep handles platform defaults
	err := notifier(title, message, "")
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// BranchBehind notifies that the workspace's branch has fallen behind
// its base branch.
func BranchBehind(workspaceName string, behind int, baseBranch string) error {
	if behind == 1 {
		return Send("ghsync", workspaceName+" is 1 commit behind "+baseBranch)
	}
	return Send("ghsync", workspaceName+" is "+strconv.Itoa(behind)+" commits behind "+baseBranch)
}

// ChecksFailed notifies that CI checks failed on the workspace's branch.
func ChecksFailed(workspaceName string) error {
	return Send("ghsync", "CI checks failed for "+workspaceName)
}

// ChecksPassed notifies that all CI checks passed on the workspace's branch.
func ChecksPassed(workspaceName string) error {
	return Send("ghsync", "CI checks passed for "+workspaceName)
}
