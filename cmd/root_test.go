package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/zhubert/ghsync/internal/config"
)

func TestDebugFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("debug")
	if flag == nil {
		t.Fatal("--debug flag not found")
	}
	if flag.DefValue != "false" {
		t.Errorf("--debug default = %q, want %q", flag.DefValue, "false")
	}
}

func TestQuietFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	if flag == nil {
		t.Fatal("--quiet flag not found")
	}
	if flag.Shorthand != "q" {
		t.Errorf("--quiet shorthand = %q, want %q", flag.Shorthand, "q")
	}
}

func TestInitLogging_QuietOverridesDebug(t *testing.T) {
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = true

	// Quiet takes precedence; should not panic
	initLogging()
}

func TestVersionTemplate(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer func() { version, commit, date = origV, origC, origD }()

	SetVersionInfo("1.2.3", "none", "unknown")
	if got := versionTemplate(); got != "ghsync 1.2.3\n" {
		t.Errorf("versionTemplate() = %q", got)
	}

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	got := versionTemplate()
	want := "ghsync 1.2.3\n  commit: abc123\n  built:  2026-01-01\n"
	if got != want {
		t.Errorf("versionTemplate() = %q, want %q", got, want)
	}
}

func newCmdTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	return cfg
}

func TestResolveWorkspaceID_ByName(t *testing.T) {
	cfg := newCmdTestConfig(t)
	cfg.AddWorkspace(config.Workspace{ID: "id-1", Name: "widgets", Path: "/repo", CreatedAt: time.Now()})

	id, err := resolveWorkspaceID(cfg, []string{"widgets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "id-1" {
		t.Errorf("id = %q, want %q", id, "id-1")
	}
}

func TestResolveWorkspaceID_ByID(t *testing.T) {
	cfg := newCmdTestConfig(t)
	cfg.AddWorkspace(config.Workspace{ID: "id-1", Name: "widgets", Path: "/repo", CreatedAt: time.Now()})

	id, err := resolveWorkspaceID(cfg, []string{"id-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "id-1" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveWorkspaceID_ActiveFallback(t *testing.T) {
	cfg := newCmdTestConfig(t)
	cfg.AddWorkspace(config.Workspace{ID: "id-1", Name: "widgets", Path: "/repo", CreatedAt: time.Now()})
	cfg.SetActiveWorkspaceID("id-1")

	id, err := resolveWorkspaceID(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "id-1" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveWorkspaceID_NoActive(t *testing.T) {
	cfg := newCmdTestConfig(t)

	if _, err := resolveWorkspaceID(cfg, nil); err == nil {
		t.Error("expected error with no active workspace")
	}
}

func TestResolveWorkspaceID_UnknownName(t *testing.T) {
	cfg := newCmdTestConfig(t)

	if _, err := resolveWorkspaceID(cfg, []string{"nope"}); err == nil {
		t.Error("expected error for unknown workspace")
	}
}
