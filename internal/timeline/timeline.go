// Package timeline appends command audit events to a JSONL file. The
// trail is best-effort: write failures are logged and swallowed so they
// can never fail the operation being audited.
package timeline

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zhubert/ghsync/internal/exec"
	"github.com/zhubert/ghsync/internal/logger"
)

// Entry is one recorded audit event.
type Entry struct {
	Time          time.Time `json:"time"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	WorkspaceID   string    `json:"workspace_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	Command       string    `json:"command"`
	DurationMs    int64     `json:"duration_ms"`
	ExitCode      int       `json:"exit_code"`
	Output        string    `json:"output,omitempty"`
}

// Recorder appends entries to a single JSONL file.
type Recorder struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns the timeline file under the user's config directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ghsync", "timeline.jsonl"), nil
}

// NewRecorder creates a recorder writing to the given path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Record appends the event to the timeline file. Implements exec.Auditor.
func (r *Recorder) Record(event exec.AuditEvent) {
	entry := Entry{
		Time:          time.Now(),
		CorrelationID: event.CorrelationID,
		WorkspaceID:   event.WorkspaceID,
		Kind:          event.Kind,
		Status:        event.Status,
		Command:       event.Command,
		DurationMs:    event.Duration.Milliseconds(),
		ExitCode:      event.ExitCode,
		Output:        event.Output,
	}
	r.append(entry)
}

func (r *Recorder) append(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.WithComponent("timeline")

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		log.Debug("failed to create timeline directory", "error", err)
		return
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Debug("failed to open timeline file", "error", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		log.Debug("failed to marshal timeline entry", "error", err)
		return
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Debug("failed to write timeline entry", "error", err)
	}
}

// Entries reads all recorded entries, optionally filtered by workspace id.
// Malformed lines are skipped.
func (r *Recorder) Entries(workspaceID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if workspaceID != "" && entry.WorkspaceID != workspaceID {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// Clear removes the timeline file.
func (r *Recorder) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var _ exec.Auditor = (*Recorder)(nil)
