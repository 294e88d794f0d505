// Package workspace manages the working directories repositories are
// acquired into.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docmerge/internal/logfields"
)

// Manager handles workspace operations (both temporary and persistent)
type Manager struct {
	baseDir    string
	workDir    string
	persistent bool // If true, use a fixed directory without timestamps
}

// NewManager creates a workspace manager with ephemeral timestamped directories.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a workspace manager that uses a persistent
// directory (baseDir/repos), kept across runs for incremental updates.
func NewPersistentManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{
		baseDir:    baseDir,
		workDir:    filepath.Join(baseDir, "repos"),
		persistent: true,
	}
}

// Create creates the workspace directory.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.workDir, 0o750); err != nil {
			return fmt.Errorf("failed to create persistent workspace directory: %w", err)
		}
		slog.Info("Using persistent workspace", logfields.Path(m.workDir))
		return nil
	}

	timestamp := time.Now().Format("20060102-150405")
	workDir := filepath.Join(m.baseDir, fmt.Sprintf("docmerge-%s", timestamp))
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.workDir = workDir
	slog.Info("Created workspace", logfields.Path(workDir))
	return nil
}

// GetPath returns the path to the workspace directory.
func (m *Manager) GetPath() string {
	return m.workDir
}

// Cleanup removes the workspace directory in ephemeral mode and keeps it in
// persistent mode.
func (m *Manager) Cleanup() error {
	if m.persistent || m.workDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.workDir); err != nil {
		return fmt.Errorf("failed to remove workspace directory: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.workDir))
	m.workDir = ""
	return nil
}
