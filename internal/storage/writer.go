// Package storage writes the aggregated collection to the output directory.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

// Writer persists a merged collection: one file per document at
// {outputRoot}/{section}/{filename} plus INDEX.md at the root.
type Writer struct {
	outputRoot string
}

// NewWriter creates a writer rooted at outputRoot.
func NewWriter(outputRoot string) *Writer {
	return &Writer{outputRoot: outputRoot}
}

// Write persists the collection and the rendered index text.
// Existing section directories are replaced so stale documents from earlier
// runs do not linger.
func (w *Writer) Write(collection merge.Collection, indexText string) error {
	if err := os.MkdirAll(w.outputRoot, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, section := range collection.Sections() {
		sectionDir := filepath.Join(w.outputRoot, section)
		if err := os.RemoveAll(sectionDir); err != nil {
			return fmt.Errorf("failed to clear section directory %s: %w", section, err)
		}
		if err := os.MkdirAll(sectionDir, 0o750); err != nil {
			return fmt.Errorf("failed to create section directory %s: %w", section, err)
		}

		for _, doc := range collection[section] {
			target := filepath.Join(sectionDir, doc.Filename)
			// #nosec G306 -- aggregated documentation is public content
			if err := os.WriteFile(target, doc.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write document %s/%s: %w", section, doc.Filename, err)
			}
		}
		slog.Debug("Wrote section",
			logfields.Section(section), logfields.Count(len(collection[section])))
	}

	indexPath := filepath.Join(w.outputRoot, "INDEX.md")
	// #nosec G306 -- aggregated documentation is public content
	if err := os.WriteFile(indexPath, []byte(indexText), 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	slog.Info("Collection written",
		logfields.Path(w.outputRoot), logfields.Count(collection.TotalDocuments()))
	return nil
}
