package docs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/docmerge/internal/config"
	derrors "git.home.luguber.info/inful/docmerge/internal/docs/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func testSections() []config.SectionSpec {
	return []config.SectionSpec{
		{Name: "adr", Paths: []string{"docs/adr", "adr"}},
		{Name: "api", Paths: []string{"docs/api"}},
	}
}

func TestExtractRepository(t *testing.T) {
	repoRoot := t.TempDir()
	writeFiles(t, repoRoot, map[string]string{
		"docs/adr/ADR-001-storage.md": "# Use SQLite\n\n## Status\n\nAccepted\n",
		"docs/api/overview.md":        "# API Overview\n\nEndpoints.\n",
		"docs/api/nested/errors.md":   "# Error Codes\n",
		"docs/api/diagram.png":        "not markdown",
		"docs/api/.hidden.md":         "# Hidden\n",
		"README.md":                   "# Not documentation\n",
	})

	extractor := NewExtractor(testSections())
	documents, err := extractor.Extract("org/svc", repoRoot)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(documents) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(documents))
	}

	byName := make(map[string]Document)
	for _, doc := range documents {
		byName[doc.Filename] = doc
		if doc.SourceRepo != "org/svc" {
			t.Errorf("document %s: wrong source repo %q", doc.Filename, doc.SourceRepo)
		}
	}

	adr, ok := byName["ADR-001-storage.md"]
	if !ok {
		t.Fatal("ADR not extracted")
	}
	if adr.Section != "adr" {
		t.Errorf("ADR section = %q", adr.Section)
	}
	if adr.Metadata.Title != "Use SQLite" {
		t.Errorf("ADR title = %q", adr.Metadata.Title)
	}
	if adr.Metadata.Status != "Accepted" {
		t.Errorf("ADR status = %q", adr.Metadata.Status)
	}

	nested, ok := byName["errors.md"]
	if !ok {
		t.Fatal("nested document not extracted")
	}
	if nested.RelativePath != filepath.Join("nested", "errors.md") {
		t.Errorf("nested relative path = %q", nested.RelativePath)
	}
}

func TestExtractSearchesEveryCandidatePath(t *testing.T) {
	repoRoot := t.TempDir()
	writeFiles(t, repoRoot, map[string]string{
		"docs/adr/ADR-001.md": "# From docs/adr\n",
		"adr/ADR-002.md":      "# From adr\n",
	})

	extractor := NewExtractor(testSections())
	documents, err := extractor.Extract("org/svc", repoRoot)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(documents) != 2 {
		t.Fatalf("expected documents from both candidate paths, got %d", len(documents))
	}
}

func TestExtractDuplicateAcrossCandidatePaths(t *testing.T) {
	// The same filename under two candidate paths of one section is emitted
	// twice; the merger later sees the pair as a conflict.
	repoRoot := t.TempDir()
	writeFiles(t, repoRoot, map[string]string{
		"docs/adr/ADR-001.md": "# First copy\n",
		"adr/ADR-001.md":      "# Second copy\n",
	})

	extractor := NewExtractor(testSections())
	documents, err := extractor.Extract("org/svc", repoRoot)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(documents) != 2 {
		t.Fatalf("expected both duplicates emitted, got %d", len(documents))
	}
}

func TestExtractSkipsExcludedDirs(t *testing.T) {
	repoRoot := t.TempDir()
	writeFiles(t, repoRoot, map[string]string{
		"docs/api/overview.md":                "# Overview\n",
		"docs/api/node_modules/pkg/readme.md": "# Dependency\n",
		"docs/api/vendor/lib/doc.md":          "# Vendored\n",
	})

	extractor := NewExtractor(testSections())
	documents, err := extractor.Extract("org/svc", repoRoot)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(documents) != 1 {
		t.Fatalf("expected build/dependency directories skipped, got %d documents", len(documents))
	}
}

func TestExtractRepositoryNotFound(t *testing.T) {
	extractor := NewExtractor(testSections())
	_, err := extractor.Extract("org/missing", filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, derrors.ErrRepositoryNotFound) {
		t.Fatalf("expected ErrRepositoryNotFound, got %v", err)
	}
}

func TestExtractEmptyRepository(t *testing.T) {
	extractor := NewExtractor(testSections())
	documents, err := extractor.Extract("org/empty", t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(documents) != 0 {
		t.Fatalf("expected no documents, got %d", len(documents))
	}
}
