package docs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docmerge/internal/config"
	derrors "git.home.luguber.info/inful/docmerge/internal/docs/errors"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
)

// Extractor walks a repository's section candidate paths and produces Documents.
type Extractor struct {
	sections []config.SectionSpec
}

// NewExtractor creates an extractor for the given section specs.
func NewExtractor(sections []config.SectionSpec) *Extractor {
	return &Extractor{sections: sections}
}

// Extract collects all documentation files for one repository.
//
// Every existing candidate path of every section is searched, so a file with
// the same name under two candidate paths of one section is emitted twice;
// the merger later treats that pair as a conflict. This mirrors long-standing
// behavior and is logged when it happens.
func (e *Extractor) Extract(repoName, repoRoot string) ([]Document, error) {
	if _, err := os.Stat(repoRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s at %s", derrors.ErrRepositoryNotFound, repoName, repoRoot)
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrRepositoryNotFound, repoName, err)
	}

	var documents []Document
	for _, section := range e.sections {
		seen := make(map[string]string) // filename -> candidate path that produced it
		for _, candidate := range section.Paths {
			sectionRoot := filepath.Join(repoRoot, candidate)
			if _, err := os.Stat(sectionRoot); os.IsNotExist(err) {
				continue
			}

			files, err := e.walkSection(sectionRoot, repoName, section.Name)
			if err != nil {
				return nil, fmt.Errorf("%w: %s in %s: %w", derrors.ErrSectionWalkFailed, candidate, repoName, err)
			}

			for _, doc := range files {
				if prev, dup := seen[doc.Filename]; dup {
					slog.Warn("Duplicate filename across candidate paths",
						logfields.Repository(repoName),
						logfields.Section(section.Name),
						logfields.File(doc.Filename),
						slog.String("first_path", prev),
						slog.String("second_path", candidate))
				} else {
					seen[doc.Filename] = candidate
				}
				documents = append(documents, doc)
			}
		}
	}

	slog.Debug("Repository extraction complete",
		logfields.Repository(repoName), logfields.Count(len(documents)))
	return documents, nil
}

// walkSection recursively collects markdown files under one candidate path.
func (e *Extractor) walkSection(sectionRoot, repoName, sectionName string) ([]Document, error) {
	var documents []Document

	err := filepath.Walk(sectionRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if isExcludedDir(info.Name()) && path != sectionRoot {
				return filepath.SkipDir
			}
			return nil
		}

		if !isMarkdownFile(path) || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		relPath, err := filepath.Rel(sectionRoot, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, path, err)
		}

		doc := Document{
			Filename:     info.Name(),
			RelativePath: relPath,
			AbsolutePath: path,
			Content:      content,
			Section:      sectionName,
			SourceRepo:   repoName,
			Metadata:     InferMetadata(content, info.Name()),
		}
		documents = append(documents, doc)

		slog.Debug("Extracted document",
			logfields.File(relPath),
			logfields.Repository(repoName),
			logfields.Section(sectionName))
		return nil
	})

	return documents, err
}

// isMarkdownFile checks if a file is a markdown-family file.
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// isExcludedDir checks if a directory is a build/dependency tree to skip.
func isExcludedDir(name string) bool {
	excluded := []string{
		"node_modules", "vendor", "dist", "build", "target",
		"__pycache__", ".git", ".venv", "venv",
	}
	for _, e := range excluded {
		if strings.EqualFold(name, e) {
			return true
		}
	}
	return false
}
