// Package merge combines per-repository extractions into a single collection,
// resolving cross-repository filename collisions per section.
package merge

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/frontmatter"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/markdown"
)

// Collection maps section name to the ordered post-resolution documents of
// that section. It is the exclusive owner of documents from this stage on;
// the linker mutates document content inside it rather than copying.
type Collection map[string][]*docs.Document

// Sections returns the section names in lexicographic order.
func (c Collection) Sections() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalDocuments returns the number of documents across all sections.
func (c Collection) TotalDocuments() int {
	total := 0
	for _, section := range c {
		total += len(section)
	}
	return total
}

// RepoExtraction is one repository's extraction output, in extraction order.
type RepoExtraction struct {
	Repo      string
	Documents []docs.Document
}

// Sections using the prefixed strategy on collision. Conflict strategy is
// selected by section name; the conflict_resolution config option exists but
// is not consulted here (see config.Config).
var prefixedSections = map[string]struct{}{
	"adr":      {},
	"runbooks": {},
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Merge flattens per-repository extractions into a Collection, applying
// conflict resolution per section. Given identical inputs (same repository
// order, filenames and content) the output is byte-identical.
func Merge(extractions []RepoExtraction, sectionFilter []string) Collection {
	filter := make(map[string]struct{}, len(sectionFilter))
	for _, name := range sectionFilter {
		filter[name] = struct{}{}
	}

	// Group by section, then by filename, preserving first-seen order of both
	// sections and filenames so output ordering follows input ordering.
	type group struct {
		filename string
		docs     []*docs.Document
	}
	sectionOrder := make([]string, 0)
	groupsBySection := make(map[string][]*group)
	groupIndex := make(map[string]map[string]*group)

	for _, extraction := range extractions {
		for i := range extraction.Documents {
			doc := extraction.Documents[i]
			if len(filter) > 0 {
				if _, ok := filter[doc.Section]; !ok {
					continue
				}
			}
			doc.SourceRepo = extraction.Repo

			byName, ok := groupIndex[doc.Section]
			if !ok {
				byName = make(map[string]*group)
				groupIndex[doc.Section] = byName
				sectionOrder = append(sectionOrder, doc.Section)
			}
			g, ok := byName[doc.Filename]
			if !ok {
				g = &group{filename: doc.Filename}
				byName[doc.Filename] = g
				groupsBySection[doc.Section] = append(groupsBySection[doc.Section], g)
			}
			g.docs = append(g.docs, &doc)
		}
	}

	collection := make(Collection, len(sectionOrder))
	for _, section := range sectionOrder {
		var resolved []*docs.Document
		for _, g := range groupsBySection[section] {
			if len(g.docs) == 1 {
				resolved = append(resolved, g.docs[0])
				continue
			}
			resolved = append(resolved, resolveConflict(section, g.filename, g.docs)...)
		}
		collection[section] = resolved
	}
	return collection
}

func resolveConflict(section, filename string, colliding []*docs.Document) []*docs.Document {
	if _, prefixed := prefixedSections[section]; prefixed {
		slog.Debug("Resolving collision",
			logfields.Section(section), logfields.File(filename),
			logfields.Strategy(docs.ResolutionPrefixed), logfields.Count(len(colliding)))
		return prefixDocuments(colliding)
	}

	slog.Debug("Resolving collision",
		logfields.Section(section), logfields.File(filename),
		logfields.Strategy(docs.ResolutionMerged), logfields.Count(len(colliding)))
	return []*docs.Document{mergeDocuments(colliding)}
}

// prefixDocuments keeps every colliding document, renaming each with a
// sanitized repository prefix. Content is untouched.
func prefixDocuments(colliding []*docs.Document) []*docs.Document {
	out := make([]*docs.Document, 0, len(colliding))
	for _, doc := range colliding {
		doc.Filename = SanitizeRepoName(doc.SourceRepo) + "-" + doc.Filename
		doc.ConflictResolution = docs.ResolutionPrefixed
		out = append(out, doc)
	}
	return out
}

// mergeDocuments produces exactly one document from the colliding set: each
// contributor's body, leading H1 stripped, appears under a `## From {repo}`
// subheading, separated by horizontal rules, in original contributor order.
func mergeDocuments(colliding []*docs.Document) *docs.Document {
	first := colliding[0]
	title := first.Metadata.Title
	if title == "" {
		title = strings.TrimSuffix(first.Filename, ".md")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", title)
	repos := make([]string, 0, len(colliding))
	for i, doc := range colliding {
		repos = append(repos, doc.SourceRepo)
		if i > 0 {
			buf.WriteString("\n---\n")
		}
		fmt.Fprintf(&buf, "\n## From %s\n\n", doc.SourceRepo)
		buf.Write(stripLeadingH1(doc.Content))
		buf.WriteString("\n")
	}

	merged := &docs.Document{
		Filename:           first.Filename,
		RelativePath:       first.RelativePath,
		AbsolutePath:       first.AbsolutePath,
		Content:            buf.Bytes(),
		Section:            first.Section,
		SourceRepo:         first.SourceRepo,
		Metadata:           first.Metadata,
		ConflictResolution: docs.ResolutionMerged,
		SourceRepos:        repos,
	}
	merged.Metadata.Title = title
	return merged
}

func stripLeadingH1(content []byte) []byte {
	_, body, _ := frontmatter.Split(content)
	if h, ok := markdown.FirstH1(body); ok {
		stripped, err := markdown.ApplyEdits(body, []markdown.Edit{{Start: h.Start, End: h.End}})
		if err == nil {
			body = stripped
		}
	}
	return bytes.TrimSpace(body)
}

// SanitizeRepoName replaces any non-alphanumeric run with a single hyphen,
// producing a filename-safe repository prefix (e.g. "org/name" -> "org-name").
func SanitizeRepoName(repo string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(repo, "-"), "-")
}
