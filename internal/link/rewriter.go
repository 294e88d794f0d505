package link

import (
	"log/slog"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/markdown"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

// inlineLinkPattern matches `[text](target)` inline links. Targets containing
// spaces are matched too; classification filters out anything unusable.
var inlineLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// Stats summarizes one rewrite pass.
type Stats struct {
	Scanned    int // Inline links inspected
	Rewritten  int // Links rewritten to the unified layout
	Unresolved int // Relative links with no target in the collection
}

// Rewrite scans every document in the collection and rewrites relative links
// that resolve to a document from a different source repository, pointing
// them at `../{section}/{filename}` in the unified layout.
//
// External URLs, anchor-only links, unresolvable targets and links within the
// same repository are left byte-for-byte unchanged. This stage never fails:
// an ambiguous link is simply left as-is. Document content is mutated in
// place; this is the only stage that mutates content.
func Rewrite(collection merge.Collection) Stats {
	idx := BuildIndex(collection)
	stats := Stats{}

	for _, section := range collection.Sections() {
		for _, doc := range collection[section] {
			matches := inlineLinkPattern.FindAllSubmatchIndex(doc.Content, -1)
			if len(matches) == 0 {
				continue
			}

			var edits []markdown.Edit
			for _, m := range matches {
				stats.Scanned++
				target := string(doc.Content[m[4]:m[5]])

				switch classify(target) {
				case linkExternal, linkAnchor:
					continue
				}

				targetPath, anchor := splitAnchor(target)
				entry, ok := idx.Resolve(targetPath)
				if !ok {
					stats.Unresolved++
					continue
				}
				if entry.Document.SourceRepo == doc.SourceRepo {
					continue
				}

				rewritten := "../" + entry.Section + "/" + entry.Document.Filename
				if anchor != "" {
					rewritten += "#" + anchor
				}
				edits = append(edits, markdown.Edit{
					Start:       m[4],
					End:         m[5],
					Replacement: []byte(rewritten),
				})
			}

			if len(edits) == 0 {
				continue
			}
			updated, err := markdown.ApplyEdits(doc.Content, edits)
			if err != nil {
				// Overlapping matches cannot happen with this pattern; keep the
				// original content rather than failing the stage.
				slog.Warn("Link rewrite skipped",
					logfields.Section(section), logfields.File(doc.Filename), logfields.Error(err))
				continue
			}
			doc.Content = updated
			stats.Rewritten += len(edits)
		}
	}

	slog.Info("Cross-reference rewrite complete",
		slog.Int("scanned", stats.Scanned),
		slog.Int("rewritten", stats.Rewritten),
		slog.Int("unresolved", stats.Unresolved))
	return stats
}

type linkClass int

const (
	linkExternal linkClass = iota
	linkAnchor
	linkRelative
)

func classify(target string) linkClass {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return linkExternal
	}
	if strings.HasPrefix(target, "#") {
		return linkAnchor
	}
	return linkRelative
}

func splitAnchor(target string) (path, anchor string) {
	if idx := strings.Index(target, "#"); idx >= 0 {
		return target[:idx], target[idx+1:]
	}
	return target, ""
}
