package link

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docmerge/internal/frontmatter"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/markdown"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

// Broken describes a relative link that does not resolve within the
// collection's unified layout.
type Broken struct {
	Section  string
	Filename string
	Target   string
}

// Verify walks every document's link set (via the Markdown AST, so reference
// links count too) and reports relative targets that resolve to nothing in
// the collection. Purely diagnostic: content is never modified and a broken
// link is not an error.
func Verify(collection merge.Collection) []Broken {
	idx := BuildIndex(collection)
	var broken []Broken

	for _, section := range collection.Sections() {
		for _, doc := range collection[section] {
			_, body, _ := frontmatter.Split(doc.Content)
			for _, l := range markdown.ExtractLinks(body) {
				if l.Kind == markdown.LinkKindImage {
					continue
				}
				if classify(l.Destination) != linkRelative {
					continue
				}
				targetPath, _ := splitAnchor(l.Destination)
				if targetPath == "" || !strings.Contains(targetPath, ".md") {
					continue
				}
				if _, ok := idx.Resolve(targetPath); !ok {
					broken = append(broken, Broken{
						Section:  section,
						Filename: doc.Filename,
						Target:   l.Destination,
					})
				}
			}
		}
	}

	if len(broken) > 0 {
		slog.Warn("Unresolved relative links remain", logfields.Count(len(broken)))
	}
	return broken
}
