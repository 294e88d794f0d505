// Package index renders the navigational summary document for an aggregated
// collection. Pure text rendering: no I/O, no mutation of the collection.
package index

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

// Context carries run-level information the index reports alongside the
// collection itself.
type Context struct {
	Repositories []string
	GeneratedAt  time.Time
}

type entry struct {
	Title      string
	Link       string
	Status     string
	Resolution string
}

type repoGroup struct {
	Repo    string
	Entries []entry
}

type sectionListing struct {
	Name   string
	Groups []repoGroup
}

type templateData struct {
	Generated    string
	Repositories []string
	Sections     []sectionListing
	SectionCount int
	Total        int
}

const indexTemplate = `# Aggregated Documentation Index

_Generated: {{ .Generated }}_

## Summary

- **Repositories**: {{ len .Repositories }}
- **Sections**: {{ .SectionCount }}
- **Documents**: {{ .Total }}

## Source Repositories
{{ range .Repositories }}
- {{ . }}{{ end }}
{{ range .Sections }}
## {{ titleCase .Name }}
{{ range .Groups }}
### {{ .Repo }}
{{ range .Entries }}
- [{{ .Title }}]({{ .Link }}){{ if .Status }} — status: {{ .Status }}{{ end }}{{ if .Resolution }} _({{ .Resolution }})_{{ end }}{{ end }}
{{ end }}{{ end }}
---

Legend: _(prefixed)_ marks colliding documents kept separate under a
repository-derived filename prefix; _(merged)_ marks documents combined from
several repositories under per-repository subheadings.
`

// Build renders the index text for the collection.
//
// Sections appear in lexicographic order. Within a section, repository groups
// follow first appearance in the section's documents (not sorted); documents
// inside a group are sorted by filename.
func Build(collection merge.Collection, ctx Context) (string, error) {
	data := templateData{
		Generated:    ctx.GeneratedAt.UTC().Format(time.RFC3339),
		Repositories: ctx.Repositories,
		SectionCount: len(collection),
		Total:        collection.TotalDocuments(),
	}

	for _, name := range collection.Sections() {
		data.Sections = append(data.Sections, buildListing(name, collection[name]))
	}

	tpl, err := template.New("index").Funcs(template.FuncMap{
		"titleCase": titleCase,
	}).Parse(indexTemplate)
	if err != nil {
		return "", fmt.Errorf("parse index template: %w", err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec index template: %w", err)
	}
	return buf.String(), nil
}

func buildListing(section string, documents []*docs.Document) sectionListing {
	listing := sectionListing{Name: section}
	groupIdx := make(map[string]int)

	add := func(repo string, e entry) {
		i, ok := groupIdx[repo]
		if !ok {
			i = len(listing.Groups)
			groupIdx[repo] = i
			listing.Groups = append(listing.Groups, repoGroup{Repo: repo})
		}
		listing.Groups[i].Entries = append(listing.Groups[i].Entries, e)
	}

	for _, doc := range documents {
		e := entry{
			Title:      resolvedTitle(doc),
			Link:       section + "/" + doc.Filename,
			Status:     doc.Metadata.Status,
			Resolution: doc.ConflictResolution,
		}
		// Merged documents list under their first contributing repository.
		repo := doc.SourceRepo
		if len(doc.SourceRepos) > 0 {
			repo = doc.SourceRepos[0]
		}
		add(repo, e)
	}

	// Filename sort inside each group; group order stays first-appearance.
	for i := range listing.Groups {
		entries := listing.Groups[i].Entries
		sort.Slice(entries, func(a, b int) bool { return entries[a].Link < entries[b].Link })
	}
	return listing
}

func resolvedTitle(doc *docs.Document) string {
	if doc.Metadata.Title != "" {
		return doc.Metadata.Title
	}
	return strings.TrimSuffix(doc.Filename, ".md")
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
