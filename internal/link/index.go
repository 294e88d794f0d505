// Package link rewrites cross-repository relative links inside merged
// document bodies so they stay valid in the unified output layout.
package link

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

// Entry is the resolution target of a cross-reference lookup.
type Entry struct {
	Section  string
	Document *docs.Document
}

// CrossIndex is an ephemeral lookup over every document in a collection,
// built once per rewrite pass and discarded afterward.
//
// The qualified (section, filename) map is authoritative. The bare-filename
// map is a best-effort secondary index: when several sections contain the
// same filename, the entry from the lexicographically last section wins.
type CrossIndex struct {
	byQualified map[string]Entry
	byFilename  map[string]Entry
}

// BuildIndex constructs a CrossIndex over the collection. Sections are
// visited in lexicographic order so bare-filename collisions resolve
// deterministically.
func BuildIndex(collection merge.Collection) *CrossIndex {
	idx := &CrossIndex{
		byQualified: make(map[string]Entry),
		byFilename:  make(map[string]Entry),
	}
	for _, section := range collection.Sections() {
		for _, doc := range collection[section] {
			entry := Entry{Section: section, Document: doc}
			idx.byQualified[section+"/"+doc.Filename] = entry
			idx.byFilename[doc.Filename] = entry
		}
	}
	return idx
}

// Resolve looks up a link target path (anchor already removed).
//
// When the target's parent directory names a known section the qualified map
// is consulted first; otherwise resolution falls back to the bare basename.
func (idx *CrossIndex) Resolve(target string) (Entry, bool) {
	cleaned := path.Clean(strings.TrimPrefix(target, "./"))
	base := path.Base(cleaned)

	if dir := path.Base(path.Dir(cleaned)); dir != "." && dir != "/" && dir != ".." {
		if entry, ok := idx.byQualified[dir+"/"+base]; ok {
			return entry, true
		}
	}

	entry, ok := idx.byFilename[base]
	return entry, ok
}
