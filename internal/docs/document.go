// Package docs implements documentation extraction: walking a repository's
// section candidate paths, reading matching files and inferring metadata.
package docs

// Metadata holds optional per-document fields derived from content.
// Every field may be empty; nothing here is validated.
type Metadata struct {
	Title  string
	Date   string
	Author string
	Tags   []string
	Status string
}

// Conflict resolution strategies recorded on merged documents.
const (
	ResolutionPrefixed = "prefixed"
	ResolutionMerged   = "merged"
)

// Document represents one extracted documentation file.
//
// Before merging a document is identified by (SourceRepo, Section, Filename);
// after merging, (Section, Filename) is unique within the collection.
// Content is mutated only by the link-rewriting stage.
type Document struct {
	Filename     string // File name within its section, may be rewritten on conflict
	RelativePath string // Path relative to the section candidate root
	AbsolutePath string // Absolute path of the source file
	Content      []byte
	Section      string
	SourceRepo   string
	Metadata     Metadata

	// Set by the merger only when a cross-repository collision occurred.
	ConflictResolution string
	SourceRepos        []string
}
