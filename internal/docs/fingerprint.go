package docs

import (
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docmerge/internal/frontmatter"
)

// Fingerprint computes the canonical content fingerprint for a document.
// Frontmatter and body are hashed as separate parts so delimiter reshuffling
// does not change the fingerprint.
func Fingerprint(content []byte) string {
	raw, body, _ := frontmatter.Split(content)
	return mdfp.CalculateFingerprintFromParts(string(raw), string(body))
}

// CollectionFingerprint combines per-document fingerprints into one stable
// value for a document set. Input order does not matter: entries are keyed by
// (section, filename) and sorted before hashing.
func CollectionFingerprint(documents []Document) string {
	entries := make([]string, 0, len(documents))
	for _, doc := range documents {
		entries = append(entries, doc.Section+"/"+doc.Filename+":"+Fingerprint(doc.Content))
	}
	sort.Strings(entries)
	return mdfp.CalculateFingerprintFromParts(strings.Join(entries, "\n"), "")
}
