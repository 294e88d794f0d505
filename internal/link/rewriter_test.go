package link

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/merge"
)

func doc(repo, section, filename, body string) *docs.Document {
	return &docs.Document{
		Filename:   filename,
		Content:    []byte(body),
		Section:    section,
		SourceRepo: repo,
	}
}

func TestRewriteCrossRepositoryLink(t *testing.T) {
	collection := merge.Collection{
		"runbooks": {doc("a/svc", "runbooks", "RB-001.md",
			"# Restart\n\nSee [API](overview.md) first.\n")},
		"api": {doc("b/svc", "api", "overview.md", "# API\n")},
	}

	stats := Rewrite(collection)
	require.Equal(t, 1, stats.Rewritten)
	require.Equal(t, "# Restart\n\nSee [API](../api/overview.md) first.\n",
		string(collection["runbooks"][0].Content))
}

func TestRewritePreservesAnchor(t *testing.T) {
	collection := merge.Collection{
		"runbooks": {doc("a/svc", "runbooks", "RB-001.md",
			"[API](../api/overview.md#auth)\n")},
		"api": {doc("b/svc", "api", "overview.md", "# API\n")},
	}

	stats := Rewrite(collection)
	require.Equal(t, 1, stats.Rewritten)
	require.Equal(t, "[API](../api/overview.md#auth)\n",
		string(collection["runbooks"][0].Content))
}

func TestRewriteLeavesExternalAndAnchorLinks(t *testing.T) {
	body := "[ext](https://example.com/x.md) [plain](http://example.com) [anchor](#section)\n"
	collection := merge.Collection{
		"api": {doc("a/svc", "api", "overview.md", body)},
	}

	stats := Rewrite(collection)
	require.Equal(t, 0, stats.Rewritten)
	require.Equal(t, body, string(collection["api"][0].Content),
		"external and anchor-only links must be byte-for-byte unchanged")
}

func TestRewriteLeavesSameRepositoryLinks(t *testing.T) {
	body := "[local](setup.md)\n"
	collection := merge.Collection{
		"api": {
			doc("a/svc", "api", "overview.md", body),
			doc("a/svc", "api", "setup.md", "# Setup\n"),
		},
	}

	stats := Rewrite(collection)
	require.Equal(t, 0, stats.Rewritten)
	require.Equal(t, body, string(collection["api"][0].Content))
}

func TestRewriteLeavesUnresolvableLinks(t *testing.T) {
	body := "[gone](missing.md)\n"
	collection := merge.Collection{
		"api": {doc("a/svc", "api", "overview.md", body)},
	}

	stats := Rewrite(collection)
	require.Equal(t, 0, stats.Rewritten)
	require.Equal(t, 1, stats.Unresolved)
	require.Equal(t, body, string(collection["api"][0].Content))
}

func TestRewriteSameTargetAcrossLayout(t *testing.T) {
	// The link already reads ../api/overview.md; it still counts as a rewrite
	// because it now resolves against the merged layout, and the bytes happen
	// to be identical.
	collection := merge.Collection{
		"runbooks": {doc("a/svc", "runbooks", "RB-001.md",
			"[See API](../api/overview.md)\n")},
		"api": {doc("b/svc", "api", "overview.md", "# API\n")},
	}

	stats := Rewrite(collection)
	require.Equal(t, 1, stats.Rewritten)
	require.Equal(t, "[See API](../api/overview.md)\n",
		string(collection["runbooks"][0].Content))
}

func TestCrossIndexQualifiedBeatsBare(t *testing.T) {
	apiDoc := doc("a/svc", "api", "index.md", "# API\n")
	dbDoc := doc("b/svc", "database", "index.md", "# DB\n")
	collection := merge.Collection{
		"api":      {apiDoc},
		"database": {dbDoc},
	}

	idx := BuildIndex(collection)

	entry, ok := idx.Resolve("../api/index.md")
	require.True(t, ok)
	require.Equal(t, "api", entry.Section)
	require.Same(t, apiDoc, entry.Document)

	// Bare lookups are best-effort: the lexicographically last section wins.
	entry, ok = idx.Resolve("index.md")
	require.True(t, ok)
	require.Equal(t, "database", entry.Section)
}

func TestVerifyReportsBrokenLinks(t *testing.T) {
	collection := merge.Collection{
		"api": {
			doc("a/svc", "api", "overview.md",
				"[ok](setup.md) [broken](deleted.md) [ext](https://example.com)\n"),
			doc("a/svc", "api", "setup.md", "# Setup\n"),
		},
	}

	broken := Verify(collection)
	require.Len(t, broken, 1)
	require.Equal(t, "deleted.md", broken[0].Target)
	require.Equal(t, "overview.md", broken[0].Filename)
}

func TestRewriteEmptyCollection(t *testing.T) {
	stats := Rewrite(merge.Collection{})
	require.Zero(t, stats.Scanned)
}
