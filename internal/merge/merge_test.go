package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmerge/internal/docs"
)

func adrDoc(repo, filename, body string) docs.Document {
	return docs.Document{
		Filename:   filename,
		Content:    []byte(body),
		Section:    "adr",
		SourceRepo: repo,
		Metadata:   docs.InferMetadata([]byte(body), filename),
	}
}

func apiDoc(repo, filename, body string) docs.Document {
	doc := adrDoc(repo, filename, body)
	doc.Section = "api"
	return doc
}

func TestMergeNoConflictPassthrough(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{apiDoc("a/svc", "overview.md", "# A\n\nBody A.\n")}},
		{Repo: "b/svc", Documents: []docs.Document{apiDoc("b/svc", "errors.md", "# B\n\nBody B.\n")}},
	}

	collection := Merge(extractions, nil)
	require.Len(t, collection["api"], 2)
	for _, doc := range collection["api"] {
		require.Empty(t, doc.ConflictResolution)
		require.Nil(t, doc.SourceRepos)
	}
	require.Equal(t, "# A\n\nBody A.\n", string(collection["api"][0].Content),
		"pass-through content must be untouched")
}

func TestMergePrefixedStrategy(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{adrDoc("a/svc", "ADR-001-x.md", "# A\n")}},
		{Repo: "b/svc", Documents: []docs.Document{adrDoc("b/svc", "ADR-001-x.md", "# B\n")}},
	}

	collection := Merge(extractions, nil)
	adrs := collection["adr"]
	require.Len(t, adrs, 2, "prefixed strategy keeps every colliding document")

	require.Equal(t, "a-svc-ADR-001-x.md", adrs[0].Filename)
	require.Equal(t, "b-svc-ADR-001-x.md", adrs[1].Filename)
	for _, doc := range adrs {
		require.Equal(t, docs.ResolutionPrefixed, doc.ConflictResolution)
	}
	require.Equal(t, "# A\n", string(adrs[0].Content), "prefixed strategy never alters content")
}

func TestMergeMergedStrategy(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{apiDoc("a/svc", "overview.md", "# API Overview\n\nBody from A.\n")}},
		{Repo: "b/svc", Documents: []docs.Document{apiDoc("b/svc", "overview.md", "# Other Title\n\nBody from B.\n")}},
	}

	collection := Merge(extractions, nil)
	api := collection["api"]
	require.Len(t, api, 1, "merged strategy produces a single survivor")

	doc := api[0]
	require.Equal(t, "overview.md", doc.Filename)
	require.Equal(t, docs.ResolutionMerged, doc.ConflictResolution)
	require.Equal(t, []string{"a/svc", "b/svc"}, doc.SourceRepos)
	require.Equal(t, "API Overview", doc.Metadata.Title, "title comes from the first-seen document")

	content := string(doc.Content)
	fromA := strings.Index(content, "## From a/svc")
	rule := strings.Index(content, "\n---\n")
	fromB := strings.Index(content, "## From b/svc")
	require.True(t, fromA >= 0 && rule > fromA && fromB > rule,
		"contributions appear in repository order separated by a horizontal rule:\n%s", content)

	require.NotContains(t, content[fromA:fromB], "# API Overview\n",
		"contributor H1 headings are stripped")
	require.Contains(t, content, "Body from A.")
	require.Contains(t, content, "Body from B.")
	require.Equal(t, 2, strings.Count(content, "## From "))
}

func TestMergeThreeWayMerged(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{apiDoc("a/svc", "auth.md", "# Auth\n\nA.\n")}},
		{Repo: "b/svc", Documents: []docs.Document{apiDoc("b/svc", "auth.md", "# Auth\n\nB.\n")}},
		{Repo: "c/svc", Documents: []docs.Document{apiDoc("c/svc", "auth.md", "# Auth\n\nC.\n")}},
	}

	collection := Merge(extractions, nil)
	require.Len(t, collection["api"], 1)
	doc := collection["api"][0]
	require.Len(t, doc.SourceRepos, 3)
	require.Equal(t, 3, strings.Count(string(doc.Content), "## From "))
	require.Equal(t, 2, strings.Count(string(doc.Content), "\n---\n"))
}

func TestMergeRunbooksUsePrefixedStrategy(t *testing.T) {
	rb := func(repo string) docs.Document {
		doc := adrDoc(repo, "RB-001.md", "# Restart\n")
		doc.Section = "runbooks"
		return doc
	}
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{rb("a/svc")}},
		{Repo: "b/svc", Documents: []docs.Document{rb("b/svc")}},
	}

	collection := Merge(extractions, nil)
	require.Len(t, collection["runbooks"], 2)
	require.Equal(t, "a-svc-RB-001.md", collection["runbooks"][0].Filename)
}

func TestMergeSectionFilter(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{
			apiDoc("a/svc", "overview.md", "# A\n"),
			adrDoc("a/svc", "ADR-001.md", "# B\n"),
		}},
	}

	collection := Merge(extractions, []string{"api"})
	require.Contains(t, collection, "api")
	require.NotContains(t, collection, "adr")
}

func TestMergeDeterminism(t *testing.T) {
	build := func() Collection {
		extractions := []RepoExtraction{
			{Repo: "a/svc", Documents: []docs.Document{
				apiDoc("a/svc", "overview.md", "# API Overview\n\nA.\n"),
				adrDoc("a/svc", "ADR-001.md", "# Choice\n"),
			}},
			{Repo: "b/svc", Documents: []docs.Document{
				apiDoc("b/svc", "overview.md", "# API Overview\n\nB.\n"),
				adrDoc("b/svc", "ADR-001.md", "# Choice\n"),
			}},
		}
		return Merge(extractions, nil)
	}

	first, second := build(), build()
	require.Equal(t, first.Sections(), second.Sections())
	for _, section := range first.Sections() {
		require.Equal(t, len(first[section]), len(second[section]))
		for i := range first[section] {
			require.Equal(t, first[section][i].Filename, second[section][i].Filename)
			require.Equal(t, first[section][i].Content, second[section][i].Content,
				"identical inputs must produce byte-identical output")
		}
	}
}

func TestMergeOriginalsUntouched(t *testing.T) {
	original := apiDoc("a/svc", "overview.md", "# A\n\nBody.\n")
	colliding := apiDoc("b/svc", "overview.md", "# B\n\nOther.\n")
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{original}},
		{Repo: "b/svc", Documents: []docs.Document{colliding}},
	}

	_ = Merge(extractions, nil)
	require.Equal(t, "# A\n\nBody.\n", string(original.Content),
		"merge must not mutate extracted documents")
}

func TestSanitizeRepoName(t *testing.T) {
	require.Equal(t, "org-name", SanitizeRepoName("org/name"))
	require.Equal(t, "a-b-c", SanitizeRepoName("a b.c"))
	require.Equal(t, "repo", SanitizeRepoName("repo"))
}

func TestCollectionTotals(t *testing.T) {
	extractions := []RepoExtraction{
		{Repo: "a/svc", Documents: []docs.Document{
			apiDoc("a/svc", "one.md", "# 1\n"),
			apiDoc("a/svc", "two.md", "# 2\n"),
			adrDoc("a/svc", "ADR-001.md", "# 3\n"),
		}},
	}

	collection := Merge(extractions, nil)
	require.Equal(t, 3, collection.TotalDocuments())
	require.Equal(t, []string{"adr", "api"}, collection.Sections())
}
