package git

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmerge/internal/config"
)

func TestAcquireLocalPaths(t *testing.T) {
	repoA := t.TempDir()
	repoB := t.TempDir()

	client := NewClient(t.TempDir())
	paths, err := client.Acquire(context.Background(), []config.Repository{
		{Name: "a/svc", Path: repoA},
		{Name: "b/svc", Path: repoB},
	})
	require.NoError(t, err)
	require.Equal(t, repoA, paths["a/svc"])
	require.Equal(t, repoB, paths["b/svc"])
}

func TestAcquireMissingLocalPathIsFatal(t *testing.T) {
	client := NewClient(t.TempDir())
	_, err := client.Acquire(context.Background(), []config.Repository{
		{Name: "a/svc", Path: filepath.Join(t.TempDir(), "nope")},
	})
	require.ErrorIs(t, err, ErrLocalPathMissing)
}

func TestSanitizeDirName(t *testing.T) {
	require.Equal(t, "org-name", sanitizeDirName("org/name"))
	require.Equal(t, "plain", sanitizeDirName("plain"))
}
