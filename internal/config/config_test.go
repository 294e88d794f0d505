package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - name: org/svc
    url: https://git.example.com/org/svc.git
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 8, "default sections applied")
	require.Equal(t, "./aggregated-docs", cfg.Output.Directory)
	require.Equal(t, 4, cfg.Extraction.Workers)
	require.Equal(t, 30*time.Minute, time.Duration(cfg.Daemon.Interval))
}

func TestLoadCustomSections(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - name: org/svc
    path: /tmp/svc
sections:
  - name: adr
    paths: [docs/decisions]
section_filter: [adr]
daemon:
  interval: 15m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 1)
	require.Equal(t, []string{"docs/decisions"}, cfg.Sections[0].Paths)
	require.Equal(t, 15*time.Minute, time.Duration(cfg.Daemon.Interval))
}

func TestValidateRejectsMissingName(t *testing.T) {
	cfg := &Config{Repositories: []Repository{{URL: "https://x"}}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "name is required")
}

func TestValidateRejectsMissingSource(t *testing.T) {
	cfg := &Config{Repositories: []Repository{{Name: "org/svc"}}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "either url or path is required")
}

func TestValidateRejectsDuplicateRepoNames(t *testing.T) {
	cfg := &Config{Repositories: []Repository{
		{Name: "org/svc", Path: "/a"},
		{Name: "org/svc", Path: "/b"},
	}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "duplicate name")
}

func TestValidateRejectsUnknownFilterSection(t *testing.T) {
	cfg := &Config{SectionFilter: []string{"wiki"}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), `unknown section "wiki"`)
}

func TestValidateConflictResolutionValues(t *testing.T) {
	for _, valid := range []string{"", "prefix", "merge", "skip", "error"} {
		cfg := &Config{ConflictResolution: valid}
		cfg.ApplyDefaults()
		require.NoError(t, cfg.Validate(), valid)
	}

	cfg := &Config{ConflictResolution: "overwrite"}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "unknown strategy")
}

func TestValidateEventsRequireURL(t *testing.T) {
	cfg := &Config{Events: EventsConfig{Enabled: true}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "url is required")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Repositories)
	require.Len(t, cfg.Sections, 8)
}

func TestDurationRejectsGarbage(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - name: org/svc
    path: /tmp/svc
daemon:
  interval: soon
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "invalid duration")
}
