// Package config defines the docmerge configuration model and loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Repositories  []Repository  `yaml:"repositories"`
	Sections      []SectionSpec `yaml:"sections,omitempty"`       // Defaults applied when empty
	SectionFilter []string      `yaml:"section_filter,omitempty"` // Empty = all sections
	// ConflictResolution is parsed and validated for forward compatibility but
	// is not yet consulted by the merger: conflict strategy is currently
	// selected by section name (adr/runbooks use prefixing, others merge).
	ConflictResolution string           `yaml:"conflict_resolution,omitempty"`
	Output             OutputConfig     `yaml:"output"`
	Workspace          WorkspaceConfig  `yaml:"workspace,omitempty"`
	Extraction         ExtractionConfig `yaml:"extraction,omitempty"`
	Daemon             DaemonConfig     `yaml:"daemon,omitempty"`
	Events             EventsConfig     `yaml:"events,omitempty"`
	State              StateConfig      `yaml:"state,omitempty"`
}

// Repository represents a source repository to aggregate documentation from.
// Either URL (cloned into the workspace) or Path (already checked out) must be set.
type Repository struct {
	URL    string            `yaml:"url,omitempty"`
	Name   string            `yaml:"name"`
	Branch string            `yaml:"branch,omitempty"`
	Path   string            `yaml:"path,omitempty"` // Local root, skips cloning
	Tags   map[string]string `yaml:"tags,omitempty"` // Additional metadata
}

// SectionSpec names a documentation section and the candidate relative paths
// searched for it within each repository. Every existing candidate path is
// searched, not just the first match.
type SectionSpec struct {
	Name  string   `yaml:"name"`
	Paths []string `yaml:"paths"`
}

// OutputConfig controls where the aggregated collection is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// WorkspaceConfig controls the working directory used for repository clones.
type WorkspaceConfig struct {
	Directory  string `yaml:"directory,omitempty"`
	Persistent bool   `yaml:"persistent,omitempty"`
}

// ExtractionConfig bounds per-repository extraction concurrency.
type ExtractionConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// DaemonConfig controls continuous aggregation mode.
type DaemonConfig struct {
	Interval Duration `yaml:"interval,omitempty"`
	Listen   string   `yaml:"listen,omitempty"`
}

// EventsConfig controls optional NATS run-event publishing.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StateConfig controls the run-history database.
type StateConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Duration wraps time.Duration with YAML string parsing ("15m", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Load reads and validates a configuration file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// #nosec G306 -- configuration is not secret material
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Sections) == 0 {
		c.Sections = DefaultSections()
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./aggregated-docs"
	}
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = 4
	}
	if c.Daemon.Interval <= 0 {
		c.Daemon.Interval = Duration(30 * time.Minute)
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":8085"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "docmerge.runs"
	}
	if c.State.Path == "" {
		c.State.Path = "docmerge-state.db"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Repositories))
	for i, repo := range c.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repository[%d]: name is required", i)
		}
		if repo.URL == "" && repo.Path == "" {
			return fmt.Errorf("repository %q: either url or path is required", repo.Name)
		}
		if _, dup := seen[repo.Name]; dup {
			return fmt.Errorf("repository %q: duplicate name", repo.Name)
		}
		seen[repo.Name] = struct{}{}
	}

	known := make(map[string]struct{}, len(c.Sections))
	for i, section := range c.Sections {
		if section.Name == "" {
			return fmt.Errorf("section[%d]: name is required", i)
		}
		if len(section.Paths) == 0 {
			return fmt.Errorf("section %q: at least one candidate path is required", section.Name)
		}
		known[section.Name] = struct{}{}
	}
	for _, name := range c.SectionFilter {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("section_filter: unknown section %q", name)
		}
	}

	switch c.ConflictResolution {
	case "", "prefix", "merge", "skip", "error":
	default:
		return fmt.Errorf("conflict_resolution: unknown strategy %q", c.ConflictResolution)
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events: url is required when enabled")
	}
	return nil
}
