package config

// DefaultSections returns the standard documentation sections and the
// candidate paths searched for each within a repository.
func DefaultSections() []SectionSpec {
	return []SectionSpec{
		{Name: "adr", Paths: []string{"docs/adr", "docs/adrs", "doc/adr", "adr"}},
		{Name: "api", Paths: []string{"docs/api", "api-docs", "api"}},
		{Name: "architecture", Paths: []string{"docs/architecture", "docs/arch", "architecture"}},
		{Name: "database", Paths: []string{"docs/database", "docs/db", "database"}},
		{Name: "deployment", Paths: []string{"docs/deployment", "docs/deploy", "deploy"}},
		{Name: "features", Paths: []string{"docs/features", "features"}},
		{Name: "runbooks", Paths: []string{"docs/runbooks", "runbooks", "ops/runbooks"}},
		{Name: "security", Paths: []string{"docs/security", "security"}},
	}
}

// DefaultConfig returns a starter configuration for `docmerge init`.
func DefaultConfig() *Config {
	cfg := &Config{
		Repositories: []Repository{
			{
				URL:    "https://git.example.com/org/service-a.git",
				Name:   "org/service-a",
				Branch: "main",
			},
		},
		Output: OutputConfig{Directory: "./aggregated-docs"},
	}
	cfg.ApplyDefaults()
	return cfg
}
