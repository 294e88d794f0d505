package aggregate

import (
	"context"

	"git.home.luguber.info/inful/docmerge/internal/config"
)

// LocalAcquirer resolves repositories to their configured local paths without
// touching the network. Path existence is not checked here: a missing tree
// surfaces during extraction as a per-repository warning instead of aborting
// the run.
type LocalAcquirer struct{}

func (LocalAcquirer) Acquire(_ context.Context, repositories []config.Repository) (map[string]string, error) {
	paths := make(map[string]string, len(repositories))
	for _, repo := range repositories {
		paths[repo.Name] = repo.Path
	}
	return paths, nil
}
