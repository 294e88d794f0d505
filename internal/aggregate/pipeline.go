// Package aggregate orchestrates the documentation aggregation pipeline:
// acquire → extract → merge → link → index.
//
// The stages run strictly left to right. Extraction fans out per repository
// with bounded concurrency; merge, link and index operate single-threaded on
// the global in-memory view. Acquisition failures are fatal to the run,
// per-repository extraction failures degrade to warnings.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docmerge/internal/config"
	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/events"
	"git.home.luguber.info/inful/docmerge/internal/foundation"
	"git.home.luguber.info/inful/docmerge/internal/index"
	"git.home.luguber.info/inful/docmerge/internal/link"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/merge"
	"git.home.luguber.info/inful/docmerge/internal/metrics"
)

// Acquirer resolves configured repositories to local root paths. The core
// never sees clone or network details, only the resolved paths.
type Acquirer interface {
	Acquire(ctx context.Context, repositories []config.Repository) (map[string]string, error)
}

// Warning is a per-repository extraction failure the run survived.
type Warning struct {
	Repo string
	Err  error
}

func (w Warning) Error() string { return fmt.Sprintf("%s: %v", w.Repo, w.Err) }

// Report summarizes one aggregation run.
type Report struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Repositories   []string
	Extracted      int
	Conflicts      int
	LinkStats      link.Stats
	BrokenLinks    []link.Broken
	Warnings       []Warning
	Fingerprint    string
	Collection     merge.Collection
	IndexText      string
}

// Pipeline wires the aggregation stages together.
type Pipeline struct {
	cfg       *config.Config
	acquirer  Acquirer
	recorder  metrics.Recorder
	publisher events.Publisher
	now       func() time.Time
}

// New creates a pipeline with no-op metrics and events.
func New(cfg *config.Config, acquirer Acquirer) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		acquirer:  acquirer,
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		now:       time.Now,
	}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline { p.recorder = r; return p }

// WithPublisher attaches a run-event publisher (fluent helper).
func (p *Pipeline) WithPublisher(pub events.Publisher) *Pipeline { p.publisher = pub; return p }

// Run executes one aggregation run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
	}
	for _, repo := range p.cfg.Repositories {
		report.Repositories = append(report.Repositories, repo.Name)
	}

	slog.Info("Aggregation run started",
		logfields.RunID(report.RunID), logfields.Count(len(report.Repositories)))
	p.publishEvent(events.RunEvent{
		Type: events.TypeRunStarted, RunID: report.RunID, Timestamp: report.StartedAt,
		Repositories: len(report.Repositories),
	})

	// Acquisition is fatal on failure, unlike per-repository extraction.
	acquired := p.acquire(ctx)
	if acquired.IsErr() {
		err := acquired.UnwrapErr()
		p.recorder.RunCompleted(false)
		p.publishEvent(events.RunEvent{
			Type: events.TypeRunFailed, RunID: report.RunID, Timestamp: p.now(), Error: err.Error(),
		})
		return nil, fmt.Errorf("acquisition failed: %w", err)
	}
	repoPaths := acquired.Unwrap()

	extractions := p.extract(report, repoPaths)

	mergeStart := p.now()
	report.Collection = merge.Merge(extractions, p.cfg.SectionFilter)
	p.recorder.StageDuration("merge", p.now().Sub(mergeStart).Seconds())
	p.recordConflicts(report)

	linkStart := p.now()
	report.LinkStats = link.Rewrite(report.Collection)
	report.BrokenLinks = link.Verify(report.Collection)
	p.recorder.StageDuration("link", p.now().Sub(linkStart).Seconds())
	p.recorder.LinksRewritten(report.LinkStats.Rewritten)

	indexStart := p.now()
	indexText, err := index.Build(report.Collection, index.Context{
		Repositories: report.Repositories,
		GeneratedAt:  report.StartedAt,
	})
	if err != nil {
		p.recorder.RunCompleted(false)
		p.publishEvent(events.RunEvent{
			Type: events.TypeRunFailed, RunID: report.RunID, Timestamp: p.now(), Error: err.Error(),
		})
		return nil, err
	}
	report.IndexText = indexText
	p.recorder.StageDuration("index", p.now().Sub(indexStart).Seconds())

	report.Fingerprint = collectionFingerprint(report.Collection)
	report.Duration = p.now().Sub(report.StartedAt)

	p.recorder.RunCompleted(true)
	p.publishEvent(events.RunEvent{
		Type: events.TypeRunCompleted, RunID: report.RunID, Timestamp: p.now(),
		Repositories: len(report.Repositories),
		Documents:    report.Collection.TotalDocuments(),
		Conflicts:    report.Conflicts,
		Warnings:     warningStrings(report.Warnings),
	})
	slog.Info("Aggregation run completed",
		logfields.RunID(report.RunID),
		logfields.Count(report.Collection.TotalDocuments()),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

func (p *Pipeline) acquire(ctx context.Context) foundation.Result[map[string]string, error] {
	start := p.now()
	defer func() { p.recorder.StageDuration("acquire", p.now().Sub(start).Seconds()) }()
	return foundation.FromTuple[map[string]string, error](p.acquirer.Acquire(ctx, p.cfg.Repositories))
}

// extract runs per-repository extraction with bounded concurrency, in
// configuration order. A failing repository becomes a warning, not an abort.
func (p *Pipeline) extract(report *Report, repoPaths map[string]string) []merge.RepoExtraction {
	start := p.now()
	extractor := docs.NewExtractor(p.cfg.Sections)

	results := runOrdered(p.cfg.Repositories, p.cfg.Extraction.Workers,
		func(repo config.Repository) (merge.RepoExtraction, error) {
			root, ok := repoPaths[repo.Name]
			if !ok {
				return merge.RepoExtraction{}, fmt.Errorf("no resolved path for repository %s", repo.Name)
			}
			documents, err := extractor.Extract(repo.Name, root)
			if err != nil {
				return merge.RepoExtraction{}, err
			}
			return merge.RepoExtraction{Repo: repo.Name, Documents: documents}, nil
		})

	extractions := make([]merge.RepoExtraction, 0, len(results))
	for i, res := range results {
		if res.Err != nil {
			warning := Warning{Repo: p.cfg.Repositories[i].Name, Err: res.Err}
			report.Warnings = append(report.Warnings, warning)
			slog.Warn("Repository extraction failed, continuing",
				logfields.Repository(warning.Repo), logfields.Error(res.Err))
			continue
		}
		report.Extracted += len(res.Value.Documents)
		extractions = append(extractions, res.Value)
	}

	p.recorder.StageDuration("extract", p.now().Sub(start).Seconds())
	p.recorder.RepositoriesProcessed(len(extractions))
	p.recorder.DocumentsExtracted(report.Extracted)
	p.recorder.ExtractionWarnings(len(report.Warnings))
	return extractions
}

func (p *Pipeline) recordConflicts(report *Report) {
	byStrategy := make(map[string]int)
	for _, section := range report.Collection.Sections() {
		for _, doc := range report.Collection[section] {
			if doc.ConflictResolution != "" {
				byStrategy[doc.ConflictResolution]++
				report.Conflicts++
			}
		}
	}
	for strategy, n := range byStrategy {
		p.recorder.Conflicts(strategy, n)
	}
}

func (p *Pipeline) publishEvent(event events.RunEvent) {
	if err := p.publisher.Publish(event); err != nil {
		slog.Warn("Failed to publish run event", slog.String("type", string(event.Type)), logfields.Error(err))
	}
}

func collectionFingerprint(collection merge.Collection) string {
	var flattened []docs.Document
	for _, section := range collection.Sections() {
		for _, doc := range collection[section] {
			flattened = append(flattened, *doc)
		}
	}
	return docs.CollectionFingerprint(flattened)
}

func warningStrings(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
