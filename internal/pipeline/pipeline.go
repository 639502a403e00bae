// Package pipeline assembles the full document run: substitution, tab
// grouping, and reference resolution, with aggregated issue reporting.
//
// The registry is built sequentially over the whole corpus first; after that
// every document is processed independently and concurrently against the
// read-only registry. One document's failure never aborts its siblings.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
	"git.home.luguber.info/inful/docexpand/internal/events"
	"git.home.luguber.info/inful/docexpand/internal/logfields"
	"git.home.luguber.info/inful/docexpand/internal/metrics"
	"git.home.luguber.info/inful/docexpand/internal/placeholder"
	"git.home.luguber.info/inful/docexpand/internal/registry"
	"git.home.luguber.info/inful/docexpand/internal/report"
	"git.home.luguber.info/inful/docexpand/internal/tabs"
	"git.home.luguber.info/inful/docexpand/internal/xref"
)

// State is the per-document processing state. Documents move strictly
// forward: Raw → Substituted → TabsGrouped → Resolved|Failed. No stage is
// skipped; a document that fails grouping still has its references resolved
// to maximize issue coverage per run.
type State int

const (
	StateRaw State = iota
	StateSubstituted
	StateTabsGrouped
	StateResolved
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRaw:
		return "raw"
	case StateSubstituted:
		return "substituted"
	case StateTabsGrouped:
		return "tabs_grouped"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DocResult is the outcome for a single document.
type DocResult struct {
	Key    string
	State  State
	Output []byte // assembled document: original frontmatter + substituted body
	Groups []tabs.Group
	Issues []report.Issue
}

// Result is the outcome of a full run.
type Result struct {
	RunID    string
	Docs     []DocResult
	Report   *report.Report
	Duration time.Duration
}

// Options configures a Pipeline.
type Options struct {
	Placeholders map[string]string
	Languages    []string
	Concurrency  int
	Recorder     metrics.Recorder
	Publisher    events.Publisher
}

// Pipeline orchestrates the run. It is stateless across runs and safe for
// reuse.
type Pipeline struct {
	placeholders map[string]string
	parser       *tabs.Parser
	concurrency  int
	recorder     metrics.Recorder
	publisher    events.Publisher
}

// New creates a pipeline. Zero-value options select sensible defaults.
func New(opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	return &Pipeline{
		placeholders: opts.Placeholders,
		parser:       tabs.NewParser(opts.Languages),
		concurrency:  opts.Concurrency,
		recorder:     opts.Recorder,
		publisher:    opts.Publisher,
	}
}

// Run processes the document set. The returned result is deterministic for
// identical input and configuration: documents keep their input order and
// the report is sorted.
func (p *Pipeline) Run(ctx context.Context, docs []*docmodel.Document) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	slog.Info("Starting validation run", logfields.RunID(runID), logfields.Docs(len(docs)))

	// Phase one: collect every anchor before resolving any reference, so
	// references to documents later in iteration order (and forward
	// references within a document) are valid.
	regStart := time.Now()
	reg, err := registry.Build(docs)
	if err != nil {
		p.recorder.IncRunOutcome(metrics.OutcomeFailed)
		return nil, fmt.Errorf("build registry: %w", err)
	}
	p.recorder.ObserveStageDuration("registry", time.Since(regStart))

	// Phase two: per-document processing against the read-only registry.
	docStart := time.Now()
	results := make([]DocResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processDoc(doc, reg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.recorder.IncRunOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	p.recorder.ObserveStageDuration("documents", time.Since(docStart))

	rep := &report.Report{RunID: runID, DocsTotal: len(docs)}
	for _, res := range results {
		rep.Add(res.Issues...)
	}
	rep.Sort()

	result := &Result{
		RunID:    runID,
		Docs:     results,
		Report:   rep,
		Duration: time.Since(started),
	}

	p.record(result)
	p.publishBrokenReferences(ctx, result)

	slog.Info("Validation run finished",
		logfields.RunID(runID),
		logfields.Docs(len(docs)),
		logfields.Issues(len(rep.Issues)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))

	return result, nil
}

// processDoc runs the per-document state machine. It never returns an error:
// every failure is an issue in the result.
func (p *Pipeline) processDoc(doc *docmodel.Document, reg *registry.Registry) DocResult {
	res := DocResult{Key: doc.Key(), State: StateRaw}

	substituted, issues := placeholder.Substitute(doc.Key(), doc.Body(), p.placeholders)
	res.State = StateSubstituted

	groups, tabIssues := p.parser.Parse(doc.Key(), substituted)
	issues = append(issues, tabIssues...)
	res.Groups = groups
	res.State = StateTabsGrouped

	// Resolution works on the substituted body: a placeholder may legally
	// appear inside a link target.
	derived := doc.WithBody(substituted)
	refs := xref.Extract(derived)
	issues = append(issues, xref.Resolve(refs, reg)...)

	// Issue lines are body-relative; shift them to file positions.
	if offset := doc.FrontmatterLines(); offset > 0 {
		for i := range issues {
			if issues[i].Line > 0 {
				issues[i].Line += offset
			}
		}
	}

	res.Issues = issues
	res.Output = doc.Assemble(substituted)

	res.State = StateResolved
	for _, issue := range issues {
		if issue.Severity() == report.SeverityError {
			res.State = StateFailed
			break
		}
	}
	return res
}

func (p *Pipeline) record(result *Result) {
	rep := result.Report
	p.recorder.ObserveRunDuration(result.Duration)
	p.recorder.SetDocsProcessed(rep.DocsTotal)
	for _, kind := range []report.Kind{
		report.KindSubstitutionWarning,
		report.KindMalformedTabGroup,
		report.KindDanglingReference,
		report.KindUnknownAnchor,
	} {
		p.recorder.AddIssues(string(kind), rep.CountByKind(kind))
	}

	switch {
	case rep.HasErrors():
		p.recorder.IncRunOutcome(metrics.OutcomeErrors)
	case rep.WarningCount() > 0:
		p.recorder.IncRunOutcome(metrics.OutcomeWarnings)
	default:
		p.recorder.IncRunOutcome(metrics.OutcomeClean)
	}
}

// publishBrokenReferences emits one event per fatal reference issue. Publish
// failures are logged, never propagated: event delivery is best-effort.
func (p *Pipeline) publishBrokenReferences(ctx context.Context, result *Result) {
	for _, issue := range result.Report.Issues {
		if issue.Kind != report.KindDanglingReference && issue.Kind != report.KindUnknownAnchor {
			continue
		}
		if err := p.publisher.Publish(ctx, events.FromIssue(result.RunID, issue)); err != nil {
			slog.Warn("Failed to publish broken-reference event",
				logfields.Doc(issue.Doc),
				logfields.Target(issue.Target),
				logfields.Error(err))
			return
		}
	}
}
