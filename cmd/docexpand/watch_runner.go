package main

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docexpand/internal/config"
	"git.home.luguber.info/inful/docexpand/internal/docmodel"
	"git.home.luguber.info/inful/docexpand/internal/events"
	"git.home.luguber.info/inful/docexpand/internal/load"
	"git.home.luguber.info/inful/docexpand/internal/logfields"
	"git.home.luguber.info/inful/docexpand/internal/metrics"
	"git.home.luguber.info/inful/docexpand/internal/pipeline"
	"git.home.luguber.info/inful/docexpand/internal/state"
)

// watchRunner executes validation runs for watch mode, wiring the state
// store, metrics recorder, and event publisher into each run.
type watchRunner struct {
	cfg       *config.Config
	store     *state.Store
	recorder  metrics.Recorder
	publisher events.Publisher
}

func (r *watchRunner) run(ctx context.Context, reason string) error {
	started := time.Now()

	docs, err := load.NewLoader(r.cfg.Docs.Root, r.cfg.Docs.Extensions).Load()
	if err != nil {
		return err
	}

	r.logChangedDocs(ctx, docs)

	p := pipeline.New(pipeline.Options{
		Placeholders: r.cfg.Placeholders,
		Languages:    r.cfg.Languages,
		Concurrency:  r.cfg.Concurrency,
		Recorder:     r.recorder,
		Publisher:    r.publisher,
	})
	result, err := p.Run(ctx, docs)
	if err != nil {
		return err
	}

	printIssues(result.Report)

	if err := r.store.RecordRun(ctx, state.Run{
		ID:        result.RunID,
		StartedAt: started,
		Duration:  result.Duration,
		Docs:      result.Report.DocsTotal,
		Errors:    result.Report.ErrorCount(),
		Warnings:  result.Report.WarningCount(),
	}); err != nil {
		slog.Warn("Failed to record run", logfields.Error(err))
	}

	slog.Info("Watch run complete",
		"reason", reason,
		logfields.RunID(result.RunID),
		logfields.Docs(result.Report.DocsTotal),
		logfields.Issues(len(result.Report.Issues)))
	return nil
}

// logChangedDocs compares stored fingerprints against the freshly loaded
// corpus and logs every changed document, then persists the new prints.
func (r *watchRunner) logChangedDocs(ctx context.Context, docs []*docmodel.Document) {
	changed := 0
	for _, doc := range docs {
		fp := state.DocFingerprint(doc)
		prev, err := r.store.Fingerprint(ctx, doc.Key())
		if err != nil {
			slog.Warn("Failed to read fingerprint", logfields.Doc(doc.Key()), logfields.Error(err))
			continue
		}
		if prev == fp {
			continue
		}
		changed++
		slog.Debug("Document changed", logfields.Doc(doc.Key()))
		if err := r.store.SetFingerprint(ctx, doc.Key(), fp); err != nil {
			slog.Warn("Failed to store fingerprint", logfields.Doc(doc.Key()), logfields.Error(err))
		}
	}
	if changed > 0 {
		slog.Info("Changed documents since last run", "changed", changed)
	}
}
