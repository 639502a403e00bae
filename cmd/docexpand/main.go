package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docexpand/internal/config"
	"git.home.luguber.info/inful/docexpand/internal/events"
	"git.home.luguber.info/inful/docexpand/internal/load"
	"git.home.luguber.info/inful/docexpand/internal/logfields"
	"git.home.luguber.info/inful/docexpand/internal/metrics"
	"git.home.luguber.info/inful/docexpand/internal/pipeline"
	"git.home.luguber.info/inful/docexpand/internal/report"
	"git.home.luguber.info/inful/docexpand/internal/state"
	"git.home.luguber.info/inful/docexpand/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docexpand.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Expand struct {
		Input   string `short:"i" help:"Docs root directory (overrides config)"`
		Output  string `short:"o" help:"Output directory for expanded documents (overrides config)"`
		Version string `help:"Release version substituted for $VERSION$ (overrides config)"`
	} `cmd:"" help:"Validate the corpus and write substituted documents"`

	Check struct {
		Input    string `short:"i" help:"Docs root directory (overrides config)"`
		Version  string `help:"Release version substituted for $VERSION$ (overrides config)"`
		Format   string `help:"Report format (text, json)" default:"text" enum:"text,json"`
		ReportMd string `name:"report-md" help:"Write a markdown summary report to this path"`
	} `cmd:"" help:"Validate the corpus without writing output"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Input       string `short:"i" help:"Docs root directory (overrides config)"`
		MetricsAddr string `help:"Serve Prometheus metrics on this address (overrides config)"`
	} `cmd:"" help:"Revalidate continuously on changes"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	exit := 0
	switch kctx.Command() {
	case "expand":
		exit, err = runExpand()
	case "check":
		exit, err = runCheck()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "watch":
		err = runWatch()
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
	os.Exit(exit)
}

// loadConfig loads the config file, or falls back to defaults so the tool
// works with nothing but an input directory and a version flag.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", "path", CLI.Config)
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

func applyOverrides(cfg *config.Config, input, version string) {
	if input != "" {
		cfg.Docs.Root = input
	}
	if version != "" {
		cfg.Placeholders["VERSION"] = version
	}
}

func runExpand() (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 1, err
	}
	applyOverrides(cfg, CLI.Expand.Input, CLI.Expand.Version)
	if CLI.Expand.Output != "" {
		cfg.Output.Directory = CLI.Expand.Output
	}

	result, err := runPipeline(context.Background(), cfg)
	if err != nil {
		return 1, err
	}

	printIssues(result.Report)

	if result.Report.HasErrors() {
		slog.Error("Corpus has errors, no output written",
			logfields.Issues(result.Report.ErrorCount()))
		return 1, nil
	}

	if err := writeOutputs(cfg.Output.Directory, result); err != nil {
		return 1, err
	}
	slog.Info("Expanded documents written",
		"output", cfg.Output.Directory,
		logfields.Docs(len(result.Docs)))
	return 0, nil
}

func runCheck() (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 1, err
	}
	applyOverrides(cfg, CLI.Check.Input, CLI.Check.Version)

	result, err := runPipeline(context.Background(), cfg)
	if err != nil {
		return 1, err
	}

	if CLI.Check.Format == "json" {
		if err := report.NewJSONFormatter().Format(os.Stdout, result.Report); err != nil {
			return 1, err
		}
	} else {
		printIssues(result.Report)
	}

	if CLI.Check.ReportMd != "" {
		if err := writeMarkdownReport(CLI.Check.ReportMd, result.Report); err != nil {
			return 1, err
		}
	}

	if result.Report.HasErrors() {
		return 1, nil
	}
	return 0, nil
}

func runWatch() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg, CLI.Watch.Input, "")
	if CLI.Watch.MetricsAddr != "" {
		cfg.Watch.MetricsAddr = CLI.Watch.MetricsAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close state store", logfields.Error(err))
		}
	}()

	recorder, err := startMetrics(cfg.Watch.MetricsAddr)
	if err != nil {
		return err
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	runner := &watchRunner{cfg: cfg, store: store, recorder: recorder, publisher: publisher}

	// Validate once at startup so the watcher begins from a known state.
	if err := runner.run(ctx, "startup"); err != nil {
		return err
	}

	w, err := watch.New(cfg.Docs.Root, cfg.Docs.Extensions,
		cfg.Watch.DebounceDuration(), cfg.Watch.RevalidateDuration(), runner.run)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping watcher")
	return w.Stop()
}

// runPipeline loads the corpus and executes one run with default collaborators.
func runPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Result, error) {
	docs, err := load.NewLoader(cfg.Docs.Root, cfg.Docs.Extensions).Load()
	if err != nil {
		return nil, err
	}

	p := pipeline.New(pipeline.Options{
		Placeholders: cfg.Placeholders,
		Languages:    cfg.Languages,
		Concurrency:  cfg.Concurrency,
	})
	return p.Run(ctx, docs)
}

func printIssues(rep *report.Report) {
	if err := report.NewTextFormatter().Format(os.Stderr, rep); err != nil {
		slog.Error("Failed to print issues", logfields.Error(err))
	}
}

func writeOutputs(outputDir string, result *pipeline.Result) error {
	for _, doc := range result.Docs {
		dest := filepath.Join(outputDir, filepath.FromSlash(doc.Key))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(dest, doc.Output, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", doc.Key, err)
		}
	}
	return nil
}

func writeMarkdownReport(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close report file", logfields.Error(cerr))
		}
	}()
	return report.NewMarkdownWriter(f).Write(rep)
}

// startMetrics creates the recorder and, when addr is set, serves /metrics.
func startMetrics(addr string) (metrics.Recorder, error) {
	if addr == "" {
		return metrics.NoopRecorder{}, nil
	}

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return recorder, nil
}

func newPublisher(cfg *config.Config) events.Publisher {
	if !cfg.Events.Enabled {
		return events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		slog.Warn("Event publishing disabled", logfields.Error(err))
		return events.NoopPublisher{}
	}
	return pub
}
