package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sambeau/lgl/config"
	"github.com/sambeau/lgl/internal/cli"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
	"github.com/sambeau/lgl/pkg/lgl/lgl"
	"github.com/sambeau/lgl/pkg/lgl/report"
	"github.com/sambeau/lgl/pkg/lgl/trace"
)

// Version information, set at build time via -ldflags
var (
	Version = lgl.Version
	Commit  = "unknown"
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// now is replaced in tests.
var now = time.Now

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("lgl-report", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		format      = flags.String("format", "", "Output format: text, markdown or html")
		locale      = flags.String("locale", "", "Locale for markdown and html output")
		pairing     = flags.String("pair", "", "Pairing: sequential or id")
		dsn         = flags.String("db", "", "Read the trace from a database instead of a file")
		runID       = flags.String("run", "", "Run id to read with --db (default: latest)")
		listRuns    = flags.Bool("runs", false, "List the runs stored with --db")
		outputPath  = flags.String("o", "", "Write the report to a file")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	positional, err := cli.ParseInterleaved(flags, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return cli.Usagef("%s", err.Error())
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "lgl-report version %s (%s)\n", Version, Commit)
		return nil
	}

	switch {
	case *dsn == "" && len(positional) != 1:
		return cli.Usagef("expected one trace file")
	case *dsn != "" && len(positional) != 0:
		return cli.Usagef("give a trace file or --db, not both")
	case *dsn == "" && (*runID != "" || *listRuns):
		return cli.Usagef("--run and --runs require --db")
	}

	// Load configuration
	cfg, err := config.Load(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *locale != "" {
		cfg.Report.Locale = *locale
	}
	if *pairing != "" {
		cfg.Report.Pairing = *pairing
	}
	if err := config.Validate(cfg); err != nil {
		return cli.Usagef("%s", err.Error())
	}
	mode, err := report.ParsePairMode(cfg.Report.Pairing)
	if err != nil {
		return cli.Usagef("%s", err.Error())
	}

	if *listRuns {
		return printRuns(*dsn, stdout)
	}

	events, source, err := loadEvents(positional, *dsn, *runID)
	if err != nil {
		return err
	}
	rep := report.Aggregate(events, mode)

	opts := report.MarkdownOptions{
		Source:      source,
		Locale:      cfg.Report.Locale,
		GeneratedAt: now(),
	}
	if *outputPath != "" {
		if err := writeReportFile(*outputPath, cfg.Report.Format, rep, opts); err != nil {
			return err
		}
	} else if err := render(stdout, cfg.Report.Format, rep, opts); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if rep.Unmatched > 0 {
		fmt.Fprintf(stderr, "[WARN] %d trace events had no matching start or stop\n", rep.Unmatched)
	}
	return nil
}

func render(w io.Writer, format string, rep *report.Report, opts report.MarkdownOptions) error {
	switch format {
	case "markdown":
		return report.RenderMarkdown(w, rep, opts)
	case "html":
		return report.RenderHTML(w, rep, opts)
	}
	return report.RenderText(w, rep)
}

// writeReportFile renders into path, reporting a failed close like a failed write.
func writeReportFile(path, format string, rep *report.Report, opts report.MarkdownOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return lerrors.New("IO-0002", map[string]any{"Path": path, "GoError": err.Error()})
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = lerrors.New("IO-0002", map[string]any{"Path": path, "GoError": cerr.Error()})
		}
	}()

	if err := render(f, format, rep, opts); err != nil {
		return lerrors.New("IO-0002", map[string]any{"Path": path, "GoError": err.Error()})
	}
	return nil
}

// loadEvents reads the trace from a file or a database and names its source.
func loadEvents(positional []string, dsn, runID string) (trace.Log, string, error) {
	if dsn == "" {
		events, err := report.ParseFile(positional[0])
		return events, positional[0], err
	}

	store, err := trace.OpenStore(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("opening trace database: %w", err)
	}
	defer store.Close()

	id, events, err := store.Load(runID)
	if err != nil {
		return nil, "", err
	}
	return events, "run " + id, nil
}

func printRuns(dsn string, stdout io.Writer) error {
	store, err := trace.OpenStore(dsn)
	if err != nil {
		return fmt.Errorf("opening trace database: %w", err)
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "(no runs)")
		return nil
	}
	for _, id := range runs {
		fmt.Fprintln(stdout, id)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `lgl-report - Summarise an lgl call trace

Usage:
  lgl-report [options] <trace-file>
  lgl-report <trace-file> [options]
  lgl-report [options] --db DSN [--run ID]
  lgl-report --db DSN --runs

Trace files may be plain, .gz or .zst.

Options:
  --format FORMAT    text (default), markdown or html
  --locale TAG       Locale for markdown and html numbers and dates (e.g. de-DE)
  --pair MODE        sequential (default) pairs by name; id pairs by call id
  --db DSN           Read from sqlite:PATH, postgres://... or mysql://...
  --run ID           Run to report with --db (default: latest)
  --runs             List runs stored with --db
  -o PATH            Write the report to PATH
  --config PATH      Path to config file (default: auto-detect)
  --version          Show version
  --help             Show this help
`)
}
