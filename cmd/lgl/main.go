package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sambeau/lgl/config"
	"github.com/sambeau/lgl/internal/cli"
	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
	"github.com/sambeau/lgl/pkg/lgl/lgl"
	"github.com/sambeau/lgl/pkg/lgl/repl"
	"github.com/sambeau/lgl/pkg/lgl/trace"
	"github.com/sambeau/lgl/pkg/lgl/watch"
)

// Version information, set at build time via -ldflags
var (
	Version = lgl.Version // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown"   // -X main.Commit=$(git rev-parse --short HEAD)
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("lgl", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		tracePath   = flags.String("trace", "", "Write the trace log to PATH")
		traceDB     = flags.String("trace-db", "", "Save the trace to a database")
		evalCode    = flags.String("eval", "", "Evaluate an inline JSON program")
		checkOnly   = flags.Bool("check", false, "Decode the program without running it")
		watchMode   = flags.Bool("watch", false, "Re-run the program when its file changes")
		maxDepth    = flags.Int("max-depth", -1, "Override eval.max_depth")
		verbose     = flags.Bool("verbose", false, "Log every call entry and exit")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(evalCode, "e", "", "Alias for --eval")
	flags.BoolVar(verbose, "v", false, "Alias for --verbose")

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
		fmt.Fprintf(stdout, "lgl version %s (%s)\n", Version, Commit)
		return nil
	}

	if len(positional) > 1 {
		return cli.Usagef("expected one program, got %d", len(positional))
	}
	programPath := ""
	if len(positional) == 1 {
		programPath = positional[0]
	}
	if programPath != "" && *evalCode != "" {
		return cli.Usagef("give a program file or --eval, not both")
	}
	if *watchMode && programPath == "" {
		return cli.Usagef("--watch requires a program file")
	}
	if *checkOnly && programPath == "" && *evalCode == "" {
		return cli.Usagef("--check requires a program file or --eval")
	}

	// Load configuration
	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *tracePath != "" {
		cfg.Trace.Output = *tracePath
	}
	if *traceDB != "" {
		cfg.Trace.Database = *traceDB
	}
	if *maxDepth >= 0 {
		cfg.Eval.MaxDepth = *maxDepth
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logw, closeLog, err := openLog(cfg.Logging.Output, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr, logw: logw}

	switch {
	case *checkOnly:
		return a.check(programPath, *evalCode)
	case *evalCode != "":
		return a.execute(func() (ast.Node, error) { return ast.Parse([]byte(*evalCode)) })
	case *watchMode:
		return a.watch(ctx, programPath)
	case programPath != "":
		return a.execute(func() (ast.Node, error) { return ast.Load(programPath) })
	default:
		return a.repl(stdin)
	}
}

// openLog resolves logging.output to a writer.
func openLog(output string, stdout, stderr io.Writer) (io.Writer, func(), error) {
	switch output {
	case "", "stderr":
		return stderr, func() {}, nil
	case "stdout":
		return stdout, func() {}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `lgl - An evaluator for list-structured programs

Usage:
  lgl [options] <program>
  lgl [options] -e '<json>'
  lgl [options]                 Start the REPL

Programs are JSON (or .yaml/.yml) lists, e.g. ["add", 2, 3].
Options may come before or after the program path.

Options:
  --trace PATH       Write a call trace (.gz and .zst are compressed)
  --trace-db DSN     Save the trace to sqlite:PATH, postgres://... or mysql://...
  -e, --eval JSON    Evaluate an inline program
  --check            Decode the program without running it
  --watch            Re-run the program whenever its file changes
  --max-depth N      Maximum nested calls (0 for no limit)
  -v, --verbose      Log every call entry and exit
  --config PATH      Path to config file (default: auto-detect)
  --version          Show version
  --help             Show this help

Config Resolution:
  1. --config flag
  2. LGL_CONFIG environment variable
  3. ./lgl.yaml
  4. ~/.config/lgl/lgl.yaml

Exit Status:
  0 success, 1 program or trace failure, 2 usage error
`)
}

// app carries the resolved configuration and output streams of one invocation.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logw   io.Writer
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

func (a *app) enabled(level string) bool {
	return levelRank[a.cfg.Logging.Level] <= levelRank[level]
}

func (a *app) logInfo(format string, args ...any) {
	if a.enabled("info") {
		fmt.Fprintf(a.logw, "[INFO] "+format+"\n", args...)
	}
}

func (a *app) logWarn(format string, args ...any) {
	if a.enabled("warn") {
		fmt.Fprintf(a.logw, "[WARN] "+format+"\n", args...)
	}
}

// session builds a Session from the config. The recorder is nil when no
// trace sink is configured.
func (a *app) session() (*lgl.Session, *trace.Recorder) {
	opts := []lgl.Option{lgl.WithMaxDepth(a.cfg.Eval.MaxDepth)}
	if a.enabled("debug") {
		opts = append(opts, lgl.WithLogger(lgl.WriterLogger(a.logw)))
	}

	var rec *trace.Recorder
	if a.cfg.Trace.Enabled() {
		rec = trace.NewRecorder(trace.RecorderConfig{
			Delay:     a.cfg.Trace.Delay,
			IDRetries: a.cfg.Trace.IDRetries,
		})
		opts = append(opts, lgl.WithTracer(rec))
	}
	return lgl.NewSession(opts...), rec
}

// execute decodes and runs one program, prints its value and, on success,
// saves the trace.
func (a *app) execute(load func() (ast.Node, error)) error {
	node, err := load()
	if err != nil {
		return err
	}

	session, rec := a.session()
	result, err := session.Eval(node)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Inspect())

	if rec != nil {
		return a.saveTrace(rec.Events())
	}
	return nil
}

// saveTrace writes events to every configured sink.
func (a *app) saveTrace(events trace.Log) error {
	if path := a.cfg.Trace.Output; path != "" {
		if err := trace.WriteFile(path, events, a.cfg.Trace.Compression); err != nil {
			return lerrors.New("IO-0002", map[string]any{"Path": path, "GoError": err.Error()})
		}
		a.logInfo("wrote %d trace events to %s", len(events), path)
	}

	if dsn := a.cfg.Trace.Database; dsn != "" {
		store, err := trace.OpenStore(dsn)
		if err != nil {
			return fmt.Errorf("opening trace database: %w", err)
		}
		defer store.Close()

		runID := trace.NewRunID(time.Now())
		if err := store.Save(runID, events); err != nil {
			return fmt.Errorf("saving trace: %w", err)
		}
		a.logInfo("saved %d trace events as run %s", len(events), runID)
	}
	return nil
}

// check decodes the program and reports whether it is well formed.
func (a *app) check(path, code string) error {
	var err error
	if code != "" {
		_, err = ast.Parse([]byte(code))
	} else {
		_, err = ast.Load(path)
	}
	if err != nil {
		return err
	}

	name := path
	if name == "" {
		name = "<eval>"
	}
	fmt.Fprintf(a.stdout, "ok: %s\n", name)
	return nil
}

// watch re-runs the program on every change until interrupted.
func (a *app) watch(ctx context.Context, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runProgram := func(ctx context.Context, path string) error {
		err := a.execute(func() (ast.Node, error) { return ast.Load(path) })
		if err != nil {
			cli.PrintError(a.stderr, err)
			return fmt.Errorf("run failed: %s", path)
		}
		return nil
	}

	w, err := watch.New(path, a.cfg.Watch.Debounce, runProgram, a.logw, a.stderr)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	return w.Run(ctx)
}

// repl runs the interactive shell, then saves any trace it recorded.
func (a *app) repl(stdin io.Reader) error {
	if f, ok := stdin.(*os.File); !ok || !isTerminal(f) {
		a.logWarn("stdin is not a terminal; line editing is disabled")
	}

	session, rec := a.session()
	repl.Start(a.stdout, session, repl.Config{
		Version: Version,
		Prompt:  a.cfg.REPL.Prompt,
		History: a.cfg.REPL.History,
	})

	if rec != nil && rec.Len() > 0 {
		return a.saveTrace(rec.Events())
	}
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
