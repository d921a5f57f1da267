package config

import "time"

// Config represents the complete lgl configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Eval    EvalConfig    `yaml:"eval"`
	Trace   TraceConfig   `yaml:"trace"`
	Logging LoggingConfig `yaml:"logging"`
	REPL    REPLConfig    `yaml:"repl"`
	Watch   WatchConfig   `yaml:"watch"`
	Report  ReportConfig  `yaml:"report"`
}

// EvalConfig holds evaluator settings
type EvalConfig struct {
	MaxDepth int `yaml:"max_depth"` // Nested call limit (default: 10000, 0 = unbounded)
}

// TraceConfig holds execution trace settings
type TraceConfig struct {
	Output      string        `yaml:"output"`      // Trace file written after a successful run (.gz and .zst compress)
	Database    string        `yaml:"database"`    // DSN: sqlite:path, postgres://..., mysql://...
	Delay       time.Duration `yaml:"delay"`       // Pause around each traced call (default: 100µs)
	IDRetries   int           `yaml:"id_retries"`  // Random id draws before linear probing (default: 64)
	Compression string        `yaml:"compression"` // fastest, default, best (default: "default")
}

// Enabled reports whether any trace sink is configured.
func (t TraceConfig) Enabled() bool {
	return t.Output != "" || t.Database != ""
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	History string `yaml:"history"` // History file (default: ~/.lgl_history, "none" disables)
	Prompt  string `yaml:"prompt"`
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-running (default: 100ms)
}

// ReportConfig holds lgl-report defaults
type ReportConfig struct {
	Format  string `yaml:"format"`  // text, markdown, html
	Locale  string `yaml:"locale"`  // BCP 47 tag for markdown/html output
	Pairing string `yaml:"pairing"` // sequential, id
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Eval: EvalConfig{
			MaxDepth: 10000,
		},
		Trace: TraceConfig{
			Delay:       100 * time.Microsecond,
			IDRetries:   64,
			Compression: "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
		},
		REPL: REPLConfig{
			Prompt: "lgl> ",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Report: ReportConfig{
			Format:  "text",
			Locale:  "en-US",
			Pairing: "sequential",
		},
	}
}
