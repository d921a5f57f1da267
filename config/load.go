package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults when no file exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
// The path is empty when no file was found.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg := Defaults()
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
		return cfg, "", nil
	}

	// Get absolute path and directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	// Resolve relative trace paths
	if cfg.Trace.Output != "" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(baseDir, cfg.Trace.Output)
	}
	if rest, ok := strings.CutPrefix(cfg.Trace.Database, "sqlite:"); ok && rest != "" && !filepath.IsAbs(rest) {
		cfg.Trace.Database = "sqlite:" + filepath.Join(baseDir, rest)
	}
	if cfg.REPL.History != "" && cfg.REPL.History != "none" && !filepath.IsAbs(cfg.REPL.History) {
		cfg.REPL.History = filepath.Join(baseDir, cfg.REPL.History)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > LGL_CONFIG env > ./lgl.yaml > ~/.config/lgl/lgl.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try LGL_CONFIG environment variable
	if envPath := getenv("LGL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("LGL_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ./lgl.yaml
	if _, err := os.Stat("lgl.yaml"); err == nil {
		return "lgl.yaml", nil
	}

	// Try ~/.config/lgl/lgl.yaml
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "lgl", "lgl.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration and reports every problem at once.
// Call it again after applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Eval.MaxDepth < 0 {
		errs = append(errs, fmt.Sprintf("eval.max_depth: %d (must be 0 or more)", cfg.Eval.MaxDepth))
	}

	// Trace validation
	if cfg.Trace.Delay < 0 {
		errs = append(errs, fmt.Sprintf("trace.delay: %s (must not be negative)", cfg.Trace.Delay))
	}
	if cfg.Trace.IDRetries < 0 {
		errs = append(errs, fmt.Sprintf("trace.id_retries: %d (must be 0 or more)", cfg.Trace.IDRetries))
	}
	validCompression := map[string]bool{"fastest": true, "default": true, "best": true}
	if !validCompression[cfg.Trace.Compression] {
		errs = append(errs, fmt.Sprintf("invalid trace compression: %s (must be fastest, default, or best)", cfg.Trace.Compression))
	}
	if db := cfg.Trace.Database; db != "" &&
		!strings.HasPrefix(db, "sqlite:") &&
		!strings.HasPrefix(db, "postgres://") &&
		!strings.HasPrefix(db, "postgresql://") &&
		!strings.HasPrefix(db, "mysql://") {
		errs = append(errs, fmt.Sprintf("trace.database: unsupported DSN %q (must start with sqlite:, postgres:// or mysql://)", db))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce: %s (must not be negative)", cfg.Watch.Debounce))
	}

	// Report validation
	validFormats := map[string]bool{"text": true, "markdown": true, "html": true}
	if !validFormats[cfg.Report.Format] {
		errs = append(errs, fmt.Sprintf("invalid report format: %s (must be text, markdown, or html)", cfg.Report.Format))
	}
	validPairing := map[string]bool{"sequential": true, "id": true}
	if !validPairing[cfg.Report.Pairing] {
		errs = append(errs, fmt.Sprintf("invalid report pairing: %s (must be sequential or id)", cfg.Report.Pairing))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
