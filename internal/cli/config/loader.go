package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configFileNames lists the config file names looked up in a directory.
var configFileNames = []string{"dbexport.yaml", "dbexport.yml"}

// configIn returns the config file in dir, or "".
func configIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevel.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevel; i++ {
		if configIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Nearest ancestor of the working directory holding dbexport.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves path against baseDir when it is relative.
// Paths under the working directory stay relative so progress output reads
// the same as the configured value.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, baseDir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Join(rel, path)
		}
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, the config file, the
// environment and flags.
// Precedence (highest to lowest): flags > DB_URL > DBEXPORT_* > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// .env never overrides variables already set in the environment
	_ = godotenv.Load(filepath.Join(projectRoot, dotEnvFile))

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"schemas":        DefaultSchemas(),
		"output_dir":     DefaultOutputDir,
		"default_schema": DefaultSchema,
		"verbose":        false,
		"output":         DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = configIn(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DBEXPORT_ prefix)
	// Transform: DBEXPORT_OUTPUT_DIR -> output_dir, DBEXPORT_SCHEMAS=a,b -> [a b]
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "schemas" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. DB_URL, the variable the connection string has always come from
	if url := os.Getenv(DatabaseURLEnv); url != "" {
		if err := k.Load(confmap.Provider(map[string]interface{}{
			"database_url": url,
		}, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DatabaseURLEnv, err)
		}
	}

	// 5. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	cfg.OutputDir = resolvePathRelativeTo(cfg.OutputDir, projectRoot)
	cfg.Schemas = compactList(cfg.Schemas)
	cfg.CatalogType = strings.ToLower(strings.TrimSpace(cfg.CatalogType))

	currentConfig = &cfg
	return &cfg, nil
}

func splitList(s string) []string {
	return compactList(strings.Split(s, ","))
}

// compactList trims entries and drops empty ones.
func compactList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
