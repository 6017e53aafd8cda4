package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/codesim/pkg/language"
)

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "CODESIM_CONFIG"

// Config holds all configuration options for codesim.
type Config struct {
	// Comparison defaults for compare, ast and batch
	Compare CompareConfig `koanf:"compare" toml:"compare" yaml:"compare"`

	// External parser commands per language
	Parsers ParsersConfig `koanf:"parsers" toml:"parsers" yaml:"parsers"`

	// Many-file analysis
	Batch BatchConfig `koanf:"batch" toml:"batch" yaml:"batch"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`

	// Logging
	Log LogConfig `koanf:"log" toml:"log" yaml:"log"`
}

// CompareConfig selects how a pair of files is compared.
type CompareConfig struct {
	Strategy       string `koanf:"strategy" toml:"strategy" yaml:"strategy"`                      // token, structure
	Backend        string `koanf:"backend" toml:"backend" yaml:"backend"`                         // native, external, treesitter
	OnUnsupported  string `koanf:"on_unsupported" toml:"on_unsupported" yaml:"on_unsupported"`    // zero, fail
	TimeoutSeconds int    `koanf:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds"` // per parser process
}

// ParsersConfig holds the argv of each external parser. The file path is
// appended as the last argument. An empty command uses the native
// structural extractor for that language.
type ParsersConfig struct {
	CFamily []string `koanf:"cfamily" toml:"cfamily" yaml:"cfamily"`
	Java    []string `koanf:"java" toml:"java" yaml:"java"`
	Python  []string `koanf:"python" toml:"python" yaml:"python"`
}

// Commands returns the configured commands keyed by language.
func (p ParsersConfig) Commands() map[language.Tag][]string {
	return map[language.Tag][]string{
		language.CFamily: p.CFamily,
		language.Java:    p.Java,
		language.Python:  p.Python,
	}
}

// BatchConfig controls many-file analysis.
type BatchConfig struct {
	Threshold float64 `koanf:"threshold" toml:"threshold" yaml:"threshold"` // suspicious when similarity exceeds this ratio
	Workers   int     `koanf:"workers" toml:"workers" yaml:"workers"`       // 0 = 2x NumCPU
	AllPairs  bool    `koanf:"all_pairs" toml:"all_pairs" yaml:"all_pairs"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// CacheConfig controls caching of extracted units.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" yaml:"level"` // debug, info, warn, error
	File  string `koanf:"file" toml:"file" yaml:"file"`    // also write logs here
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Compare: CompareConfig{
			Strategy:       "structure",
			Backend:        "native",
			OnUnsupported:  "zero",
			TimeoutSeconds: 30,
		},
		Parsers: ParsersConfig{
			CFamily: []string{},
			Java:    []string{"java", "Java_parser"},
			Python:  []string{"python3", "py_parser.py"},
		},
		Batch: BatchConfig{
			Threshold: 0.30,
			Workers:   0,
			AllPairs:  false,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*_pb2.py",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".codesim",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".codesim/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := checkSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("check config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames lists the file names searched for, in order.
var configNames = []string{
	"codesim.toml",
	"codesim.yaml",
	"codesim.yml",
	"codesim.json",
	".codesim.toml",
	".codesim.yaml",
	".codesim.yml",
	".codesim.json",
}

// Find returns the first config file in the current directory or .codesim/,
// or "" when there is none.
func Find() string {
	for _, dir := range []string{".", ".codesim"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Resolve loads the config named by explicit, else by $CODESIM_CONFIG, else
// the first file Find locates, else the defaults. It returns the path used,
// which is "" for defaults. The result is validated.
func Resolve(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		path = Find()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	cfg, _, err := Resolve("")
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.Compare.Strategy {
	case "token", "structure":
	default:
		errs = append(errs, fmt.Errorf("compare.strategy: unknown value %q (want token or structure)", c.Compare.Strategy))
	}
	switch c.Compare.Backend {
	case "native", "external", "treesitter":
	default:
		errs = append(errs, fmt.Errorf("compare.backend: unknown value %q (want native, external or treesitter)", c.Compare.Backend))
	}
	switch c.Compare.OnUnsupported {
	case "zero", "fail":
	default:
		errs = append(errs, fmt.Errorf("compare.on_unsupported: unknown value %q (want zero or fail)", c.Compare.OnUnsupported))
	}
	if c.Compare.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("compare.timeout_seconds: must be positive, got %d", c.Compare.TimeoutSeconds))
	}
	if c.Batch.Threshold < 0 || c.Batch.Threshold > 1 {
		errs = append(errs, fmt.Errorf("batch.threshold: must be within [0,1], got %g", c.Batch.Threshold))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers: must not be negative, got %d", c.Batch.Workers))
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir: required when cache is enabled"))
	}
	switch c.Output.Format {
	case "text", "json", "markdown", "md", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown value %q", c.Output.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown value %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
