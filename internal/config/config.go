package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patrickward/todomark"
	"github.com/patrickward/todomark/internal/discovery"
)

// FileName is the name of the configuration file looked up in the scan root.
const FileName = ".todomark.yaml"

// EnvConfigFile names the environment variable that points at a configuration file.
const EnvConfigFile = "TODOMARK_CONFIG"

// EmbeddedConfig configures marker scanning
type EmbeddedConfig struct {
	// Regex is the marker pattern; its first capture group names the marker type
	Regex string `yaml:"regex"`

	// Include lists globs of the files to scan
	Include []string `yaml:"include"`

	// Exclude lists globs of files and directories to skip
	Exclude []string `yaml:"exclude"`

	// Limit caps the number of scanned files (0 = unlimited)
	Limit int `yaml:"limit"`

	// GroupByFile emits a file line before each file's markers
	GroupByFile bool `yaml:"group_by_file"`

	// Concurrency bounds the number of files read at once (0 = number of CPUs)
	Concurrency int `yaml:"concurrency"`

	// MatchTimeout bounds a single pattern match (0 = no timeout)
	MatchTimeout time.Duration `yaml:"match_timeout"`

	// TrimTypes trims whitespace around captured marker types
	TrimTypes bool `yaml:"trim_types"`
}

// SymbolsConfig holds the symbols used in rendered output
type SymbolsConfig struct {
	Box string `yaml:"box"`
}

// DocumentConfig controls where and how a block is embedded
type DocumentConfig struct {
	// Candidates are file names tried, in order, when no target document is given
	Candidates []string `yaml:"candidates"`

	// StartMarker and EndMarker delimit the embedded block inside the document
	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`
}

// EncryptionConfig configures decryption of age-encrypted notes
type EncryptionConfig struct {
	IdentityFile string `yaml:"identity_file"`
}

// LogConfig configures the rotating log file
type LogConfig struct {
	File       string `yaml:"file"`        // Log file path, empty disables file logging
	MaxSize    int    `yaml:"max_size"`    // Max size in megabytes
	MaxBackups int    `yaml:"max_backups"` // Max number of backups
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Compress   bool   `yaml:"compress"`    // Compress backups
}

// Config represents todomark configuration options
type Config struct {
	Embedded    EmbeddedConfig   `yaml:"embedded"`
	Indentation string           `yaml:"indentation"`
	Symbols     SymbolsConfig    `yaml:"symbols"`
	Document    DocumentConfig   `yaml:"document"`
	Encryption  EncryptionConfig `yaml:"encryption"`
	Log         LogConfig        `yaml:"log"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Embedded: EmbeddedConfig{
			Regex:   todomark.DefaultMarkerPattern,
			Include: append([]string(nil), discovery.DefaultOptions.Include...),
			Exclude: append([]string(nil), discovery.DefaultOptions.Exclude...),
			Limit:   discovery.DefaultOptions.Limit,
		},
		Indentation: todomark.DefaultRenderConfig.Indentation,
		Symbols: SymbolsConfig{
			Box: todomark.DefaultRenderConfig.BulletSymbol,
		},
		Document: DocumentConfig{
			Candidates:  []string{"TODO", "TODO.md", "todo.todo", "todo.taskpaper"},
			StartMarker: "<!-- todomark:start -->",
			EndMarker:   "<!-- todomark:end -->",
		},
		Log: LogConfig{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// ResolvePath determines the configuration file using a tiered approach:
// 1. The command-line flag (--config) takes the highest precedence.
// 2. Environment variable TODOMARK_CONFIG if a flag is not set.
// 3. .todomark.yaml in the scan root as fallback.
func ResolvePath(flagValue, root string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		return envPath
	}

	return filepath.Join(root, FileName)
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.Embedded.Regex == "" {
		return fmt.Errorf("embedded.regex must not be empty")
	}
	if c.Embedded.Limit < 0 {
		return fmt.Errorf("embedded.limit must not be negative, got %d", c.Embedded.Limit)
	}
	if c.Embedded.Concurrency < 0 {
		return fmt.Errorf("embedded.concurrency must not be negative, got %d", c.Embedded.Concurrency)
	}
	if c.Embedded.MatchTimeout < 0 {
		return fmt.Errorf("embedded.match_timeout must not be negative, got %s", c.Embedded.MatchTimeout)
	}
	if c.Document.StartMarker == "" || c.Document.EndMarker == "" {
		return fmt.Errorf("document.start_marker and document.end_marker must be set")
	}
	if c.Document.StartMarker == c.Document.EndMarker {
		return fmt.Errorf("document.start_marker and document.end_marker must differ")
	}
	return discovery.Options{Include: c.Embedded.Include, Exclude: c.Embedded.Exclude}.Validate()
}

// Pattern compiles the configured marker pattern
func (c *Config) Pattern() (*todomark.Pattern, error) {
	return todomark.CompilePattern(c.Embedded.Regex, todomark.PatternOptions{
		Multiline: true,
		Timeout:   c.Embedded.MatchTimeout,
	})
}

// RenderConfig returns the render settings of the configuration
func (c *Config) RenderConfig() todomark.RenderConfig {
	return todomark.RenderConfig{
		Indentation:  c.Indentation,
		GroupByFile:  c.Embedded.GroupByFile,
		BulletSymbol: c.Symbols.Box,
	}
}

// DiscoveryOptions returns the file selection settings of the configuration
func (c *Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		Include: c.Embedded.Include,
		Exclude: c.Embedded.Exclude,
		Limit:   c.Embedded.Limit,
	}
}
