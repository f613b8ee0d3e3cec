package nqls

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when the config leaves a value unset.
const (
	DefaultDebounceInterval  = 700 * time.Millisecond
	DefaultQuestionCacheSize = 128
)

// Config represents the .nqls.yaml configuration file.
type Config struct {
	// Server is the BI server used for schema and question lookups.
	Server ServerConfig `yaml:"server"`

	// Workspace is a YAML file with schema, questions and snippets.
	// Relative paths are resolved against the config file's directory.
	Workspace string `yaml:"workspace,omitempty"`

	// Completion tunes the completion engine.
	Completion CompletionConfig `yaml:"completion,omitempty"`

	// path is the file the config was loaded from.
	path string
}

// ServerConfig holds connection settings for the BI server.
type ServerConfig struct {
	// URL is the server root, e.g. "https://bi.example.com".
	URL string `yaml:"url"`

	// Database is the id of the database queries run against.
	Database int `yaml:"database"`

	// APIKey or Session authenticates requests; APIKey wins if both are set.
	APIKey  string `yaml:"api_key,omitempty"`
	Session string `yaml:"session,omitempty"`

	// QuestionCacheSize bounds the per-id question cache.
	QuestionCacheSize int `yaml:"question_cache_size,omitempty"`
}

// CompletionConfig tunes completion behaviour.
type CompletionConfig struct {
	// Debounce overrides the retrigger interval (e.g. "500ms").
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Hide is an expression; candidates for which it is true are hidden.
	// Available names: name, display, meta.
	Hide string `yaml:"hide,omitempty"`
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".nqls.yaml", ".nqls.yml", "nqls.yaml", "nqls.yml"}

// LoadConfig finds and loads the nearest .nqls.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.path = path

	return &cfg, nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// WorkspacePath returns the workspace file resolved against the config
// file's directory. Empty if no workspace is configured.
func (c *Config) WorkspacePath() string {
	if c.Workspace == "" || filepath.IsAbs(c.Workspace) || c.path == "" {
		return c.Workspace
	}

	return filepath.Join(filepath.Dir(c.path), c.Workspace)
}

// DebounceInterval returns the configured retrigger interval or the default.
func (c *Config) DebounceInterval() time.Duration {
	if c == nil || c.Completion.Debounce <= 0 {
		return DefaultDebounceInterval
	}

	return c.Completion.Debounce
}

// QuestionCacheSize returns the configured cache size or the default.
func (c *Config) QuestionCacheSize() int {
	if c == nil || c.Server.QuestionCacheSize <= 0 {
		return DefaultQuestionCacheSize
	}

	return c.Server.QuestionCacheSize
}
