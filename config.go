package recolte

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// configCacheTTL is how long a loaded config is trusted before the file
// is re-read, so external edits take effect without a restart.
const configCacheTTL = 30 * time.Second

// Environment variables overriding the provider credentials.
const (
	EnvSearchAPIKey  = "RECOLTE_SEARCH_API_KEY"
	EnvContextAPIKey = "RECOLTE_CONTEXT_API_KEY"
)

// Config is the file-backed configuration document.
type Config struct {
	SearchAPIKey  string `yaml:"search_api_key"`
	ContextAPIKey string `yaml:"context_api_key"`
	SearchBaseURL string `yaml:"search_base_url"`
	ReaderBaseURL string `yaml:"reader_base_url"`

	RepoSizeThresholdMB int64  `yaml:"repo_size_threshold_mb"`
	CloneTimeoutSeconds int    `yaml:"clone_timeout_seconds"`
	CloneDir            string `yaml:"clone_dir"`

	Tools ToolsConfig `yaml:"tools"`
}

// ToolsConfig carries per-tool enable toggles. Pointers distinguish
// "unset" (enabled) from an explicit false.
type ToolsConfig struct {
	Search      *bool `yaml:"search"`
	Fetch       *bool `yaml:"fetch"`
	CodeContext *bool `yaml:"code_context"`
	GetContent  *bool `yaml:"get_content"`
}

func enabled(b *bool) bool { return b == nil || *b }

func (t ToolsConfig) SearchEnabled() bool      { return enabled(t.Search) }
func (t ToolsConfig) FetchEnabled() bool       { return enabled(t.Fetch) }
func (t ToolsConfig) CodeContextEnabled() bool { return enabled(t.CodeContext) }

// GetContentEnabled derives: retrieval is pointless when nothing can
// produce results, so it auto-disables with the producing tools.
func (t ToolsConfig) GetContentEnabled() bool {
	if !t.SearchEnabled() && !t.FetchEnabled() && !t.CodeContextEnabled() {
		return false
	}
	return enabled(t.GetContent)
}

func (c *Config) defaults() {
	if c.RepoSizeThresholdMB <= 0 {
		c.RepoSizeThresholdMB = 100
	}
	if c.CloneTimeoutSeconds <= 0 {
		c.CloneTimeoutSeconds = 60
	}
	if v := os.Getenv(EnvSearchAPIKey); v != "" {
		c.SearchAPIKey = v
	}
	if v := os.Getenv(EnvContextAPIKey); v != "" {
		c.ContextAPIKey = v
	}
	if c.ContextAPIKey == "" {
		c.ContextAPIKey = c.SearchAPIKey
	}
}

// ConfigLoader reads the config file with a small time cache. A missing
// file is not an error; defaults plus environment overrides apply.
type ConfigLoader struct {
	path string

	mu       sync.Mutex
	cached   *Config
	loadedAt time.Time
}

// NewConfigLoader creates a loader for the given path (may be empty).
func NewConfigLoader(path string) *ConfigLoader {
	return &ConfigLoader{path: path}
}

// Load returns the current configuration, re-reading the file at most
// once per configCacheTTL.
func (l *ConfigLoader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && time.Since(l.loadedAt) < configCacheTTL {
		return l.cached, nil
	}

	cfg := &Config{}
	if l.path != "" {
		data, err := os.ReadFile(l.path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", l.path, err)
			}
		}
	}
	cfg.defaults()

	l.cached = cfg
	l.loadedAt = time.Now()
	return cfg, nil
}

// Invalidate drops the cache so the next Load re-reads the file.
func (l *ConfigLoader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}
