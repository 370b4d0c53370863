package recolte

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recolte.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoadAndDefaults(t *testing.T) {
	path := writeConfig(t, `
search_api_key: from-file
repo_size_threshold_mb: 25
tools:
  fetch: false
`)
	cfg, err := NewConfigLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SearchAPIKey != "from-file" {
		t.Errorf("api key: %q", cfg.SearchAPIKey)
	}
	if cfg.ContextAPIKey != "from-file" {
		t.Errorf("context key should default to search key, got %q", cfg.ContextAPIKey)
	}
	if cfg.RepoSizeThresholdMB != 25 {
		t.Errorf("threshold: %d", cfg.RepoSizeThresholdMB)
	}
	if cfg.CloneTimeoutSeconds != 60 {
		t.Errorf("clone timeout default: %d", cfg.CloneTimeoutSeconds)
	}
	if cfg.Tools.FetchEnabled() {
		t.Error("fetch should be disabled")
	}
	if !cfg.Tools.SearchEnabled() {
		t.Error("search should default to enabled")
	}
}

func TestConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewConfigLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RepoSizeThresholdMB != 100 {
		t.Errorf("threshold default: %d", cfg.RepoSizeThresholdMB)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvSearchAPIKey, "from-env")
	path := writeConfig(t, `search_api_key: from-file`)
	cfg, err := NewConfigLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SearchAPIKey != "from-env" {
		t.Errorf("env override lost: %q", cfg.SearchAPIKey)
	}
}

func TestConfigCacheAndInvalidate(t *testing.T) {
	// WHAT: edits within the cache TTL are invisible until Invalidate.
	path := writeConfig(t, `search_api_key: one`)
	l := NewConfigLoader(path)
	if cfg, _ := l.Load(); cfg.SearchAPIKey != "one" {
		t.Fatalf("initial: %q", cfg.SearchAPIKey)
	}

	if err := os.WriteFile(path, []byte(`search_api_key: two`), 0o600); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := l.Load(); cfg.SearchAPIKey != "one" {
		t.Errorf("cache bypassed: %q", cfg.SearchAPIKey)
	}
	l.Invalidate()
	if cfg, _ := l.Load(); cfg.SearchAPIKey != "two" {
		t.Errorf("invalidate did not reload: %q", cfg.SearchAPIKey)
	}
}

func TestGetContentDerivedToggle(t *testing.T) {
	// WHAT: retrieval auto-disables when every producing tool is off,
	// even if not explicitly disabled itself.
	off := false
	all := ToolsConfig{Search: &off, Fetch: &off, CodeContext: &off}
	if all.GetContentEnabled() {
		t.Error("get_content should auto-disable with all producers off")
	}
	some := ToolsConfig{Search: &off, Fetch: &off}
	if !some.GetContentEnabled() {
		t.Error("get_content should stay enabled while a producer remains")
	}
}
