package repofetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hazyhaar/recolte/fetch"
)

// ForceFlagName is the caller-facing parameter that overrides the
// repository size gate. Rendered into the oversized notice so an agent
// can retry correctly.
const ForceFlagName = "force"

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// CacheDir is the scratch root for clones. Empty means a
	// process-unique directory under the OS temp dir.
	CacheDir string
	// SizeThresholdMB gates cloning; larger repositories are declined
	// unless the caller forces.
	SizeThresholdMB int64
	CloneTimeout    time.Duration
	Logger          *slog.Logger
}

func (c *ResolverConfig) defaults() {
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(os.TempDir(), fmt.Sprintf("recolte-repos-%d", os.Getpid()))
	}
	if c.SizeThresholdMB <= 0 {
		c.SizeThresholdMB = 100
	}
	if c.CloneTimeout <= 0 {
		c.CloneTimeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Resolver materializes repository content once per owner/repo[@ref]
// and renders URL-shaped views of it. It decides per URL whether it
// applies at all; callers fall through to generic extraction when it
// returns no result.
type Resolver struct {
	config ResolverConfig

	group  singleflight.Group
	mu     sync.Mutex
	clones map[string]string // key -> local path, successful clones only

	// Injection points for tests; production values set by NewResolver.
	sizeKB func(ctx context.Context, owner, repo string) (int64, error)
	clone  func(ctx context.Context, owner, repo, ref, dest string) error
}

// NewResolver creates a Resolver backed by the gh/git CLIs.
func NewResolver(cfg ResolverConfig) *Resolver {
	cfg.defaults()
	return &Resolver{
		config: cfg,
		clones: make(map[string]string),
		sizeKB: repoSizeKB,
		clone:  cloneRepo,
	}
}

// Resolve handles a URL if it names clonable repository content. It
// returns (nil, false) whenever generic extraction should run instead:
// non-matching URLs, full-SHA refs (shallow clones cannot fetch an
// arbitrary historical commit), and failed clones.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, force bool) (*fetch.Extracted, bool) {
	info, ok := ParseRepoURL(rawURL)
	if !ok || info.RefIsFullSHA {
		return nil, false
	}

	localPath, notice, err := r.materialize(ctx, info, force)
	if err != nil {
		r.config.Logger.Warn("repo materialization failed", "url", rawURL, "error", err)
		return nil, false
	}
	if notice != "" {
		// Size-gate declines are informational successes: the agent
		// learns how to force, and generic extraction is skipped.
		return &fetch.Extracted{URL: rawURL, Title: info.FullName(), Content: notice}, true
	}

	res := &fetch.Extracted{URL: rawURL, Title: info.FullName()}
	switch info.Type {
	case TypeBlob:
		res.Content = renderBlob(localPath, info)
		if info.Path != "" {
			res.Title = info.FullName() + "/" + info.Path
		}
	case TypeTree:
		res.Content = renderTree(localPath, info)
		if info.Path != "" {
			res.Title = info.FullName() + "/" + info.Path
		}
	default:
		res.Content = renderRoot(localPath, info)
	}
	return res, true
}

// materialize returns the local path of the repository, cloning at most
// once per key even under concurrent callers. A non-empty notice means
// the clone was declined by the size gate.
func (r *Resolver) materialize(ctx context.Context, info RepoURL, force bool) (string, string, error) {
	key := info.Key()

	r.mu.Lock()
	if path, ok := r.clones[key]; ok {
		r.mu.Unlock()
		return path, "", nil
	}
	r.mu.Unlock()

	type outcome struct {
		path   string
		notice string
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		if path, ok := r.clones[key]; ok {
			r.mu.Unlock()
			return outcome{path: path}, nil
		}
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, r.config.CloneTimeout)
		defer cancel()

		if !force {
			sizeKB, err := r.sizeKB(ctx, info.Owner, info.Repo)
			if err != nil {
				// Unknown size is not a reason to refuse; the clone
				// timeout still bounds the damage.
				r.config.Logger.Debug("repo size query failed", "repo", info.FullName(), "error", err)
			} else if sizeMB := sizeKB / 1024; sizeMB > r.config.SizeThresholdMB {
				return outcome{notice: oversizedNotice(info, sizeMB, r.config.SizeThresholdMB)}, nil
			}
		}

		dest := filepath.Join(r.config.CacheDir, safeDirName(key))
		if err := os.MkdirAll(r.config.CacheDir, 0o700); err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		if err := r.clone(ctx, info.Owner, info.Repo, info.Ref, dest); err != nil {
			os.RemoveAll(dest)
			return nil, err
		}

		r.mu.Lock()
		r.clones[key] = dest
		r.mu.Unlock()
		return outcome{path: dest}, nil
	})
	if err != nil {
		return "", "", err
	}
	out := v.(outcome)
	return out.path, out.notice, nil
}

// Clear wipes every cached clone from disk and empties the cache.
// Called on session boundaries.
func (r *Resolver) Clear() {
	r.mu.Lock()
	paths := make([]string, 0, len(r.clones))
	for _, p := range r.clones {
		paths = append(paths, p)
	}
	r.clones = make(map[string]string)
	r.mu.Unlock()

	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			r.config.Logger.Debug("clone cleanup failed", "path", p, "error", err)
		}
	}
}

func oversizedNotice(info RepoURL, sizeMB, thresholdMB int64) string {
	return fmt.Sprintf(
		"Repository %s is %d MB, above the %d MB clone threshold, so it was not cloned. "+
			"Retry with %s=true to clone it anyway, or fetch specific files directly.",
		info.FullName(), sizeMB, thresholdMB, ForceFlagName)
}

func safeDirName(key string) string {
	return strings.NewReplacer("/", "__", "@", "_at_").Replace(key)
}
