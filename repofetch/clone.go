package repofetch

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// repoSizeKB asks the hosting API for the repository's size in KiB via
// the gh CLI. Only the single numeric field is parsed.
func repoSizeKB(ctx context.Context, owner, repo string) (int64, error) {
	out, err := exec.CommandContext(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/%s", owner, repo), "--jq", ".size").Output()
	if err != nil {
		return 0, fmt.Errorf("repo size query %s/%s: %w", owner, repo, err)
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repo size query %s/%s: unexpected output %q", owner, repo, out)
	}
	return size, nil
}

// cloneRepo materializes a shallow single-branch checkout at dest. The
// authenticated gh CLI goes first (private repos, better rate limits);
// plain git is the fallback for public repositories when gh is absent
// or unauthenticated.
func cloneRepo(ctx context.Context, owner, repo, ref, dest string) error {
	gitFlags := []string{"--depth", "1", "--single-branch"}
	if ref != "" {
		gitFlags = append(gitFlags, "--branch", ref)
	}

	ghArgs := append([]string{"repo", "clone", owner + "/" + repo, dest, "--"}, gitFlags...)
	ghErr := runCommand(ctx, "gh", ghArgs...)
	if ghErr == nil {
		return nil
	}

	gitArgs := append(append([]string{"clone"}, gitFlags...),
		fmt.Sprintf("https://%s/%s/%s.git", Host, owner, repo), dest)
	if err := runCommand(ctx, "git", gitArgs...); err != nil {
		return fmt.Errorf("clone %s/%s: gh: %v; git: %w", owner, repo, ghErr, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(string(out), 300))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
