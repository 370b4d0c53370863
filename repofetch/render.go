package repofetch

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// TreeMaxEntries bounds the recursive root listing.
	TreeMaxEntries = 200
	// ReadmeMaxBytes bounds the README excerpt in the root view.
	ReadmeMaxBytes = 8192
	// BlobMaxChars bounds inline file content.
	BlobMaxChars = 100_000

	binarySniffBytes = 512
)

// noiseDirs are dependency/build/cache folders annotated as skipped
// rather than descended into.
var noiseDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"out":          true,
	"coverage":     true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".next":        true,
	".cache":       true,
	".idea":        true,
}

var readmeNames = []string{"README.md", "README.MD", "Readme.md", "readme.md", "README", "README.rst", "README.txt"}

var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".pdf": true, ".zip": true, ".gz": true, ".tar": true,
	".7z": true, ".rar": true, ".exe": true, ".dll": true, ".so": true,
	".dylib": true, ".a": true, ".o": true, ".wasm": true, ".woff": true,
	".woff2": true, ".ttf": true, ".otf": true, ".mp3": true, ".mp4": true,
	".mov": true, ".sqlite": true, ".db": true, ".bin": true, ".jar": true,
	".class": true,
}

// renderRoot produces a bounded recursive tree of the repository plus
// its README excerpt.
func renderRoot(localPath string, info RepoURL) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n## File tree\n\n```\n", info.FullName())
	writeTree(&sb, localPath, "", TreeMaxEntries)
	sb.WriteString("```\n")

	if name, content := readReadme(localPath); name != "" {
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", name, content)
	}
	sb.WriteString(localToolsHint(localPath))
	return sb.String()
}

// renderTree lists one subdirectory with entry sizes; a missing path
// falls back to the root view with a note.
func renderTree(localPath string, info RepoURL) string {
	dir := filepath.Join(localPath, filepath.FromSlash(info.Path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("Path %q was not found in %s; showing the repository root instead.\n\n%s",
			info.Path, info.FullName(), renderRoot(localPath, info))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s/%s\n\n", info.FullName(), info.Path)
	for _, e := range sortedEntries(entries) {
		if e.IsDir() {
			fmt.Fprintf(&sb, "- %s/\n", e.Name())
			continue
		}
		size := int64(0)
		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", e.Name(), humanSize(size))
	}
	sb.WriteString(localToolsHint(localPath))
	return sb.String()
}

// renderBlob emits one file's text, bounded; directories get a listing,
// binaries get type and size only.
func renderBlob(localPath string, info RepoURL) string {
	p := filepath.Join(localPath, filepath.FromSlash(info.Path))
	fi, err := os.Stat(p)
	if err != nil {
		return fmt.Sprintf("Path %q was not found in %s; showing the repository root instead.\n\n%s",
			info.Path, info.FullName(), renderRoot(localPath, info))
	}
	if fi.IsDir() {
		return renderTree(localPath, info)
	}
	if isBinaryFile(p) {
		return fmt.Sprintf("%s is a binary file (%s, %s); content not shown.%s",
			info.Path, strings.TrimPrefix(filepath.Ext(p), "."), humanSize(fi.Size()), localToolsHint(localPath))
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Sprintf("Could not read %q: %v%s", info.Path, err, localToolsHint(localPath))
	}
	text := string(data)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s/%s\n\n", info.FullName(), info.Path)
	if runes := []rune(text); len(runes) > BlobMaxChars {
		sb.WriteString(string(runes[:BlobMaxChars]))
		fmt.Fprintf(&sb, "\n\n[File truncated at %d characters of %d. The full file is at %s.]\n", BlobMaxChars, len(runes), p)
	} else {
		sb.WriteString(text)
	}
	sb.WriteString(localToolsHint(localPath))
	return sb.String()
}

func writeTree(sb *strings.Builder, root, prefix string, budget int) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return budget
	}
	for _, e := range sortedEntries(entries) {
		if budget <= 0 {
			fmt.Fprintf(sb, "%s... (listing capped at %d entries)\n", prefix, TreeMaxEntries)
			return 0
		}
		budget--
		if e.IsDir() {
			if noiseDirs[e.Name()] {
				fmt.Fprintf(sb, "%s%s/ (skipped)\n", prefix, e.Name())
				continue
			}
			fmt.Fprintf(sb, "%s%s/\n", prefix, e.Name())
			budget = writeTree(sb, filepath.Join(root, e.Name()), prefix+"  ", budget)
			continue
		}
		fmt.Fprintf(sb, "%s%s\n", prefix, e.Name())
	}
	return budget
}

func sortedEntries(entries []fs.DirEntry) []fs.DirEntry {
	out := make([]fs.DirEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir() != out[j].IsDir() {
			return out[i].IsDir()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

func readReadme(localPath string) (string, string) {
	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(localPath, name))
		if err != nil {
			continue
		}
		if len(data) > ReadmeMaxBytes {
			data = append(data[:ReadmeMaxBytes], []byte("\n\n[README truncated]")...)
		}
		return name, string(data)
	}
	return "", ""
}

// isBinaryFile sniffs by extension first, then by a NUL byte in the
// leading window.
func isBinaryFile(path string) bool {
	if binaryExts[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, binarySniffBytes)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// localToolsHint closes every view: the rendered output is a summary,
// bulk inspection belongs to the caller's file tools.
func localToolsHint(localPath string) string {
	return fmt.Sprintf("\n\nA local copy of this repository is at %s — use file-reading and search tools there for deeper exploration.\n", localPath)
}
