package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hazyhaar/recolte/idgen"
)

// OffloadThreshold is the inline-display budget: results at or above this
// many characters are written to a scratch file instead.
const OffloadThreshold = 30_000

// PreviewChars is how much of an offloaded result is still shown inline.
const PreviewChars = 2_000

// Spooler persists oversized results to uniquely named scratch files and
// tracks them for end-of-session cleanup.
type Spooler struct {
	dir   string
	newID idgen.Generator

	mu    sync.Mutex
	files []string
}

// NewSpooler creates a Spooler writing under dir (the process temp
// directory when empty).
func NewSpooler(dir string) *Spooler {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Spooler{
		dir:   dir,
		newID: idgen.Prefixed("recolte-", idgen.Timestamped(idgen.NanoID(6))),
	}
}

// Offload decides whether content is too large for inline return. Below
// the threshold it returns (content, "", nil) untouched. At or above it,
// the full content is written to a scratch file with restrictive
// permissions and a preview plus pointer text is returned along with the
// file path.
func (s *Spooler) Offload(content string) (display string, path string, err error) {
	runes := []rune(content)
	if len(runes) < OffloadThreshold {
		return content, "", nil
	}

	path = filepath.Join(s.dir, s.newID()+".md")
	// O_EXCL: fail rather than overwrite on the (improbable) name collision.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", "", fmt.Errorf("offload: create scratch file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", "", fmt.Errorf("offload: write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("offload: close scratch file: %w", err)
	}

	s.mu.Lock()
	s.files = append(s.files, path)
	s.mu.Unlock()

	preview := string(runes[:PreviewChars])
	display = fmt.Sprintf(
		"%s\n\n[Result too large for inline display: %d characters. Full content saved to %s — use grep or file-reading tools on that path.]",
		preview, len(runes), path)
	return display, path, nil
}

// Cleanup deletes all tracked scratch files. Deletion failures are
// swallowed; scratch files are best-effort by contract.
func (s *Spooler) Cleanup() {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()
	for _, f := range files {
		_ = os.Remove(f)
	}
}
