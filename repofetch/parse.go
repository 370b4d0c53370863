// Package repofetch resolves source-hosting URLs by materializing a
// shallow local clone and rendering a bounded view of the requested
// content, instead of scraping the host's HTML.
package repofetch

import (
	"net/url"
	"regexp"
	"strings"
)

// Host is the code-hosting domain this resolver understands.
const Host = "github.com"

// URLType classifies what a repository URL points at.
type URLType string

const (
	TypeRoot URLType = "root"
	TypeBlob URLType = "blob"
	TypeTree URLType = "tree"
)

// RepoURL is the parsed shape of a repository URL.
type RepoURL struct {
	Owner        string
	Repo         string
	Ref          string // branch, tag, or commit; empty for root URLs
	RefIsFullSHA bool
	Path         string // in-repo path, "" for the repository root
	Type         URLType
}

// nonCodeSegments are third path segments naming host features a clone
// cannot render; those URLs go to generic HTML extraction instead.
var nonCodeSegments = map[string]bool{
	"issues":      true,
	"pull":        true,
	"pulls":       true,
	"discussions": true,
	"actions":     true,
	"releases":    true,
	"wiki":        true,
	"settings":    true,
	"security":    true,
	"projects":    true,
	"compare":     true,
	"commits":     true,
	"commit":      true,
	"tags":        true,
	"branches":    true,
	"stargazers":  true,
	"watchers":    true,
	"network":     true,
	"forks":       true,
	"graphs":      true,
	"milestones":  true,
	"labels":      true,
	"pulse":       true,
	"community":   true,
}

var fullSHARe = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ParseRepoURL classifies a URL as a repository root, file (blob), or
// directory (tree). ok is false for anything the resolver should not
// handle: other hosts, too-short paths, non-code host features, or
// unrecognized shapes.
func ParseRepoURL(rawURL string) (RepoURL, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return RepoURL{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host != Host && host != "www."+Host {
		return RepoURL{}, false
	}

	segs := splitPath(u.Path)
	if len(segs) < 2 {
		return RepoURL{}, false
	}

	info := RepoURL{
		Owner: segs[0],
		Repo:  strings.TrimSuffix(segs[1], ".git"),
	}
	if info.Owner == "" || info.Repo == "" {
		return RepoURL{}, false
	}

	if len(segs) == 2 {
		info.Type = TypeRoot
		return info, true
	}
	if nonCodeSegments[segs[2]] {
		return RepoURL{}, false
	}
	if (segs[2] != "blob" && segs[2] != "tree") || len(segs) < 4 {
		return RepoURL{}, false
	}

	info.Ref = segs[3]
	info.RefIsFullSHA = fullSHARe.MatchString(info.Ref)
	info.Path = strings.Join(segs[4:], "/")
	if segs[2] == "blob" {
		info.Type = TypeBlob
	} else {
		info.Type = TypeTree
	}
	return info, true
}

// Key identifies a materialization unit: one clone per owner/repo[@ref].
func (r RepoURL) Key() string {
	if r.Ref == "" {
		return r.Owner + "/" + r.Repo
	}
	return r.Owner + "/" + r.Repo + "@" + r.Ref
}

// FullName is the owner/repo display form.
func (r RepoURL) FullName() string {
	return r.Owner + "/" + r.Repo
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
