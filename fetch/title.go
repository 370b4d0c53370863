package fetch

import (
	"net/url"
	"path"
	"strings"
)

// deriveTitle builds a display title for content that arrived without
// one: the first markdown heading, else the last URL path segment
// (decoded, separators spaced out), else the hostname.
func deriveTitle(content string, u *url.URL) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			if t := strings.TrimSpace(strings.TrimLeft(line, "# ")); t != "" {
				return t
			}
		}
	}
	if u == nil {
		return ""
	}
	for _, seg := range reversedSegments(u.Path) {
		if decoded, err := url.PathUnescape(seg); err == nil {
			seg = decoded
		}
		if ext := path.Ext(seg); len(ext) > 1 && len(ext) <= 6 {
			seg = strings.TrimSuffix(seg, ext)
		}
		seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
		if seg = strings.TrimSpace(seg); seg != "" {
			return seg
		}
	}
	return u.Hostname()
}

func reversedSegments(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			out = append(out, parts[i])
		}
	}
	return out
}
