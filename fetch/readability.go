package fetch

import (
	"bytes"
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// minReadableChars is the floor below which a density candidate is not
// worth keeping.
const minReadableChars = 50

// readable parses an HTML document and isolates its main content region.
// Landmark elements (<main>, <article>, role=main) win when they carry
// enough text; otherwise the densest text node subtree is chosen. The
// returned fragment is HTML, ready for markdown conversion. ok is false
// when no region carries enough prose.
func readable(rawHTML []byte) (title, fragment string, ok bool) {
	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return "", "", false
	}
	title = findTitle(doc)

	if n := findLandmark(doc); n != nil {
		if text := collectText(n); len(text) >= minReadableChars {
			return title, renderNode(n), true
		}
	}

	body := findByAtom(doc, atom.Body)
	if body == nil {
		body = doc
	}
	best := densestNode(body)
	if best == nil {
		return title, "", false
	}
	if text := collectText(best); len(text) < minReadableChars {
		return title, "", false
	}
	return title, renderNode(best), true
}

// findTitle prefers <title>, then the first <h1>.
func findTitle(doc *html.Node) string {
	if t := findByAtom(doc, atom.Title); t != nil {
		if s := strings.TrimSpace(collectText(t)); s != "" {
			return s
		}
	}
	if h := findByAtom(doc, atom.H1); h != nil {
		return strings.TrimSpace(collectText(h))
	}
	return ""
}

func findLandmark(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Main, atom.Article:
			return n
		}
		for _, a := range n.Attr {
			if a.Key == "role" && a.Val == "main" {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findLandmark(c); found != nil {
			return found
		}
	}
	return nil
}

func findByAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

// densestNode walks container elements and scores each by text density.
// Boilerplate regions and link farms are skipped; among the rest the
// score favors long text with few child containers and a low share of
// anchor text.
func densestNode(root *html.Node) *html.Node {
	var best *html.Node
	var bestScore float64

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if !isContentTag(n) || isBoilerplate(n) {
				return
			}
			if isContainerTag(n) {
				text := collectText(n)
				if len(text) >= minReadableChars {
					linkDens := linkDensity(n, len(text))
					if linkDens <= 0.5 {
						score := float64(len(text)) * math.Log(float64(len(text))) * (1 - linkDens)
						if score > bestScore {
							bestScore, best = score, n
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return best
}

func isContainerTag(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Body, atom.Td:
		return true
	}
	return false
}

// isContentTag rejects elements that never carry prose.
func isContentTag(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Iframe, atom.Svg,
		atom.Nav, atom.Form, atom.Button, atom.Select, atom.Template:
		return false
	}
	return true
}

// boilerplatePatterns marks class/id substrings of page chrome.
var boilerplatePatterns = []string{
	"sidebar", "footer", "header", "navbar", "nav-", "-nav", "menu",
	"breadcrumb", "cookie", "banner", "advert", "promo", "social",
	"share", "comment", "related", "widget", "popup", "modal",
	"subscribe", "newsletter",
}

func isBoilerplate(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "class" && a.Key != "id" {
			continue
		}
		v := strings.ToLower(a.Val)
		for _, pat := range boilerplatePatterns {
			if strings.Contains(v, pat) {
				return true
			}
		}
	}
	return false
}

// linkDensity is the share of a subtree's text living inside anchors.
func linkDensity(n *html.Node, total int) float64 {
	if total == 0 {
		return 0
	}
	var anchored int
	var walk func(n *html.Node, inLink bool)
	walk = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			anchored += len(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inLink)
		}
	}
	walk(n, false)
	return float64(anchored) / float64(total)
}

// collectText gathers trimmed text content, space-joined.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && !isContentTag(n) {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// renderNode serializes a subtree back to HTML.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
