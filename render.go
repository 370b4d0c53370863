package recolte

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/recolte/fetch"
	"github.com/hazyhaar/recolte/resultstore"
	"github.com/hazyhaar/recolte/search"
)

// renderQueries formats a search batch as markdown, one section per
// query, errors inline.
func renderQueries(queries []search.QueryResult) string {
	var sb strings.Builder
	for i, q := range queries {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&sb, "## Query: %s\n\n", q.Query)
		if q.Error != "" {
			fmt.Fprintf(&sb, "Error: %s\n", q.Error)
			continue
		}
		if q.Answer != "" {
			fmt.Fprintf(&sb, "%s\n\n", q.Answer)
		}
		if len(q.Results) == 0 {
			sb.WriteString("No results.\n")
			continue
		}
		for _, r := range q.Results {
			fmt.Fprintf(&sb, "- [%s](%s)", r.Title, r.URL)
			if r.PublishedDate != "" {
				fmt.Fprintf(&sb, " (%s)", r.PublishedDate)
			}
			sb.WriteByte('\n')
			if r.Snippet != "" {
				fmt.Fprintf(&sb, "  %s\n", r.Snippet)
			}
		}
	}
	return sb.String()
}

// renderExtracted formats a fetch batch; soft failures keep their
// partial content with the error shown above it.
func renderExtracted(items []fetch.Extracted) string {
	parts := make([]string, 0, len(items))
	for _, e := range items {
		parts = append(parts, renderOneExtracted(&e))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func renderOneExtracted(e *fetch.Extracted) string {
	var sb strings.Builder
	title := e.Title
	if title == "" {
		title = e.URL
	}
	fmt.Fprintf(&sb, "## %s\n\nURL: %s\n\n", title, e.URL)
	if e.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", e.Error)
		if !e.Failed() {
			fmt.Fprintf(&sb, "\nPartial content:\n\n%s", e.Content)
		}
		return sb.String()
	}
	sb.WriteString(e.Content)
	return sb.String()
}

func renderContext(c *search.ContextResult) string {
	if c.Error != "" {
		return fmt.Sprintf("## Query: %s\n\nError: %s\n", c.Query, c.Error)
	}
	return c.Content
}

// selectContent picks what a retrieval request asked for out of a
// stored result: a filtered item, an indexed item, or the whole render.
func selectContent(res *resultstore.Result, req GetContentRequest) (string, error) {
	switch res.Type {
	case resultstore.TypeContext:
		return renderContext(res.Context), nil

	case resultstore.TypeSearch:
		if req.Query != "" {
			for _, q := range res.Queries {
				if strings.EqualFold(q.Query, req.Query) {
					return renderQueries([]search.QueryResult{q}), nil
				}
			}
			return "", fmt.Errorf("%w: no query %q in result %s; stored queries: %s",
				ErrNotFound, req.Query, res.ID, quoteJoin(queryTexts(res)))
		}
		if req.Index >= 0 {
			if req.Index >= len(res.Queries) {
				return "", fmt.Errorf("%w: index %d out of range; result %s has %d queries",
					ErrNotFound, req.Index, res.ID, len(res.Queries))
			}
			return renderQueries(res.Queries[req.Index : req.Index+1]), nil
		}
		return renderQueries(res.Queries), nil

	case resultstore.TypeFetch:
		if req.URL != "" {
			for _, e := range res.URLs {
				if strings.EqualFold(e.URL, req.URL) {
					return renderOneExtracted(&e), nil
				}
			}
			return "", fmt.Errorf("%w: no url %q in result %s; stored urls: %s",
				ErrNotFound, req.URL, res.ID, quoteJoin(urlTexts(res)))
		}
		if req.Index >= 0 {
			if req.Index >= len(res.URLs) {
				return "", fmt.Errorf("%w: index %d out of range; result %s has %d urls",
					ErrNotFound, req.Index, res.ID, len(res.URLs))
			}
			return renderOneExtracted(&res.URLs[req.Index]), nil
		}
		return renderExtracted(res.URLs), nil
	}
	return "", fmt.Errorf("%w: result %s has unknown type %q", ErrNotFound, res.ID, res.Type)
}

func queryTexts(res *resultstore.Result) []string {
	out := make([]string, 0, len(res.Queries))
	for _, q := range res.Queries {
		out = append(out, q.Query)
	}
	return out
}

func urlTexts(res *resultstore.Result) []string {
	out := make([]string, 0, len(res.URLs))
	for _, e := range res.URLs {
		out = append(out, e.URL)
	}
	return out
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func availableIDs(store *resultstore.Store) string {
	all := store.GetAll()
	if len(all) == 0 {
		return "(none)"
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return strings.Join(ids, ", ")
}
