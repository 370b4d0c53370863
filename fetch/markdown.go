package fetch

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// markdown converts extracted HTML fragments to markdown. Input is
// sanitized first so hostile markup never reaches the converter or the
// final output.
type markdown struct {
	conv      *htmltomarkdown.Converter
	sanitizer *bluemonday.Policy
}

func newMarkdown() *markdown {
	return &markdown{
		conv: htmltomarkdown.NewConverter(
			htmltomarkdown.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// convert sanitizes the fragment and renders markdown. The page URL
// resolves relative links and images to absolute ones.
func (m *markdown) convert(fragment, pageURL string) (string, error) {
	clean := m.sanitizer.Sanitize(fragment)
	md, err := m.conv.ConvertString(clean, htmltomarkdown.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return strings.TrimSpace(md), nil
}
