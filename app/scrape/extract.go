package scrape

import (
	"fmt"
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// extractSummary cleans the RSS summary snippet down to plain text. Feeds
// wrap the human-readable part in a "snippet summary" div; when it is
// missing the whole snippet is used.
func extractSummary(htmlSnippet string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSnippet))
	if err != nil {
		return strings.TrimSpace(htmlSnippet)
	}

	selection := doc.Find("div.snippet.summary")
	if selection.Length() == 0 {
		selection = doc.Selection
	}

	text := strings.Join(strings.Fields(selection.Text()), " ")
	return text
}

// extractContent pulls the details and features sections out of a deal
// page. The content section splits on the "Features" heading; pages without
// the section fall back to readability extraction of the article body.
func extractContent(pageHTML []byte) (details, features string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(pageHTML)))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse deal page: %w", err)
	}

	section := doc.Find("div.content-section")
	if section.Length() > 0 {
		text := section.Text()
		text = strings.ReplaceAll(text, "\nmore", "")
		text = strings.ReplaceAll(text, "\n", " ")

		if idx := strings.Index(text, "Features"); idx >= 0 {
			return text[:idx], text[idx+len("Features"):], nil
		}
		return text, "", nil
	}

	article, err := readability.FromReader(strings.NewReader(string(pageHTML)), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", "", fmt.Errorf("no content section found")
	}

	return text, "", nil
}
