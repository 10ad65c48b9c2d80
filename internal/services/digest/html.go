package digest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripHTML flattens HTML fragments in article text to plain text.
// Feed descriptions frequently arrive with embedded markup; the model
// prompt and the fallback summaries both want clean text.
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<>") {
		return strings.TrimSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	text := doc.Text()
	return strings.Join(strings.Fields(text), " ")
}
