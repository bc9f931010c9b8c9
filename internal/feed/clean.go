package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML extracts the visible text from a fragment of HTML. Feed
// descriptions and content regularly arrive with embedded markup; the
// enrichment prompt and the stored description want plain text. Input that
// does not parse is returned unchanged.
func StripHTML(s string) string {
	if s == "" || !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
