package tabular

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FlattenHTML strips markup from a Canvas rich-text field, leaving a single
// line of text suitable for a table cell or an ICS description. Input that
// doesn't parse comes back as-is.
func FlattenHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
