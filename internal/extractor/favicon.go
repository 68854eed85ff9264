package extractor

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// faviconSelectors is an ordered quality ranking (vector, then high-res,
// then generic). The first selector with a match wins, regardless of where
// lower-ranked icons appear in the document.
var faviconSelectors = []string{
	`link[rel="icon"][type="image/svg+xml"]`,
	`link[rel="apple-touch-icon"]`,
	`link[rel="icon"][sizes="192x192"]`,
	`link[rel="icon"]`,
	`link[rel="shortcut icon"]`,
}

// findBestFavicon returns the highest-ranked icon URL declared by the
// document, resolved to absolute form, or origin-level /favicon.ico when
// the document declares none.
func findBestFavicon(doc *goquery.Document, base *url.URL) string {
	for _, selector := range faviconSelectors {
		href, ok := doc.Find(selector).First().Attr("href")
		if !ok || href == "" {
			continue
		}
		if resolved := resolveRef(base, href); resolved != "" {
			return resolved
		}
	}
	return base.Scheme + "://" + base.Host + "/favicon.ico"
}
