package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sitePattern pairs a host suffix with the selector for that site's main
// post container. Discussion sites bury the post in chrome that defeats a
// generic readability pass, so extraction is narrowed to the container
// first. More specific hosts must come before their parent domains.
type sitePattern struct {
	hostSuffix string
	selector   string
}

var sitePatterns = []sitePattern{
	{hostSuffix: "news.ycombinator.com", selector: ".fatitem"},
	{hostSuffix: "old.reddit.com", selector: "#siteTable .thing .entry"},
	{hostSuffix: "reddit.com", selector: "shreddit-post"},
}

// siteContentRoot returns the HTML of the matched site's content
// container. Unmatched hosts, or matched hosts whose container is absent
// from the page, fall through to whole-document extraction.
func siteContentRoot(doc *goquery.Document, pageURL *url.URL) (string, bool) {
	host := strings.ToLower(pageURL.Hostname())
	for _, pattern := range sitePatterns {
		if host != pattern.hostSuffix && !strings.HasSuffix(host, "."+pattern.hostSuffix) {
			continue
		}
		sel := doc.Find(pattern.selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		fragment, err := goquery.OuterHtml(sel)
		if err != nil || strings.TrimSpace(fragment) == "" {
			return "", false
		}
		return "<html><body>" + fragment + "</body></html>", true
	}
	return "", false
}
