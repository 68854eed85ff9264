package extractor

import "github.com/PuerkitoBio/goquery"

// harvestMetadata maps every meta element's name (or property, when name
// is absent) to its content value. Duplicate keys are last-seen-wins and
// entries without content are dropped.
func harvestMetadata(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok || key == "" {
			key, ok = s.Attr("property")
		}
		if !ok || key == "" {
			return
		}
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		meta[key] = content
	})
	return meta
}
