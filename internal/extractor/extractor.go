// Package extractor reduces a fetched HTML document into a capture
// payload: canonical favicon, harvested metadata, site-aware main content
// and a normalized title.
package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// Metadata keys consulted during payload assembly.
const (
	metaOGTitle       = "og:title"
	metaOGDescription = "og:description"
	metaOGSiteName    = "og:site_name"
	metaOGImage       = "og:image"
	metaOGLocale      = "og:locale"
	metaDescription   = "description"
	metaAuthor        = "author"
)

// Extractor builds capture payloads from raw HTML.
type Extractor struct {
	logger logger.Logger
}

// New creates an Extractor.
func New(log logger.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Extract parses the given HTML and assembles a CapturePayload for pageURL.
// Individual fields degrade to fallbacks on extraction trouble; the only
// fatal conditions are an unparsable page URL or unparsable HTML.
func (e *Extractor) Extract(pageURL, htmlSource string) (*domain.CapturePayload, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSource))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	base = resolveBase(doc, base)
	meta := harvestMetadata(doc)

	// Narrow the extraction root for known discussion sites, then run the
	// readability pass. A failed pass degrades to document-level fallbacks.
	root := htmlSource
	if narrowed, ok := siteContentRoot(doc, base); ok {
		root = narrowed
	}

	article, err := readability.FromReader(strings.NewReader(root), base)
	if err != nil {
		e.logger.Debug("readability pass found no article",
			logger.String("url", pageURL),
			logger.Error(err))
		article = readability.Article{}
	}

	payload := &domain.CapturePayload{
		URL:         base.String(),
		Title:       resolveTitle(meta[metaOGTitle], article.Title, documentTitle(doc)),
		PageContent: strings.TrimSpace(article.TextContent),
		Description: firstNonEmpty(meta[metaOGDescription], meta[metaDescription], article.Excerpt),
		Author:      firstNonEmpty(article.Byline, meta[metaAuthor]),
		SiteName:    meta[metaOGSiteName],
		ImageURL:    resolveRef(base, meta[metaOGImage]),
		FaviconURL:  findBestFavicon(doc, base),
		Lang:        firstNonEmpty(documentLang(doc), meta[metaOGLocale]),
		Timestamp:   time.Now().UTC(),
	}

	if payload.Title == "" {
		return nil, fmt.Errorf("no title could be determined for %q", pageURL)
	}
	return payload, nil
}

// resolveBase honours an explicit <base href> when present.
func resolveBase(doc *goquery.Document, pageURL *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return pageURL
	}
	resolved, err := pageURL.Parse(strings.TrimSpace(href))
	if err != nil || resolved.Host == "" {
		return pageURL
	}
	return resolved
}

// resolveRef resolves ref against base and returns an absolute URL, or ""
// when ref is empty or cannot be resolved.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	resolved, err := base.Parse(ref)
	if err != nil || !resolved.IsAbs() {
		return ""
	}
	return resolved.String()
}

func documentLang(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	return strings.TrimSpace(lang)
}

func documentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("head title").First().Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
