package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
)

// unreadCountPrefix matches the "(3) " unread-count marker some web apps
// prepend to the document title.
var unreadCountPrefix = regexp.MustCompile(`^\(\d+\)\s+`)

// titleSeparators are the separator patterns a raw document title is split
// on, keeping the first non-empty segment. Only separators surrounded by
// spaces count, so hyphenated words survive.
var titleSeparators = []string{" | ", " - ", " – ", " — "}

// resolveTitle picks the best title candidate: Open Graph title, then the
// readability article title, then the cleaned raw document title. The
// result is capped at the payload title limit.
func resolveTitle(ogTitle, articleTitle, docTitle string) string {
	title := strings.TrimSpace(ogTitle)
	if title == "" {
		title = strings.TrimSpace(articleTitle)
	}
	if title == "" {
		title = cleanDocumentTitle(docTitle)
	}
	return truncateTitle(title)
}

// cleanDocumentTitle strips the unread-count prefix and any trailing site
// branding from a raw <title> value.
func cleanDocumentTitle(raw string) string {
	title := unreadCountPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	for _, sep := range titleSeparators {
		for _, segment := range strings.Split(title, sep) {
			if trimmed := strings.TrimSpace(segment); trimmed != "" {
				title = trimmed
				break
			}
		}
	}
	return title
}

// truncateTitle caps the title at the payload limit, marking the cut with
// an ellipsis.
func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= domain.MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:domain.MaxTitleLength-1]) + "…"
}
