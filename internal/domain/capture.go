package domain

import (
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"
)

// Field length caps for a capture payload.
const (
	MaxTitleLength       = 300
	MaxDescriptionLength = 2000
	MaxAuthorLength      = 200
	MaxSiteNameLength    = 200
	MaxLangLength        = 50
)

// CapturePayload is the data package produced for one capture attempt.
// It is built by the content extractor, consumed once by the ingestion
// endpoint, and then discarded. Only URL and Title are mandatory.
type CapturePayload struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	PageContent string    `json:"pageContent,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	SiteName    string    `json:"siteName,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	FaviconURL  string    `json:"faviconUrl,omitempty"`
	Lang        string    `json:"lang,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// ValidationError reports schema violations in a capture payload, keyed by
// field name.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid capture payload: %d invalid field(s)", len(e.Fields))
}

// add records a field error, keeping the first message per field.
func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Validate checks the payload against the capture schema. It returns a
// *ValidationError listing every violated field, or nil when valid.
func (p *CapturePayload) Validate() *ValidationError {
	verr := &ValidationError{}

	if p.URL == "" {
		verr.add("url", "is required")
	} else if !isAbsoluteURL(p.URL) {
		verr.add("url", "must be a well-formed absolute URL")
	}

	if p.Title == "" {
		verr.add("title", "is required")
	} else if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		verr.add("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}

	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		verr.add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	if utf8.RuneCountInString(p.Author) > MaxAuthorLength {
		verr.add("author", fmt.Sprintf("must be at most %d characters", MaxAuthorLength))
	}
	if utf8.RuneCountInString(p.SiteName) > MaxSiteNameLength {
		verr.add("siteName", fmt.Sprintf("must be at most %d characters", MaxSiteNameLength))
	}
	if utf8.RuneCountInString(p.Lang) > MaxLangLength {
		verr.add("lang", fmt.Sprintf("must be at most %d characters", MaxLangLength))
	}

	if p.ImageURL != "" && !isAbsoluteURL(p.ImageURL) {
		verr.add("imageUrl", "must be a well-formed absolute URL")
	}
	if p.FaviconURL != "" && !isAbsoluteURL(p.FaviconURL) {
		verr.add("faviconUrl", "must be a well-formed absolute URL")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// isAbsoluteURL reports whether raw parses as an absolute http(s) URL.
func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !u.IsAbs() || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
