// Package domain defines the core types for the LinkLens capture pipeline:
// the link record, its processing lifecycle, and the capture payload.
package domain

import (
	"database/sql"
	"time"
)

// Status is the processing state of a link record.
type Status string

// Link lifecycle states. The lifecycle moves forward only: a record never
// returns to pending once it has left it, and processed/failed are terminal.
const (
	// StatusPending means the record is created and awaiting summarization.
	StatusPending Status = "pending"
	// StatusProcessing means the summarizer has accepted the content.
	StatusProcessing Status = "processing"
	// StatusProcessed means summarization finished (or was skipped).
	StatusProcessed Status = "processed"
	// StatusFailed means summarization could not be completed.
	StatusFailed Status = "failed"
)

// NoContentSummary is stored when a link is captured without page content
// and therefore skips summarization.
const NoContentSummary = "No content provided for summary."

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// CanTransition reports whether moving from one status to another is a
// valid forward transition.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusProcessed || to == StatusFailed
	case StatusProcessing:
		return to == StatusProcessed || to == StatusFailed
	default:
		return false
	}
}

// AllowedPrior returns the set of states a record may be in for a
// transition into the given status to be valid. Storage uses this to make
// status updates monotonic at the SQL level.
func AllowedPrior(to Status) []Status {
	var prior []Status
	for _, from := range []Status{StatusPending, StatusProcessing} {
		if CanTransition(from, to) {
			prior = append(prior, from)
		}
	}
	return prior
}

// LinkRecord is a saved link owned by a user. The ingestion endpoint is the
// sole writer at creation time; the external summarizer later fills the
// derived content fields through its own privileged path.
type LinkRecord struct {
	ID           string         `db:"id"             json:"id"`
	UserID       string         `db:"user_id"        json:"user_id"`
	URL          string         `db:"url"            json:"url"`
	Title        string         `db:"title"          json:"title"`
	Description  sql.NullString `db:"description"    json:"description,omitempty"`
	SiteName     sql.NullString `db:"site_name"      json:"site_name,omitempty"`
	FaviconURL   sql.NullString `db:"favicon_url"    json:"favicon_url,omitempty"`
	MainImageURL sql.NullString `db:"main_image_url" json:"main_image_url,omitempty"`
	Author       sql.NullString `db:"author"         json:"author,omitempty"`
	Lang         sql.NullString `db:"lang"           json:"lang,omitempty"`
	Status       Status         `db:"status"         json:"status"`
	AISummary    sql.NullString `db:"ai_summary"     json:"ai_summary,omitempty"`
	CreatedAt    time.Time      `db:"created_at"     json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"     json:"updated_at"`
}
