package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// LinkStore persists link records.
type LinkStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewLinkStore creates a LinkStore.
func NewLinkStore(db *sqlx.DB, log logger.Logger) *LinkStore {
	return &LinkStore{db: db, logger: log}
}

// CreateLink inserts a new pending record and fills the generated id and
// timestamps on rec. A duplicate (user, url) pair returns
// domain.ErrDuplicateLink.
func (s *LinkStore) CreateLink(ctx context.Context, rec *domain.LinkRecord) error {
	const query = `
		INSERT INTO links (
			user_id, url, title, description, site_name, favicon_url,
			main_image_url, author, lang, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		rec.UserID, rec.URL, rec.Title, rec.Description, rec.SiteName,
		rec.FaviconURL, rec.MainImageURL, rec.Author, rec.Lang, rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.ErrDuplicateLink
		}
		return fmt.Errorf("inserting link: %w", err)
	}
	return nil
}

// GetLink fetches a record by id, scoped to its owner.
func (s *LinkStore) GetLink(ctx context.Context, id, userID string) (*domain.LinkRecord, error) {
	const query = `SELECT * FROM links WHERE id = $1 AND user_id = $2`

	var rec domain.LinkRecord
	if err := s.db.GetContext(ctx, &rec, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching link: %w", err)
	}
	return &rec, nil
}

// UpdateStatus transitions a record to the given status. The prior-status
// predicate makes the update monotonic: a record already past the
// transition is left untouched and reported as domain.ErrNotFound.
func (s *LinkStore) UpdateStatus(ctx context.Context, id, userID string, to domain.Status) error {
	prior := domain.AllowedPrior(to)
	if len(prior) == 0 {
		return fmt.Errorf("no valid transition into status %q", to)
	}

	const query = `
		UPDATE links
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status = ANY($4)`

	res, err := s.db.ExecContext(ctx, query, to, id, userID, pq.Array(statusStrings(prior)))
	if err != nil {
		return fmt.Errorf("updating link status: %w", err)
	}
	return requireRow(res)
}

// MarkProcessedNoContent finalizes a record captured without page content:
// status processed and a placeholder summary, skipping summarization.
func (s *LinkStore) MarkProcessedNoContent(ctx context.Context, id, userID string) error {
	const query = `
		UPDATE links
		SET status = $1, ai_summary = $2, updated_at = now()
		WHERE id = $3 AND user_id = $4 AND status = $5`

	res, err := s.db.ExecContext(ctx, query,
		domain.StatusProcessed, domain.NoContentSummary, id, userID, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("marking link processed: %w", err)
	}
	return requireRow(res)
}

// MarkStaleFailed fails every non-terminal record that has not advanced
// within the given age. It returns the number of records swept.
func (s *LinkStore) MarkStaleFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	const query = `
		UPDATE links
		SET status = $1, updated_at = now()
		WHERE status = ANY($2) AND updated_at < $3`

	cutoff := time.Now().UTC().Add(-olderThan)
	nonTerminal := []string{string(domain.StatusPending), string(domain.StatusProcessing)}

	res, err := s.db.ExecContext(ctx, query, domain.StatusFailed, pq.Array(nonTerminal), cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeping stale links: %w", err)
	}
	swept, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading sweep row count: %w", err)
	}
	return swept, nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
