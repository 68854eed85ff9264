// Package dispatcher orchestrates a capture: fetch the page, extract a
// payload, attach the mirrored session credential and submit to the
// ingestion endpoint. It also exposes the message surface the agent's UI
// and the web application talk to.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/extractor"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/session"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/httperrors"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

const (
	linksPath = "/api/v1/links"
	userAgent = "LinkLensAgent/1.0"

	// maxPageBytes caps how much of a page the dispatcher will read.
	maxPageBytes = 10 << 20
)

// User-facing error messages, kept stable for the agent UI.
const (
	errMsgInvalidTab       = "Invalid tab information."
	errMsgExtractionFailed = "Could not extract page content."
	errMsgNotAuthenticated = "Not authenticated."
	errMsgSaveFailed       = "Failed to save link."
)

// CredentialStore is the session storage the dispatcher reads and syncs.
type CredentialStore interface {
	Load(ctx context.Context) (*session.Credential, error)
	Save(ctx context.Context, cred *session.Credential) error
	Clear(ctx context.Context) error
}

// Config holds dispatcher settings.
type Config struct {
	IngestionBaseURL string `yaml:"ingestion_base_url" env:"INGESTION_BASE_URL"`
}

// Dispatcher mediates between capture requests and the ingestion endpoint.
type Dispatcher struct {
	cfg        Config
	extractor  *extractor.Extractor
	sessions   CredentialStore
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a Dispatcher.
func New(cfg Config, ext *extractor.Extractor, sessions CredentialStore, httpClient *http.Client, log logger.Logger) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Dispatcher{
		cfg:        cfg,
		extractor:  ext,
		sessions:   sessions,
		httpClient: httpClient,
		logger:     log,
	}
}

// SaveLink captures the given tab end to end. Failures are reported in the
// result rather than as an error; the agent surfaces the message verbatim.
func (d *Dispatcher) SaveLink(ctx context.Context, tab Tab) SaveAck {
	if strings.TrimSpace(tab.URL) == "" {
		return SaveAck{Error: errMsgInvalidTab}
	}

	html, err := d.fetchPage(ctx, tab.URL)
	if err != nil {
		d.logger.Warn("page fetch failed",
			logger.String("url", tab.URL),
			logger.Error(err))
		return SaveAck{Error: errMsgExtractionFailed}
	}

	payload, err := d.extractor.Extract(tab.URL, html)
	if err != nil {
		d.logger.Warn("extraction failed",
			logger.String("url", tab.URL),
			logger.Error(err))
		return SaveAck{Error: errMsgExtractionFailed}
	}

	cred, err := d.sessions.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			d.logger.Error("session load failed", logger.Error(err))
		}
		return SaveAck{Error: errMsgNotAuthenticated}
	}

	rec, err := d.submit(ctx, payload, cred.AccessToken)
	if err != nil {
		var httpErr *httperrors.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return SaveAck{Error: httpErr.Message}
		}
		d.logger.Error("ingestion request failed",
			logger.String("url", tab.URL),
			logger.Error(err))
		return SaveAck{Error: errMsgSaveFailed}
	}

	return SaveAck{Success: true, Data: rec}
}

// fetchPage downloads the page HTML. Non-HTML responses are rejected so
// the extractor never sees binary content.
func (d *Dispatcher) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", fmt.Errorf("unsupported content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	return string(body), nil
}

// submit posts the payload to the ingestion endpoint.
func (d *Dispatcher) submit(ctx context.Context, payload *domain.CapturePayload, token string) (*domain.LinkRecord, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.cfg.IngestionBaseURL+linksPath, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("building ingestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ingestion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if err := httperrors.Parse(resp); err != nil {
		return nil, err
	}

	var envelope struct {
		Success bool               `json:"success"`
		Message string             `json:"message"`
		Data    *domain.LinkRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding ingestion response: %w", err)
	}
	return envelope.Data, nil
}
