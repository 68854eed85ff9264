// Package summarizer triggers content processing on the external AI
// summarization service. The service works through its own privileged
// database path; this package only hands it work.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/httperrors"
)

const processPath = "/api/v1/process"

// Config holds summarizer connection settings.
type Config struct {
	BaseURL    string `yaml:"base_url" env:"SUMMARIZER_BASE_URL"`
	ServiceKey string `yaml:"service_key" env:"SUMMARIZER_SERVICE_KEY"`
}

// Configured reports whether the dispatch target is usable. The ingestion
// endpoint refuses captures when it is not.
func (c Config) Configured() bool {
	return c.BaseURL != "" && c.ServiceKey != ""
}

// processRequest is the wire body for a processing trigger.
type processRequest struct {
	LinkID      string `json:"link_id"`
	PageContent string `json:"page_content"`
}

// Client is an HTTP client for the summarizer service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Process asks the summarizer to process the given link's content. A non-2xx
// response is returned as an *httperrors.HTTPError.
func (c *Client) Process(ctx context.Context, linkID, pageContent string) error {
	body, err := json.Marshal(processRequest{LinkID: linkID, PageContent: pageContent})
	if err != nil {
		return fmt.Errorf("encoding process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+processPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling summarizer: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	return httperrors.Parse(resp)
}
