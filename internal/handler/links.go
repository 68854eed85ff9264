// Package handler implements the ingestion endpoint handlers.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/middleware"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/summarizer"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// captureAcceptedMessage is returned with every successful capture.
const captureAcceptedMessage = "Link capture initiated. Processing will complete in the background."

// LinkStore is the persistence surface the handler needs.
type LinkStore interface {
	CreateLink(ctx context.Context, rec *domain.LinkRecord) error
	MarkProcessedNoContent(ctx context.Context, id, userID string) error
}

// DispatchQueue accepts fire-and-forget summarizer jobs.
type DispatchQueue interface {
	Enqueue(job summarizer.Job) bool
}

// LinksHandler handles link capture requests.
type LinksHandler struct {
	store      LinkStore
	queue      DispatchQueue
	summarizer summarizer.Config
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewLinksHandler creates a LinksHandler.
func NewLinksHandler(store LinkStore, queue DispatchQueue, sumCfg summarizer.Config, log logger.Logger, m *metrics.Metrics) *LinksHandler {
	return &LinksHandler{
		store:      store,
		queue:      queue,
		summarizer: sumCfg,
		logger:     log,
		metrics:    m,
	}
}

// captureResponse is the envelope for a successful capture.
type captureResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *domain.LinkRecord `json:"data"`
}

// Create handles POST /api/v1/links. The response reflects only the
// synchronous insert and no-content paths; summarizer dispatch happens off
// the request and can only move the record to failed afterwards.
func (h *LinksHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if !h.summarizer.Configured() {
		h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		h.logger.Error("summarizer dispatch target is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server configuration error"})
		return
	}

	var payload domain.CapturePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if verr := payload.Validate(); verr != nil {
		h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": verr.Fields,
		})
		return
	}

	rec := recordFromPayload(userID, &payload)
	if err := h.store.CreateLink(c.Request.Context(), rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateLink) {
			h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			c.JSON(http.StatusConflict, gin.H{"error": "link already exists for this user"})
			return
		}
		h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		h.logger.Error("failed to insert link",
			logger.String("user_id", userID),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create link record"})
		return
	}

	pageContent := strings.TrimSpace(payload.PageContent)
	if pageContent != "" {
		h.queue.Enqueue(summarizer.Job{
			LinkID:      rec.ID,
			UserID:      userID,
			PageContent: pageContent,
		})
	} else {
		// Nothing to summarize. Finalize synchronously so the response
		// already shows the terminal state.
		if err := h.store.MarkProcessedNoContent(c.Request.Context(), rec.ID, userID); err != nil {
			h.logger.Error("failed to finalize link without content",
				logger.String("link_id", rec.ID),
				logger.Error(err))
		} else {
			rec.Status = domain.StatusProcessed
			rec.AISummary = sql.NullString{String: domain.NoContentSummary, Valid: true}
		}
		h.metrics.DispatchesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
	}

	h.metrics.CapturesTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	h.logger.Info("link captured",
		logger.String("link_id", rec.ID),
		logger.String("user_id", userID),
		logger.String("status", string(rec.Status)))

	c.JSON(http.StatusCreated, captureResponse{
		Success: true,
		Message: captureAcceptedMessage,
		Data:    rec,
	})
}

func recordFromPayload(userID string, p *domain.CapturePayload) *domain.LinkRecord {
	return &domain.LinkRecord{
		UserID:       userID,
		URL:          p.URL,
		Title:        p.Title,
		Description:  nullString(p.Description),
		SiteName:     nullString(p.SiteName),
		FaviconURL:   nullString(p.FaviconURL),
		MainImageURL: nullString(p.ImageURL),
		Author:       nullString(p.Author),
		Lang:         nullString(p.Lang),
		Status:       domain.StatusPending,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
