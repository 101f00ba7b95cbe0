package insights

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"churnboard-backend/retention"
)

type Handler struct {
	svc      *Service
	source   retention.SnapshotProvider
	analyzer *retention.Analyzer
}

func NewHandler(svc *Service, source retention.SnapshotProvider, analyzer *retention.Analyzer) *Handler {
	return &Handler{svc: svc, source: source, analyzer: analyzer}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/admin/retention/summary", h.getSummary)
}

// getSummary returns an AI-written briefing over the current analysis.
func (h *Handler) getSummary(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insights not configured"})
		return
	}
	subs, payments, cancellations, syncedAt := h.source.Snapshot()
	analysis := h.analyzer.Analyze(subs, payments, cancellations, time.Now())

	summary, err := h.svc.Summarize(c.Request.Context(), analysis)
	if err != nil {
		log.Printf("[INSIGHTS] summary failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"summary": summary, "synced_at": syncedAt}})
}
