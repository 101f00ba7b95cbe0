package retention

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SnapshotProvider hands the handler the latest synced billing
// collections. Implementations must return copies the caller may keep.
type SnapshotProvider interface {
	Snapshot() (subs []Subscription, payments []Payment, cancellations []Cancellation, syncedAt time.Time)
}

type Handler struct {
	source   SnapshotProvider
	analyzer *Analyzer
	now      func() time.Time // injectable clock, tests pin it
}

func NewHandler(source SnapshotProvider, analyzer *Analyzer) *Handler {
	return &Handler{source: source, analyzer: analyzer, now: time.Now}
}

// RegisterRoutes registers the retention dashboard endpoints.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/admin/retention", h.getAnalysis)
	r.GET("/admin/retention/at-risk", h.getAtRisk)
	r.GET("/admin/retention/cohorts", h.getCohorts)
	r.GET("/admin/retention/active-cancellations", h.getActiveCancellations)
}

func (h *Handler) analyze() (RetentionAnalysis, time.Time, bool) {
	subs, payments, cancellations, syncedAt := h.source.Snapshot()
	analysis := h.analyzer.Analyze(subs, payments, cancellations, h.now())
	return analysis, syncedAt, len(subs) > 0
}

// getAnalysis returns the full composite analysis for the dashboard.
func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, syncedAt, hasData := h.analyze()

	log.Printf("[RETENTION] analysis: at_risk=%d active_cancellations=%d cohorts=%d churn_rate=%.1f%%",
		len(analysis.AtRiskCustomers), len(analysis.ActiveCancellations),
		len(analysis.CohortData), analysis.Metrics.MonthlyChurnRate)

	c.JSON(http.StatusOK, gin.H{
		"data":      analysis,
		"synced_at": syncedAt,
		"has_data":  hasData,
	})
}

func (h *Handler) getAtRisk(c *gin.Context) {
	analysis, syncedAt, hasData := h.analyze()
	c.JSON(http.StatusOK, gin.H{
		"data":      analysis.AtRiskCustomers,
		"synced_at": syncedAt,
		"has_data":  hasData,
	})
}

func (h *Handler) getCohorts(c *gin.Context) {
	analysis, syncedAt, hasData := h.analyze()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"cohorts": analysis.CohortData,
			"curve":   analysis.RetentionCurve,
		},
		"synced_at": syncedAt,
		"has_data":  hasData,
	})
}

func (h *Handler) getActiveCancellations(c *gin.Context) {
	analysis, syncedAt, hasData := h.analyze()
	c.JSON(http.StatusOK, gin.H{
		"data":      analysis.ActiveCancellations,
		"synced_at": syncedAt,
		"has_data":  hasData,
	})
}
