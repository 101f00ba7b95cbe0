package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sync  *SyncService
	store *Store
}

func NewHandler(sync *SyncService, store *Store) *Handler {
	return &Handler{sync: sync, store: store}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/admin/billing/sync", h.runSync)
	r.GET("/admin/billing/status", h.getStatus)
}

// runSync triggers a full re-sync against the billing API.
func (h *Handler) runSync(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stripe not configured"})
		return
	}
	result, err := h.sync.Sync(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrStripeInvalidAPIKey) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "invalid stripe api key"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) getStatus(c *gin.Context) {
	subs, payments, cancellations, syncedAt := h.store.Counts()
	c.JSON(http.StatusOK, gin.H{"data": Status{
		Configured:        h.sync != nil,
		SyncedAt:          syncedAt,
		SubscriptionCount: subs,
		PaymentCount:      payments,
		CancellationCount: cancellations,
	}})
}
