package handler

import (
	"net/http"
	"time"

	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// SystemConfig reports which optional collaborators are wired, for the
// status endpoint.
type SystemConfig struct {
	WebhookConfigured bool
	APIKeyConfigured  bool
}

// SetSystemConfig records startup configuration flags.
func (h *AuctionHandler) SetSystemConfig(cfg SystemConfig) {
	h.sysConfig = cfg
}

// HealthHandler handles GET /api/health
func (h *AuctionHandler) HealthHandler(c *gin.Context) {
	stats := h.store.Stats()

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"active_sessions": h.registry.Count(),
		"active_auctions": stats.ActiveAuctions,
		"total_users":     stats.TotalUsers,
	})
}

// StatusHandler handles GET /api/status
func (h *AuctionHandler) StatusHandler(c *gin.Context) {
	stats := h.store.Stats()

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"auction_stats": gin.H{
			"total_auctions":  stats.TotalAuctions,
			"active_auctions": stats.ActiveAuctions,
			"ended_auctions":  stats.EndedAuctions,
			"total_bids":      stats.TotalBids,
			"total_bid_value": stats.TotalBidValue,
		},
		"session_stats": gin.H{
			"active_sessions": h.registry.Count(),
			"total_users":     stats.TotalUsers,
		},
		"system_config": gin.H{
			"webhook_configured": h.sysConfig.WebhookConfigured,
			"api_key_configured": h.sysConfig.APIKeyConfigured,
		},
	})
}
