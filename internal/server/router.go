package server

import (
	handler "auction-hub/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(h *handler.AuctionHandler) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	api := router.Group("/api")

	session := api.Group("/session")
	{
		session.POST("/start", h.StartSessionHandler)
		session.POST("/:session_id/end", h.EndSessionHandler)
	}

	voice := api.Group("/voice")
	{
		voice.GET("/auctions/summary", h.VoiceSummaryHandler)
		voice.GET("/auctions/:auction_id/details", h.VoiceDetailsHandler)
		voice.POST("/bid", h.VoiceBidHandler)
		voice.POST("/user/status", h.VoiceUserStatusHandler)
	}

	auctions := api.Group("/auctions")
	{
		auctions.GET("", h.ListAuctionsHandler)
		auctions.GET("/:auction_id", h.GetAuctionHandler)
		auctions.POST("/:auction_id/bid", h.PlaceBidHandler)
	}

	api.GET("/user/:user_id/bids", h.GetUserBidsHandler)
	api.POST("/webhook/voice", h.CallEventHandler)
	api.GET("/health", h.HealthHandler)
	api.GET("/status", h.StatusHandler)

	return router
}
