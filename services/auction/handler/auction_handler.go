package handler

import (
	"errors"
	"fmt"
	"net/http"

	"auction-hub/internal/auctionerrors"
	model "auction-hub/internal/models"
	"auction-hub/services/auction/helpers"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// ListAuctionsHandler handles GET /api/auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	views := h.store.ListAuctions()

	byID := make(map[string]model.AuctionView, len(views))
	active := 0
	for _, v := range views {
		byID[v.ID] = v
		if v.Status == model.StatusActive {
			active++
		}
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"products":        byID,
		"total_products":  len(views),
		"active_products": active,
	})
}

// GetAuctionHandler handles GET /api/auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	view, err := h.store.GetAuction(auctionID)
	if err != nil {
		status, kind, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, kind, message)
		utils.Warn("GetAuctionHandler: auction lookup failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"product": view})
}

// PlaceBidHandler handles POST /api/auctions/:auction_id/bid
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.DirectBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	amount, err := helpers.ParseAmount(req.Amount)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, helpers.KindInvalidAmount, "invalid bid amount")
		utils.Warn("PlaceBidHandler: invalid amount", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	result, err := h.store.PlaceBid(auctionID, req.BidderID, amount)
	if err != nil {
		var tooLow *auctionerrors.BidTooLowError
		if errors.As(err, &tooLow) {
			utils.JSONError(c, http.StatusConflict, helpers.KindBidTooLow, helpers.MinimumBidMessage(tooLow.Minimum))
			return
		}
		status, kind, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, kind, message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
		return
	}

	h.publishBid(auctionID, result)

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Bid of $%.2f placed successfully", result.Bid.Amount),
		"bid_details": helpers.BidDetails{
			BidID:              result.Bid.BidID,
			Amount:             result.Bid.Amount,
			AuctionName:        result.AuctionName,
			NewHighestBid:      result.Bid.Amount,
			PreviousHighestBid: result.PreviousAmount,
			TotalBids:          result.TotalBids,
			MinutesRemaining:   result.MinutesRemaining,
		},
	})
	helpers.LogSuccess("PlaceBidHandler", "bid placed", map[string]any{
		"bid_id":     result.Bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     result.Bid.Amount,
	})
}

// GetUserBidsHandler handles GET /api/user/:user_id/bids
func (h *AuctionHandler) GetUserBidsHandler(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := h.store.GetUser(userID)
	if err != nil {
		status, kind, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, kind, message)
		utils.Warn("GetUserBidsHandler: user lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user_id":         user.ID,
		"bidding_history": user.BidHistory,
		"active_bids":     user.ActiveBids,
		"total_bids":      len(user.BidHistory),
	})
}
