package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"auction-hub/internal/auctionerrors"
	model "auction-hub/internal/models"
	"auction-hub/services/auction/helpers"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

const sessionExpiredMessage = "Your session has expired. Please start a new call."

// VoiceSummaryHandler handles GET /api/voice/auctions/summary
func (h *AuctionHandler) VoiceSummaryHandler(c *gin.Context) {
	var active []helpers.AuctionSummary
	for _, v := range h.store.ListAuctions() {
		if v.Status != model.StatusActive {
			continue
		}
		active = append(active, helpers.AuctionSummary{
			ID:               v.ID,
			Name:             v.Name,
			CurrentBid:       v.CurrentHighestBid,
			MinutesRemaining: v.TimeRemainingMinutes,
			TotalBids:        v.TotalBids,
			VoiceDescription: fmt.Sprintf("%s - Current bid: $%.0f - %d minutes remaining", v.Name, v.CurrentHighestBid, v.TimeRemainingMinutes),
		})
	}

	// Most urgent first
	sort.Slice(active, func(i, j int) bool {
		return active[i].MinutesRemaining < active[j].MinutesRemaining
	})

	summary := fmt.Sprintf("There are %d active auctions. ", len(active))
	for i, a := range active {
		if i == 3 { // voice callers only hear the top three
			break
		}
		summary += fmt.Sprintf("%d. %s. ", i+1, a.VoiceDescription)
	}

	if active == nil {
		active = []helpers.AuctionSummary{}
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"total_active":  len(active),
		"auctions":      active,
		"voice_summary": strings.TrimSpace(summary),
	})
}

// VoiceDetailsHandler handles GET /api/voice/auctions/:auction_id/details
func (h *AuctionHandler) VoiceDetailsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	view, err := h.store.GetAuction(auctionID)
	if err != nil {
		status, kind, message := helpers.MapErrorToHTTP(err)
		utils.JSONVoiceError(c, status, kind, message, "Sorry, I couldn't find that auction item.")
		return
	}

	if view.Status != model.StatusActive {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindAuctionEnded, "auction has ended",
			fmt.Sprintf("The auction for %s has already ended.", view.Name))
		return
	}

	minimumNextBid := view.CurrentHighestBid + 50

	details := fmt.Sprintf("Here are the details for %s. ", view.Name)
	details += fmt.Sprintf("Description: %s. ", view.Description)
	details += fmt.Sprintf("Current highest bid is $%.0f. ", view.CurrentHighestBid)
	details += fmt.Sprintf("There have been %d bids so far. ", view.TotalBids)
	details += fmt.Sprintf("Time remaining: %d minutes and %d seconds. ", view.TimeRemainingMinutes, view.TimeRemainingSeconds)
	details += fmt.Sprintf("Minimum next bid would be $%.0f.", minimumNextBid)

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"product": gin.H{
			"id":                  view.ID,
			"name":                view.Name,
			"description":         view.Description,
			"current_highest_bid": view.CurrentHighestBid,
			"total_bids":          view.TotalBids,
			"minutes_remaining":   view.TimeRemainingMinutes,
			"seconds_remaining":   view.TimeRemainingSeconds,
			"minimum_next_bid":    minimumNextBid,
			"status":              view.Status,
		},
		"voice_details": details,
	})
}

// VoiceBidHandler handles POST /api/voice/bid
func (h *AuctionHandler) VoiceBidHandler(c *gin.Context) {
	var req helpers.VoiceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindBadRequest, "invalid request payload",
			"I need the auction ID, bid amount, and session information to place your bid.")
		utils.Warn("VoiceBidHandler: binding error", map[string]any{"error": err.Error()})
		return
	}

	bidderID, err := h.registry.Resolve(req.SessionID)
	if err != nil {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindInvalidSession, "invalid session", sessionExpiredMessage)
		return
	}
	h.registry.Touch(req.SessionID)

	amount, err := helpers.ParseAmount(req.Amount)
	if err != nil {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindInvalidAmount, "invalid bid amount",
			"Please provide a valid dollar amount for your bid.")
		return
	}

	result, err := h.store.PlaceBid(req.AuctionID, bidderID, amount)
	if err != nil {
		h.voiceBidFailure(c, req.AuctionID, err)
		utils.Warn("VoiceBidHandler: bid rejected", map[string]any{
			"auction_id": req.AuctionID,
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return
	}

	h.publishBid(req.AuctionID, result)

	voiceMessage := fmt.Sprintf("Congratulations! Your bid of $%.0f on %s has been placed successfully. ", result.Bid.Amount, result.AuctionName)
	voiceMessage += fmt.Sprintf("You are now the highest bidder. There are %d minutes remaining in this auction.", result.MinutesRemaining)

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"voice_message": voiceMessage,
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
	helpers.LogSuccess("VoiceBidHandler", "voice bid placed", map[string]any{
		"bid_id":     result.Bid.BidID,
		"auction_id": req.AuctionID,
		"bidder_id":  bidderID,
		"session_id": req.SessionID,
		"amount":     result.Bid.Amount,
	})
}

// voiceBidFailure phrases a rejected voice bid.
func (h *AuctionHandler) voiceBidFailure(c *gin.Context, auctionID string, err error) {
	var tooLow *auctionerrors.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		utils.JSONVoiceError(c, http.StatusConflict, helpers.KindBidTooLow, "bid amount too low",
			helpers.MinimumBidMessage(tooLow.Minimum))
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		name := auctionID
		if view, lookupErr := h.store.GetAuction(auctionID); lookupErr == nil {
			name = view.Name
		}
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindAuctionEnded, "auction has ended",
			fmt.Sprintf("Sorry, the auction for %s has already ended.", name))
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		utils.JSONVoiceError(c, http.StatusNotFound, helpers.KindAuctionNotFound, "auction not found",
			"I couldn't find that auction item. Please try again.")
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindInvalidAmount, "invalid bid amount",
			"Please provide a valid dollar amount for your bid.")
	default:
		utils.JSONVoiceError(c, http.StatusInternalServerError, helpers.KindInternal, "internal server error",
			"I'm sorry, there was an error processing your bid. Please try again.")
	}
}

// VoiceUserStatusHandler handles POST /api/voice/user/status
func (h *AuctionHandler) VoiceUserStatusHandler(c *gin.Context) {
	var req helpers.SessionRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindBadRequest, "invalid request payload", sessionExpiredMessage)
		return
	}

	userID, err := h.registry.Resolve(req.SessionID)
	if err != nil {
		utils.JSONVoiceError(c, http.StatusBadRequest, helpers.KindInvalidSession, "invalid session", sessionExpiredMessage)
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil {
		status, kind, message := helpers.MapErrorToHTTP(err)
		utils.JSONVoiceError(c, status, kind, message, "I'm sorry, I couldn't retrieve your status right now.")
		return
	}

	var winning, outbid []model.ActiveBid
	for _, ab := range user.ActiveBids {
		if ab.Status == model.BidStatusWinning {
			winning = append(winning, ab)
		} else {
			outbid = append(outbid, ab)
		}
	}

	status := "Here's your current status: "
	if len(user.ActiveBids) == 0 {
		status += "You don't have any active bids at the moment."
	} else {
		if len(winning) > 0 {
			status += fmt.Sprintf("You are currently winning %d auction%s: ", len(winning), plural(len(winning)))
			for _, ab := range winning {
				status += fmt.Sprintf("%s with a bid of $%.0f. ", ab.AuctionName, ab.Amount)
			}
		}
		if len(outbid) > 0 {
			status += fmt.Sprintf("You have been outbid on %d item%s: ", len(outbid), plural(len(outbid)))
			for _, ab := range outbid {
				status += fmt.Sprintf("%s. ", ab.AuctionName)
			}
		}
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"voice_message": strings.TrimSpace(status),
		"user_status": gin.H{
			"total_active_bids": len(user.ActiveBids),
			"winning_bids":      len(winning),
			"outbid_bids":       len(outbid),
			"total_bid_history": len(user.BidHistory),
		},
		"active_bids": user.ActiveBids,
	})
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
