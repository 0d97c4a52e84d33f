package handler

import (
	"net/http"
	"time"

	"auction-hub/services/auction/helpers"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// StartSessionHandler handles POST /api/session/start
func (h *AuctionHandler) StartSessionHandler(c *gin.Context) {
	var req helpers.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartSessionHandler", err)
		return
	}
	h.startSession(c, req.SessionID, req.PhoneNumber)
}

// startSession creates-or-gets the caller's user and opens the session.
func (h *AuctionHandler) startSession(c *gin.Context, sessionID, phoneNumber string) {
	if sessionID == "" {
		sessionID = utils.GenerateID()
	}

	user := h.store.UpsertUserForSession(phoneNumber, sessionID)
	h.registry.Start(sessionID, user.ID, phoneNumber)

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"user_id":    user.ID,
		"message":    "Voice session started successfully",
	})
	helpers.LogSuccess("StartSessionHandler", "session started", map[string]any{
		"session_id": sessionID,
		"user_id":    user.ID,
	})
}

// EndSessionHandler handles POST /api/session/:session_id/end
func (h *AuctionHandler) EndSessionHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	sess, err := h.registry.End(sessionID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, helpers.KindInvalidSession, "session not found")
		utils.Warn("EndSessionHandler: unknown session", map[string]any{"session_id": sessionID})
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message":          "Voice session ended successfully",
		"session_duration": time.Since(sess.StartTime).String(),
	})
	helpers.LogSuccess("EndSessionHandler", "session ended", map[string]any{
		"session_id": sessionID,
		"user_id":    sess.UserID,
	})
}

// CallEventHandler handles POST /api/webhook/voice — inbound call lifecycle
// events from the voice agent. Call start opens a session for the caller,
// call end closes it.
func (h *AuctionHandler) CallEventHandler(c *gin.Context) {
	var req helpers.CallEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CallEventHandler", err)
		return
	}

	utils.Info("received call event", map[string]any{
		"event_type": req.EventType,
		"session_id": req.SessionID,
	})

	switch {
	case req.EventType == "call_started" && req.SessionID != "":
		h.startSession(c, req.SessionID, req.CallerNumber)
		return
	case req.EventType == "call_ended" && req.SessionID != "":
		if _, err := h.registry.End(req.SessionID); err == nil {
			helpers.LogSuccess("CallEventHandler", "session auto-ended", map[string]any{"session_id": req.SessionID})
		}
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Webhook processed"})
}
