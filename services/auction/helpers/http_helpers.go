package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"auction-hub/internal/auctionerrors"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// Machine-readable error kinds returned to callers.
const (
	KindAuctionNotFound = "auction_not_found"
	KindUserNotFound    = "user_not_found"
	KindAuctionEnded    = "auction_ended"
	KindInvalidAmount   = "invalid_amount"
	KindBidTooLow       = "bid_too_low"
	KindInvalidSession  = "invalid_session"
	KindBadRequest      = "bad_request"
	KindInternal        = "internal_error"
)

// HandleBindError sends a standardized JSON error for binding failures.
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONError(c, http.StatusBadRequest, KindBadRequest, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain errors to HTTP status, error kind, and message.
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, KindAuctionNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, KindUserNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusBadRequest, KindAuctionEnded, "auction has ended"
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusBadRequest, KindInvalidAmount, "invalid bid amount"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, KindBidTooLow, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInvalidSession):
		return http.StatusBadRequest, KindInvalidSession, "invalid session"
	default:
		return http.StatusInternalServerError, KindInternal, "internal server error"
	}
}

// MinimumBidMessage phrases a bid-too-low rejection for voice callers.
func MinimumBidMessage(minimum float64) string {
	return fmt.Sprintf("Your bid must be at least $%.0f, which includes the $50 minimum increment.", minimum)
}

// ParseAmount coerces a JSON amount field, which may arrive as a number or
// a decimal string, into a finite positive float.
func ParseAmount(v any) (float64, error) {
	var amount float64
	switch n := v.(type) {
	case float64:
		amount = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", n.String(), auctionerrors.ErrInvalidAmount)
		}
		amount = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", n, auctionerrors.ErrInvalidAmount)
		}
		amount = f
	default:
		return 0, fmt.Errorf("parse amount: unsupported type %T: %w", v, auctionerrors.ErrInvalidAmount)
	}

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("parse amount %v: %w", amount, auctionerrors.ErrInvalidAmount)
	}
	return amount, nil
}

// LogSuccess is a small helper to standardize logging of successful operations.
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
