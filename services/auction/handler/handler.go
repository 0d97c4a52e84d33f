package handler

import (
	model "auction-hub/internal/models"
	"auction-hub/internal/notify"
	"auction-hub/internal/store"
)

// SessionRegistry is the listener-registry surface the handlers use.
type SessionRegistry interface {
	Start(sessionID, userID, phoneNumber string) model.Session
	End(sessionID string) (model.Session, error)
	Resolve(sessionID string) (string, error)
	Touch(sessionID string)
	Count() int
}

// EventPublisher broadcasts auction events to listeners.
type EventPublisher interface {
	Publish(event notify.Event)
}

// AuctionHandler serves the auction, session, and voice endpoints.
type AuctionHandler struct {
	store     store.AuctionStore
	registry  SessionRegistry
	publisher EventPublisher
	sysConfig SystemConfig
}

// NewAuctionHandler creates the handler set.
func NewAuctionHandler(st store.AuctionStore, registry SessionRegistry, publisher EventPublisher) *AuctionHandler {
	return &AuctionHandler{
		store:     st,
		registry:  registry,
		publisher: publisher,
	}
}

// publishBid fans out the events for an accepted bid: the previous leader's
// outbid notice first, then the new-bid alert to everyone, matching the
// order listeners expect to hear them in.
func (h *AuctionHandler) publishBid(auctionID string, result store.BidResult) {
	if result.PreviousBidder != "" && result.PreviousBidder != result.Bid.BidderID {
		h.publisher.Publish(notify.OutbidEvent(auctionID, result.AuctionName, result.Bid.Amount, result.PreviousBidder))
	}
	h.publisher.Publish(notify.NewBidEvent(auctionID, result.AuctionName, result.Bid.Amount, result.Bid.BidderID, result.PreviousAmount))
}
