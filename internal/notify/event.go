package notify

import "fmt"

// Kind discriminates auction events pushed to listeners.
type Kind string

const (
	KindNewBid       Kind = "new_bid"
	KindOutbid       Kind = "outbid"
	KindAuctionEnded Kind = "auction_ended"
)

// Event is one auction state change to broadcast. Only the fields relevant
// to the kind are set; use the constructors.
type Event struct {
	Kind           Kind
	AuctionID      string
	AuctionName    string
	Amount         float64
	BidderID       string
	PreviousAmount float64
	NewAmount      float64
	PreviousBidder string
	FinalAmount    float64
	Winner         string
}

// NewBidEvent announces an accepted bid to all listeners.
func NewBidEvent(auctionID, auctionName string, amount float64, bidderID string, previousAmount float64) Event {
	return Event{
		Kind:           KindNewBid,
		AuctionID:      auctionID,
		AuctionName:    auctionName,
		Amount:         amount,
		BidderID:       bidderID,
		PreviousAmount: previousAmount,
	}
}

// OutbidEvent announces that the previous leader lost the lead.
func OutbidEvent(auctionID, auctionName string, newAmount float64, previousBidder string) Event {
	return Event{
		Kind:           KindOutbid,
		AuctionID:      auctionID,
		AuctionName:    auctionName,
		NewAmount:      newAmount,
		PreviousBidder: previousBidder,
	}
}

// AuctionEndedEvent announces an auction passing its deadline.
func AuctionEndedEvent(auctionID, auctionName string, finalAmount float64, winner string) Event {
	return Event{
		Kind:        KindAuctionEnded,
		AuctionID:   auctionID,
		AuctionName: auctionName,
		FinalAmount: finalAmount,
		Winner:      winner,
	}
}

// Message renders the spoken notification text for the event.
func (e Event) Message() string {
	switch e.Kind {
	case KindNewBid:
		return fmt.Sprintf("NEW BID ALERT: $%.2f placed on %s", e.Amount, e.AuctionName)
	case KindOutbid:
		return fmt.Sprintf("You have been outbid on %s! New highest bid: $%.2f", e.AuctionName, e.NewAmount)
	case KindAuctionEnded:
		return fmt.Sprintf("ATTENTION: The auction for %s has ended! Final winning bid: $%.2f", e.AuctionName, e.FinalAmount)
	default:
		return ""
	}
}

// Payload is the structured event data delivered alongside the message.
func (e Event) Payload() map[string]any {
	p := map[string]any{
		"type":         string(e.Kind),
		"auction_id":   e.AuctionID,
		"auction_name": e.AuctionName,
	}
	switch e.Kind {
	case KindNewBid:
		p["amount"] = e.Amount
		p["bidder_id"] = e.BidderID
		p["previous_amount"] = e.PreviousAmount
	case KindOutbid:
		p["new_amount"] = e.NewAmount
		p["previous_bidder"] = e.PreviousBidder
	case KindAuctionEnded:
		p["final_amount"] = e.FinalAmount
		p["winner"] = e.Winner
	}
	return p
}
