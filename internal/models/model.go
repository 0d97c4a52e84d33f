package models

import "time"

// AuctionStatus is the lifecycle state of an auction. Once an auction is
// ended it never becomes active again.
type AuctionStatus string

const (
	StatusActive AuctionStatus = "active"
	StatusEnded  AuctionStatus = "ended"
)

// Bid statuses as seen from a user's side of an auction.
const (
	BidStatusWinning = "winning"
	BidStatusOutbid  = "outbid"
)

// Bid is an accepted bid on an auction. Immutable once appended to the log.
type Bid struct {
	BidID     string    `json:"bid_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Auction represents one item under sale.
type Auction struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Category          string        `json:"category"`
	ImageURL          string        `json:"image_url,omitempty"`
	StartingPrice     float64       `json:"starting_price"`
	CurrentHighestBid float64       `json:"current_highest_bid"`
	HighestBidder     string        `json:"highest_bidder"`
	EndTime           time.Time     `json:"auction_end_time"`
	BidHistory        []Bid         `json:"bidding_history"`
	TotalBids         int           `json:"total_bids"`
	Status            AuctionStatus `json:"status"`
}

// AuctionView is an immutable read snapshot of an auction with time-remaining
// fields derived at read time. Mutating a view never affects store state.
type AuctionView struct {
	Auction
	TimeRemainingMinutes int    `json:"time_remaining_minutes"`
	TimeRemainingSeconds int    `json:"time_remaining_seconds"`
	TimeRemainingText    string `json:"time_remaining_text"`
	Urgency              string `json:"urgency"`
}

// BidRecord is one entry in a user's append-only bid history.
type BidRecord struct {
	AuctionID   string  `json:"auction_id"`
	AuctionName string  `json:"auction_name"`
	Amount      float64 `json:"amount"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
}

// ActiveBid is a user's current standing bid on one auction. At most one
// entry per auction id; replaced on rebid, demoted to "outbid" when another
// bidder takes the lead.
type ActiveBid struct {
	AuctionID   string  `json:"auction_id"`
	AuctionName string  `json:"auction_name"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
}

// User is a bidder. Created lazily on first bid or first session start.
type User struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone,omitempty"`
	BidHistory []BidRecord `json:"bidding_history"`
	ActiveBids []ActiveBid `json:"active_bids"`
}

// Session is a live voice-call session mapped to a user. Sessions are owned
// by the listener registry and are not persisted on User or Auction.
type Session struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	StartTime    time.Time `json:"start_time"`
	LastActivity time.Time `json:"last_activity"`
}
