package helpers

// Request/Response DTOs

// StartSessionRequest starts a voice session. Both fields are optional; a
// missing session id is generated server-side.
type StartSessionRequest struct {
	PhoneNumber string `json:"phone_number"`
	SessionID   string `json:"session_id"`
}

// VoiceBidRequest places a bid attributed through a session. Amount may be
// a JSON number or a decimal string.
type VoiceBidRequest struct {
	AuctionID string `json:"auction_id" binding:"required"`
	Amount    any    `json:"amount" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// DirectBidRequest places a bid with an explicit bidder id.
type DirectBidRequest struct {
	Amount   any    `json:"amount" binding:"required"`
	BidderID string `json:"bidder_id" binding:"required"`
}

// SessionRefRequest carries just a session reference.
type SessionRefRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// CallEventRequest is the inbound webhook payload from the voice agent.
type CallEventRequest struct {
	EventType    string `json:"event_type"`
	SessionID    string `json:"session_id"`
	CallerNumber string `json:"caller_number"`
}

// BidDetails is the success payload of both bid endpoints.
type BidDetails struct {
	BidID              string  `json:"bid_id"`
	Amount             float64 `json:"amount"`
	AuctionName        string  `json:"auction_name"`
	NewHighestBid      float64 `json:"new_highest_bid"`
	PreviousHighestBid float64 `json:"previous_highest_bid"`
	TotalBids          int     `json:"total_bids"`
	MinutesRemaining   int     `json:"minutes_remaining"`
}

// AuctionSummary is one entry of the voice auction summary.
type AuctionSummary struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CurrentBid       float64 `json:"current_bid"`
	MinutesRemaining int     `json:"minutes_remaining"`
	TotalBids        int     `json:"total_bids"`
	VoiceDescription string  `json:"voice_description"`
}
