package store

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"auction-hub/internal/auctionerrors"
	model "auction-hub/internal/models"
	"auction-hub/utils"

	"github.com/jonboulle/clockwork"
)

// MinimumIncrement is the amount a new bid must exceed the current highest
// bid by to be accepted, in currency units.
const MinimumIncrement = 50.0

// BidResult is returned on a successful bid and carries the previous leader
// so callers can fan out outbid notifications.
type BidResult struct {
	Bid              model.Bid
	AuctionName      string
	PreviousAmount   float64
	PreviousBidder   string
	TotalBids        int
	MinutesRemaining int
}

// EndedAuction is one auction transitioned past its deadline, reported
// exactly once by CollectExpired.
type EndedAuction struct {
	AuctionID   string
	Name        string
	FinalAmount float64
	Winner      string
}

// Stats is a point-in-time summary used by the status endpoints.
type Stats struct {
	TotalAuctions  int
	ActiveAuctions int
	EndedAuctions  int
	TotalBids      int
	TotalBidValue  float64
	TotalUsers     int
}

// AuctionStore defines the auction engine storage interface. It is the only
// owner of Auction and User state; all reads return detached snapshots.
type AuctionStore interface {
	PlaceBid(auctionID, bidderID string, amount float64) (BidResult, error)
	GetAuction(auctionID string) (model.AuctionView, error)
	ListAuctions() []model.AuctionView
	CollectExpired() []EndedAuction
	GetUser(userID string) (model.User, error)
	UpsertUserForSession(phoneNumber, sessionKey string) model.User
	Stats() Stats
}

// auctionEntry pairs an auction with its own mutex so distinct auctions
// never contend on a shared lock.
type auctionEntry struct {
	mu           sync.Mutex
	auction      model.Auction
	endAnnounced bool
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
// The bid-acceptance critical section (validate, append, reassign leader,
// update both users' active bids) runs entirely under one auction's mutex.
type MemoryStore struct {
	mu       sync.RWMutex             // guards the auctions map itself
	auctions map[string]*auctionEntry // key: auctionID
	usersMu  sync.RWMutex
	users    map[string]*model.User // key: userID
	clock    clockwork.Clock
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]*auctionEntry),
		users:    make(map[string]*model.User),
		clock:    clock,
	}
}

// AddAuction registers an auction. With no bids yet the highest bid floor
// defaults to the starting price and the bidder stays empty.
func (s *MemoryStore) AddAuction(a model.Auction) {
	if a.Status == "" {
		a.Status = model.StatusActive
	}
	if a.CurrentHighestBid == 0 {
		a.CurrentHighestBid = a.StartingPrice
	}
	a.TotalBids = len(a.BidHistory)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = &auctionEntry{auction: a}
}

func (s *MemoryStore) entry(auctionID string) (*auctionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.auctions[auctionID]
	return e, ok
}

// PlaceBid validates and applies a bid against an auction. A bid arriving at
// or after the deadline ends the auction immediately instead of waiting for
// the next sweep.
func (s *MemoryStore) PlaceBid(auctionID, bidderID string, amount float64) (BidResult, error) {
	if auctionID == "" || bidderID == "" {
		return BidResult{}, fmt.Errorf("place bid: %w - missing auction or bidder id", auctionerrors.ErrInvalidAmount)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return BidResult{}, fmt.Errorf("place bid on %s: %w", auctionID, auctionerrors.ErrInvalidAmount)
	}

	e, ok := s.entry(auctionID)
	if !ok {
		return BidResult{}, fmt.Errorf("place bid on %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock.Now()
	a := &e.auction

	if a.Status != model.StatusActive {
		return BidResult{}, fmt.Errorf("place bid on %s: %w", auctionID, auctionerrors.ErrAuctionEnded)
	}
	if !now.Before(a.EndTime) {
		// Lazy expiry on the bid path; the sweeper still owns the
		// end-of-auction announcement.
		a.Status = model.StatusEnded
		return BidResult{}, fmt.Errorf("place bid on %s: %w", auctionID, auctionerrors.ErrAuctionEnded)
	}

	minimum := a.CurrentHighestBid + MinimumIncrement
	if amount < minimum {
		return BidResult{}, fmt.Errorf("place bid on %s: %w", auctionID, &auctionerrors.BidTooLowError{Minimum: minimum})
	}

	previousAmount := a.CurrentHighestBid
	previousBidder := a.HighestBidder

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: now,
	}

	a.BidHistory = append(a.BidHistory, bid)
	a.CurrentHighestBid = amount
	a.HighestBidder = bidderID
	a.TotalBids++

	// User projections change inside the same critical section so readers
	// never observe a leader without the matching active-bid entry.
	s.applyBidToUsers(a, bid, previousBidder)

	return BidResult{
		Bid:              bid,
		AuctionName:      a.Name,
		PreviousAmount:   previousAmount,
		PreviousBidder:   previousBidder,
		TotalBids:        a.TotalBids,
		MinutesRemaining: minutesRemaining(a.EndTime, now),
	}, nil
}

// applyBidToUsers appends the bidder's history entry, replaces their active
// bid for this auction, and demotes the previous leader's entry to outbid.
// Called with the auction entry lock held.
func (s *MemoryStore) applyBidToUsers(a *model.Auction, bid model.Bid, previousBidder string) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	bidder := s.ensureUserLocked(bid.BidderID, "", "")
	bidder.BidHistory = append(bidder.BidHistory, model.BidRecord{
		AuctionID:   a.ID,
		AuctionName: a.Name,
		Amount:      bid.Amount,
		Timestamp:   bid.Timestamp.UTC().Format(time.RFC3339),
		Status:      model.BidStatusWinning,
	})

	kept := bidder.ActiveBids[:0]
	for _, ab := range bidder.ActiveBids {
		if ab.AuctionID != a.ID {
			kept = append(kept, ab)
		}
	}
	bidder.ActiveBids = append(kept, model.ActiveBid{
		AuctionID:   a.ID,
		AuctionName: a.Name,
		Amount:      bid.Amount,
		Status:      model.BidStatusWinning,
	})

	if previousBidder == "" || previousBidder == bid.BidderID {
		return
	}
	if prev, ok := s.users[previousBidder]; ok {
		for i := range prev.ActiveBids {
			if prev.ActiveBids[i].AuctionID == a.ID {
				prev.ActiveBids[i].Status = model.BidStatusOutbid
			}
		}
	}
}

// GetAuction returns a snapshot of one auction with derived time fields.
func (s *MemoryStore) GetAuction(auctionID string) (model.AuctionView, error) {
	e, ok := s.entry(auctionID)
	if !ok {
		return model.AuctionView{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return s.viewLocked(&e.auction), nil
}

// ListAuctions returns snapshots of all auctions.
func (s *MemoryStore) ListAuctions() []model.AuctionView {
	s.mu.RLock()
	entries := make([]*auctionEntry, 0, len(s.auctions))
	for _, e := range s.auctions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	views := make([]model.AuctionView, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		views = append(views, s.viewLocked(&e.auction))
		e.mu.Unlock()
	}
	return views
}

// viewLocked builds a detached snapshot. Called with the entry lock held.
func (s *MemoryStore) viewLocked(a *model.Auction) model.AuctionView {
	now := s.clock.Now()

	view := model.AuctionView{Auction: *a}
	view.BidHistory = append([]model.Bid(nil), a.BidHistory...)

	remaining := a.EndTime.Sub(now)
	if a.Status == model.StatusActive && remaining > 0 {
		minutes := int(remaining.Seconds()) / 60
		seconds := int(remaining.Seconds()) % 60
		view.TimeRemainingMinutes = minutes
		view.TimeRemainingSeconds = seconds
		view.TimeRemainingText = fmt.Sprintf("%d minutes and %d seconds", minutes, seconds)
		switch {
		case minutes < 5:
			view.Urgency = "high"
		case minutes < 15:
			view.Urgency = "medium"
		default:
			view.Urgency = "low"
		}
	} else {
		view.Status = model.StatusEnded
		view.TimeRemainingText = "Auction ended"
		view.Urgency = "none"
	}
	return view
}

// CollectExpired transitions every active auction whose deadline has passed
// and returns each ended auction exactly once. Repeated calls never report
// the same auction twice, including auctions ended lazily by the bid path.
func (s *MemoryStore) CollectExpired() []EndedAuction {
	s.mu.RLock()
	entries := make([]*auctionEntry, 0, len(s.auctions))
	for _, e := range s.auctions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	now := s.clock.Now()
	var ended []EndedAuction
	for _, e := range entries {
		e.mu.Lock()
		a := &e.auction
		if !e.endAnnounced && (a.Status == model.StatusEnded || !now.Before(a.EndTime)) {
			a.Status = model.StatusEnded
			e.endAnnounced = true
			ended = append(ended, EndedAuction{
				AuctionID:   a.ID,
				Name:        a.Name,
				FinalAmount: a.CurrentHighestBid,
				Winner:      a.HighestBidder,
			})
		}
		e.mu.Unlock()
	}
	return ended
}

// GetUser returns a snapshot of a user's bid history and active bids.
func (s *MemoryStore) GetUser(userID string) (model.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return snapshotUser(u), nil
}

// UpsertUserForSession creates-if-absent the user for a voice session. The
// id is derived from the phone number when present, else from the session
// key, so the same caller always maps to the same user.
func (s *MemoryStore) UpsertUserForSession(phoneNumber, sessionKey string) model.User {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	var userID, name string
	if phoneNumber != "" {
		userID = "voice_user_" + stripPhone(phoneNumber)
		name = fmt.Sprintf("Voice User (%s)", phoneNumber)
	} else {
		userID = "voice_user_" + sessionKey
		name = fmt.Sprintf("Voice User %s", shortKey(sessionKey))
	}

	u := s.ensureUserLocked(userID, name, phoneNumber)
	return snapshotUser(u)
}

// ensureUserLocked creates the user if absent. Called with usersMu held.
func (s *MemoryStore) ensureUserLocked(userID, name, phone string) *model.User {
	if u, ok := s.users[userID]; ok {
		return u
	}
	if name == "" {
		name = fmt.Sprintf("User %s", userID)
	}
	u := &model.User{
		ID:         userID,
		Name:       name,
		Phone:      phone,
		BidHistory: []model.BidRecord{},
		ActiveBids: []model.ActiveBid{},
	}
	s.users[userID] = u
	return u
}

// Stats summarizes auction and user counts for the status endpoints.
func (s *MemoryStore) Stats() Stats {
	views := s.ListAuctions()

	var st Stats
	st.TotalAuctions = len(views)
	for _, v := range views {
		if v.Status == model.StatusActive {
			st.ActiveAuctions++
		} else {
			st.EndedAuctions++
		}
		st.TotalBids += v.TotalBids
		st.TotalBidValue += v.CurrentHighestBid
	}

	s.usersMu.RLock()
	st.TotalUsers = len(s.users)
	s.usersMu.RUnlock()
	return st
}

func snapshotUser(u *model.User) model.User {
	out := *u
	out.BidHistory = append([]model.BidRecord(nil), u.BidHistory...)
	out.ActiveBids = append([]model.ActiveBid(nil), u.ActiveBids...)
	return out
}

func minutesRemaining(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) / 60
}

func stripPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
