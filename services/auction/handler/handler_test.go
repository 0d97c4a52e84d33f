package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-hub/internal/auctionerrors"
	model "auction-hub/internal/models"
	"auction-hub/internal/notify"
	"auction-hub/internal/sessions"
	"auction-hub/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingPublisher) Publish(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type testEnv struct {
	store     *store.MockAuctionStore
	registry  *sessions.Registry
	publisher *recordingPublisher
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:     store.NewMockAuctionStore(ctrl),
		registry:  sessions.NewRegistry(clockwork.NewFakeClock()),
		publisher: &recordingPublisher{},
	}
	h := NewAuctionHandler(env.store, env.registry, env.publisher)

	router := gin.New()
	router.POST("/api/voice/bid", h.VoiceBidHandler)
	router.POST("/api/voice/user/status", h.VoiceUserStatusHandler)
	router.GET("/api/voice/auctions/summary", h.VoiceSummaryHandler)
	router.GET("/api/voice/auctions/:auction_id/details", h.VoiceDetailsHandler)
	router.POST("/api/auctions/:auction_id/bid", h.PlaceBidHandler)
	router.POST("/api/session/start", h.StartSessionHandler)
	router.POST("/api/session/:session_id/end", h.EndSessionHandler)
	router.POST("/api/webhook/voice", h.CallEventHandler)
	env.router = router
	return env
}

func (env *testEnv) do(t *testing.T, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// Test VoiceBidHandler
func TestVoiceBidHandler(t *testing.T) {
	acceptedResult := store.BidResult{
		Bid:              model.Bid{BidID: "bid-1", BidderID: "voice_user_123", Amount: 150, Timestamp: time.Now().UTC()},
		AuctionName:      "Vintage Rolex Submariner",
		PreviousAmount:   100,
		PreviousBidder:   "user_other",
		TotalBids:        2,
		MinutesRemaining: 25,
	}

	tests := []struct {
		name           string
		body           any
		withSession    bool
		mockSetup      func(env *testEnv)
		expectedStatus int
		expectedError  string
		expectedVoice  string
		expectedKinds  []notify.Kind
	}{
		{
			name:           "success",
			body:           map[string]any{"auction_id": "auc1", "amount": 150, "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusOK,
			mockSetup: func(env *testEnv) {
				env.store.EXPECT().PlaceBid("auc1", "voice_user_123", 150.0).Return(acceptedResult, nil)
			},
			expectedVoice: "Congratulations! Your bid of $150 on Vintage Rolex Submariner has been placed successfully. You are now the highest bidder. There are 25 minutes remaining in this auction.",
			expectedKinds: []notify.Kind{notify.KindOutbid, notify.KindNewBid},
		},
		{
			name:           "amount_as_string",
			body:           map[string]any{"auction_id": "auc1", "amount": "150.00", "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusOK,
			mockSetup: func(env *testEnv) {
				env.store.EXPECT().PlaceBid("auc1", "voice_user_123", 150.0).Return(acceptedResult, nil)
			},
			expectedKinds: []notify.Kind{notify.KindOutbid, notify.KindNewBid},
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "missing_fields",
			body:           map[string]any{"auction_id": "auc1"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "unknown_session",
			body:           map[string]any{"auction_id": "auc1", "amount": 150, "session_id": "ghost"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_session",
			expectedVoice:  "Your session has expired. Please start a new call.",
		},
		{
			name:           "unparseable_amount",
			body:           map[string]any{"auction_id": "auc1", "amount": "a lot", "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_amount",
			expectedVoice:  "Please provide a valid dollar amount for your bid.",
		},
		{
			name:           "bid_too_low",
			body:           map[string]any{"auction_id": "auc1", "amount": 140, "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusConflict,
			mockSetup: func(env *testEnv) {
				env.store.EXPECT().PlaceBid("auc1", "voice_user_123", 140.0).
					Return(store.BidResult{}, &auctionerrors.BidTooLowError{Minimum: 150})
			},
			expectedError: "bid_too_low",
			expectedVoice: "Your bid must be at least $150, which includes the $50 minimum increment.",
		},
		{
			name:           "auction_ended",
			body:           map[string]any{"auction_id": "auc1", "amount": 1000, "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusBadRequest,
			mockSetup: func(env *testEnv) {
				env.store.EXPECT().PlaceBid("auc1", "voice_user_123", 1000.0).
					Return(store.BidResult{}, auctionerrors.ErrAuctionEnded)
				env.store.EXPECT().GetAuction("auc1").
					Return(model.AuctionView{Auction: model.Auction{ID: "auc1", Name: "Vintage Rolex Submariner"}}, nil)
			},
			expectedError: "auction_ended",
			expectedVoice: "Sorry, the auction for Vintage Rolex Submariner has already ended.",
		},
		{
			name:           "auction_not_found",
			body:           map[string]any{"auction_id": "nope", "amount": 150, "session_id": "sess1"},
			withSession:    true,
			expectedStatus: http.StatusNotFound,
			mockSetup: func(env *testEnv) {
				env.store.EXPECT().PlaceBid("nope", "voice_user_123", 150.0).
					Return(store.BidResult{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedError: "auction_not_found",
			expectedVoice: "I couldn't find that auction item. Please try again.",
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tc.withSession {
				env.registry.Start("sess1", "voice_user_123", "+1230000000")
			}
			if tc.mockSetup != nil {
				tc.mockSetup(env)
			}

			resp, w := env.do(t, http.MethodPost, "/api/voice/bid", tc.body)
			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedError != "" {
				require.Equal(t, false, resp["success"])
				require.Equal(t, tc.expectedError, resp["error"])
			} else {
				require.Equal(t, true, resp["success"])
				details := resp["bid_details"].(map[string]any)
				require.Equal(t, "bid-1", details["bid_id"])
				require.Equal(t, 150.0, details["new_highest_bid"])
				require.Equal(t, 100.0, details["previous_highest_bid"])
				require.Equal(t, 2.0, details["total_bids"])
				require.Equal(t, 25.0, details["minutes_remaining"])
			}
			if tc.expectedVoice != "" {
				require.Equal(t, tc.expectedVoice, resp["voice_message"])
			}
			if tc.expectedKinds == nil {
				require.Empty(t, env.publisher.kinds())
			} else {
				require.Equal(t, tc.expectedKinds, env.publisher.kinds())
			}
		})
	}
}

// A bid that keeps the same leader publishes no outbid event.
func TestVoiceBidHandler_NoSelfOutbid(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Start("sess1", "voice_user_123", "")

	env.store.EXPECT().PlaceBid("auc1", "voice_user_123", 300.0).Return(store.BidResult{
		Bid:            model.Bid{BidID: "bid-2", BidderID: "voice_user_123", Amount: 300},
		AuctionName:    "Rolex",
		PreviousAmount: 250,
		PreviousBidder: "voice_user_123",
		TotalBids:      3,
	}, nil)

	_, w := env.do(t, http.MethodPost, "/api/voice/bid", map[string]any{
		"auction_id": "auc1", "amount": 300, "session_id": "sess1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []notify.Kind{notify.KindNewBid}, env.publisher.kinds())
}

// Test VoiceSummaryHandler ordering, truncation and wording
func TestVoiceSummaryHandler(t *testing.T) {
	env := newTestEnv(t)

	mkView := func(id, name string, bid float64, minutes int, status model.AuctionStatus) model.AuctionView {
		return model.AuctionView{
			Auction:              model.Auction{ID: id, Name: name, CurrentHighestBid: bid, Status: status},
			TimeRemainingMinutes: minutes,
		}
	}

	env.store.EXPECT().ListAuctions().Return([]model.AuctionView{
		mkView("a1", "Slowest", 100, 50, model.StatusActive),
		mkView("a2", "Fast", 200, 5, model.StatusActive),
		mkView("a3", "Gone", 300, 0, model.StatusEnded),
		mkView("a4", "Faster", 400, 2, model.StatusActive),
		mkView("a5", "Medium", 500, 20, model.StatusActive),
	})

	resp, w := env.do(t, http.MethodGet, "/api/voice/auctions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 4.0, resp["total_active"])

	expected := "There are 4 active auctions. " +
		"1. Faster - Current bid: $400 - 2 minutes remaining. " +
		"2. Fast - Current bid: $200 - 5 minutes remaining. " +
		"3. Medium - Current bid: $500 - 20 minutes remaining."
	require.Equal(t, expected, resp["voice_summary"])

	auctions := resp["auctions"].([]any)
	require.Len(t, auctions, 4, "payload lists all active auctions, voice text only the top three")
}

func TestVoiceSummaryHandler_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.store.EXPECT().ListAuctions().Return(nil)

	resp, w := env.do(t, http.MethodGet, "/api/voice/auctions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0.0, resp["total_active"])
	require.Equal(t, "There are 0 active auctions.", resp["voice_summary"])
}

// Test VoiceDetailsHandler
func TestVoiceDetailsHandler(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().GetAuction("auc1").Return(model.AuctionView{
		Auction: model.Auction{
			ID:                "auc1",
			Name:              "Vintage Rolex Submariner",
			Description:       "Rare 1965 Submariner",
			CurrentHighestBid: 55000,
			TotalBids:         3,
			Status:            model.StatusActive,
		},
		TimeRemainingMinutes: 12,
		TimeRemainingSeconds: 30,
	}, nil)

	resp, w := env.do(t, http.MethodGet, "/api/voice/auctions/auc1/details", nil)
	require.Equal(t, http.StatusOK, w.Code)

	expected := "Here are the details for Vintage Rolex Submariner. " +
		"Description: Rare 1965 Submariner. " +
		"Current highest bid is $55000. " +
		"There have been 3 bids so far. " +
		"Time remaining: 12 minutes and 30 seconds. " +
		"Minimum next bid would be $55050."
	require.Equal(t, expected, resp["voice_details"])

	product := resp["product"].(map[string]any)
	require.Equal(t, 55050.0, product["minimum_next_bid"])
}

func TestVoiceDetailsHandler_Ended(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().GetAuction("auc1").Return(model.AuctionView{
		Auction: model.Auction{ID: "auc1", Name: "Rolex", Status: model.StatusEnded},
	}, nil)

	resp, w := env.do(t, http.MethodGet, "/api/voice/auctions/auc1/details", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "auction_ended", resp["error"])
	require.Equal(t, "The auction for Rolex has already ended.", resp["voice_message"])
}

// Test VoiceUserStatusHandler wording
func TestVoiceUserStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Start("sess1", "voice_user_123", "")

	env.store.EXPECT().GetUser("voice_user_123").Return(model.User{
		ID: "voice_user_123",
		BidHistory: []model.BidRecord{
			{AuctionID: "a1", Amount: 150}, {AuctionID: "a2", Amount: 300}, {AuctionID: "a2", Amount: 500},
		},
		ActiveBids: []model.ActiveBid{
			{AuctionID: "a1", AuctionName: "Rolex", Amount: 150, Status: model.BidStatusWinning},
			{AuctionID: "a2", AuctionName: "Mustang", Amount: 300, Status: model.BidStatusOutbid},
		},
	}, nil)

	resp, w := env.do(t, http.MethodPost, "/api/voice/user/status", map[string]any{"session_id": "sess1"})
	require.Equal(t, http.StatusOK, w.Code)

	expected := "Here's your current status: " +
		"You are currently winning 1 auction: Rolex with a bid of $150. " +
		"You have been outbid on 1 item: Mustang."
	require.Equal(t, expected, resp["voice_message"])

	status := resp["user_status"].(map[string]any)
	require.Equal(t, 2.0, status["total_active_bids"])
	require.Equal(t, 1.0, status["winning_bids"])
	require.Equal(t, 1.0, status["outbid_bids"])
	require.Equal(t, 3.0, status["total_bid_history"])
}

func TestVoiceUserStatusHandler_NoBids(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Start("sess1", "voice_user_123", "")

	env.store.EXPECT().GetUser("voice_user_123").Return(model.User{ID: "voice_user_123"}, nil)

	resp, w := env.do(t, http.MethodPost, "/api/voice/user/status", map[string]any{"session_id": "sess1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Here's your current status: You don't have any active bids at the moment.", resp["voice_message"])
}

// Test PlaceBidHandler (direct, non-session path)
func TestPlaceBidHandler(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().PlaceBid("auc1", "user9", 150.0).Return(store.BidResult{
		Bid:              model.Bid{BidID: "bid-9", BidderID: "user9", Amount: 150},
		AuctionName:      "Rolex",
		PreviousAmount:   100,
		TotalBids:        1,
		MinutesRemaining: 10,
	}, nil)

	resp, w := env.do(t, http.MethodPost, "/api/auctions/auc1/bid", map[string]any{
		"amount": 150, "bidder_id": "user9",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, resp["success"])
	require.Equal(t, "Bid of $150.00 placed successfully", resp["message"])
	require.Equal(t, []notify.Kind{notify.KindNewBid}, env.publisher.kinds())
}

func TestPlaceBidHandler_BidTooLow(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().PlaceBid("auc1", "user9", 120.0).
		Return(store.BidResult{}, &auctionerrors.BidTooLowError{Minimum: 150})

	resp, w := env.do(t, http.MethodPost, "/api/auctions/auc1/bid", map[string]any{
		"amount": 120, "bidder_id": "user9",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "bid_too_low", resp["error"])
	require.Equal(t, "Your bid must be at least $150, which includes the $50 minimum increment.", resp["message"])
	require.Empty(t, env.publisher.kinds())
}

// Test session lifecycle handlers
func TestSessionHandlers(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().UpsertUserForSession("+918439473928", "sess1").
		Return(model.User{ID: "voice_user_918439473928"})

	resp, w := env.do(t, http.MethodPost, "/api/session/start", map[string]any{
		"phone_number": "+918439473928", "session_id": "sess1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "sess1", resp["session_id"])
	require.Equal(t, "voice_user_918439473928", resp["user_id"])
	require.Equal(t, 1, env.registry.Count())

	resp, w = env.do(t, http.MethodPost, "/api/session/sess1/end", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Voice session ended successfully", resp["message"])
	require.NotEmpty(t, resp["session_duration"])
	require.Equal(t, 0, env.registry.Count())

	resp, w = env.do(t, http.MethodPost, "/api/session/sess1/end", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "invalid_session", resp["error"])
}

func TestSessionStart_GeneratesID(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().UpsertUserForSession("", gomock.Any()).
		Return(model.User{ID: "voice_user_generated"})

	resp, w := env.do(t, http.MethodPost, "/api/session/start", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, resp["session_id"])
}

// Test inbound call-event webhook
func TestCallEventHandler(t *testing.T) {
	env := newTestEnv(t)

	env.store.EXPECT().UpsertUserForSession("+15550001111", "call-1").
		Return(model.User{ID: "voice_user_15550001111"})

	resp, w := env.do(t, http.MethodPost, "/api/webhook/voice", map[string]any{
		"event_type": "call_started", "session_id": "call-1", "caller_number": "+15550001111",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, resp["success"])
	require.Equal(t, 1, env.registry.Count())

	resp, w = env.do(t, http.MethodPost, "/api/webhook/voice", map[string]any{
		"event_type": "call_ended", "session_id": "call-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Webhook processed", resp["message"])
	require.Equal(t, 0, env.registry.Count())

	// Unknown events are acknowledged without side effects
	_, w = env.do(t, http.MethodPost, "/api/webhook/voice", map[string]any{
		"event_type": "call_transferred", "session_id": "call-2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, env.registry.Count())
}
