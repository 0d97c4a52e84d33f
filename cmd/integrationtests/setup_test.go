package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	model "auction-hub/internal/models"
	"auction-hub/internal/notify"
	"auction-hub/internal/server"
	"auction-hub/internal/sessions"
	"auction-hub/internal/store"
	handler "auction-hub/services/auction/handler"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// recordedDelivery is one captured webhook delivery.
type recordedDelivery struct {
	SessionID string
	Message   string
	Payload   map[string]any
}

// captureSender records deliveries instead of calling a real webhook.
type captureSender struct {
	mu         sync.Mutex
	deliveries []recordedDelivery
}

func (c *captureSender) Send(_ context.Context, sessionID, message string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, recordedDelivery{SessionID: sessionID, Message: message, Payload: payload})
	return nil
}

func (c *captureSender) all() []recordedDelivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedDelivery(nil), c.deliveries...)
}

// testApp wires the real store, registry and notifier behind the real router,
// on a fake clock and a capturing webhook sender.
type testApp struct {
	router   *gin.Engine
	store    *store.MemoryStore
	clock    *clockwork.FakeClock
	sender   *captureSender
	notifier *notify.Notifier
}

// SetupTestApp initializes the full application wiring for integration
// testing, seeded with the given auctions.
func SetupTestApp(auctions ...model.Auction) *testApp {
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	memStore := store.NewMemoryStore(clock)
	for _, a := range auctions {
		memStore.AddAuction(a)
	}

	registry := sessions.NewRegistry(clock)
	sender := &captureSender{}
	notifier := notify.NewNotifier(registry, sender, time.Second)

	h := handler.NewAuctionHandler(memStore, registry, notifier)
	h.SetSystemConfig(handler.SystemConfig{WebhookConfigured: true, APIKeyConfigured: true})

	return &testApp{
		router:   server.SetupRouter(h),
		store:    memStore,
		clock:    clock,
		sender:   sender,
		notifier: notifier,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the app router and
// parses the JSON response.
func ExecuteRequestAndParse(t *testing.T, app *testApp, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	app.router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// newAuction builds a seed auction ending after the given duration on the
// test clock.
func newAuction(id, name string, startingPrice float64, endsIn time.Duration) model.Auction {
	return model.Auction{
		ID:            id,
		Name:          name,
		Description:   name + " description",
		Category:      "test",
		StartingPrice: startingPrice,
		EndTime:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(endsIn),
	}
}
