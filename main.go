package main

import (
	"fmt"
	"os"
	"time"

	"auction-hub/internal/config"
	model "auction-hub/internal/models"
	"auction-hub/internal/notify"
	"auction-hub/internal/server"
	"auction-hub/internal/sessions"
	"auction-hub/internal/store"
	"auction-hub/internal/sweeper"
	handler "auction-hub/services/auction/handler"
	"auction-hub/utils"

	"github.com/jonboulle/clockwork"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}

	clock := clockwork.NewRealClock()

	auctionStore := store.NewMemoryStore(clock)
	prepopulateAuctions(auctionStore, clock)

	registry := sessions.NewRegistry(clock)

	var sender notify.Sender
	if cfg.WebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.WebhookURL, cfg.APIKey)
	} else {
		utils.Warn("webhook URL not configured, notification delivery disabled", nil)
	}
	notifier := notify.NewNotifier(registry, sender, cfg.WebhookTimeout)

	expirySweeper, err := sweeper.New(auctionStore, notifier, cfg.SweepInterval, clock)
	if err != nil {
		utils.Fatal("failed to create expiry sweeper", map[string]any{"error": err.Error()})
	}
	if err := expirySweeper.Start(); err != nil {
		utils.Fatal("failed to start expiry sweeper", map[string]any{"error": err.Error()})
	}
	defer expirySweeper.Stop()

	h := handler.NewAuctionHandler(auctionStore, registry, notifier)
	h.SetSystemConfig(handler.SystemConfig{
		WebhookConfigured: cfg.WebhookURL != "",
		APIKeyConfigured:  cfg.APIKey != "",
	})

	router := server.SetupRouter(h)

	addr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateAuctions adds sample auctions to the in-memory store
func prepopulateAuctions(s *store.MemoryStore, clock clockwork.Clock) {
	now := clock.Now()
	auctions := []model.Auction{
		{
			ID:            "prod_1",
			Name:          "Vintage Rolex Submariner",
			Description:   "Rare 1965 Rolex Submariner in excellent condition with original box and papers",
			Category:      "watches",
			StartingPrice: 50000,
			EndTime:       now.Add(30 * time.Minute),
		},
		{
			ID:            "prod_2",
			Name:          "1967 Ford Mustang Fastback",
			Description:   "Fully restored classic Mustang with 390 V8 engine, stunning condition",
			Category:      "vehicles",
			StartingPrice: 25000000,
			EndTime:       now.Add(45 * time.Minute),
		},
		{
			ID:            "prod_3",
			Name:          "Original Van Gogh Sketch",
			Description:   "Authenticated Van Gogh preparatory sketch with provenance documentation",
			Category:      "art",
			StartingPrice: 15000000,
			EndTime:       now.Add(20 * time.Minute),
		},
	}

	for _, a := range auctions {
		s.AddAuction(a)
	}
}
