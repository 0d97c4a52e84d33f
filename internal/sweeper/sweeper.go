package sweeper

import (
	"time"

	"auction-hub/internal/notify"
	"auction-hub/internal/store"
	"auction-hub/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Expirer is the slice of the auction store the sweeper needs.
type Expirer interface {
	CollectExpired() []store.EndedAuction
}

// Publisher broadcasts auction events to listeners.
type Publisher interface {
	Publish(event notify.Event)
}

// Sweeper periodically transitions auctions past their deadline and
// announces each ending exactly once. It only calls the store's atomic
// operations and holds no auction lock while events are delivered.
type Sweeper struct {
	store     Expirer
	publisher Publisher
	interval  time.Duration
	scheduler gocron.Scheduler
}

// New creates a sweeper ticking at the given interval on the given clock.
func New(st Expirer, publisher Publisher, interval time.Duration, clock clockwork.Clock) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		store:     st,
		publisher: publisher,
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start schedules the periodic sweep and begins ticking.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// sweep runs one pass. CollectExpired returns detached copies, so delivery
// happens outside any store lock.
func (s *Sweeper) sweep() {
	for _, ended := range s.store.CollectExpired() {
		utils.Info("auction ended", map[string]any{
			"auction_id":   ended.AuctionID,
			"name":         ended.Name,
			"final_amount": ended.FinalAmount,
			"winner":       ended.Winner,
		})
		s.publisher.Publish(notify.AuctionEndedEvent(ended.AuctionID, ended.Name, ended.FinalAmount, ended.Winner))
	}
}
