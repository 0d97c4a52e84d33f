package perftests

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"auction-hub/internal/auctionerrors"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name        string
	NumUsers    int
	NumAuctions int
	BidsPerUser int
	ReadRatio   int // reads per write, 0 = write-only
}

// Benchmark_Load_AuctionEngine runs mixed bid/read workloads against the
// in-memory store
func Benchmark_Load_AuctionEngine(b *testing.B) {
	scenarios := []LoadScenario{
		{"Low-Contention-WriteHeavy", 100, 100, 10, 0},
		{"High-Contention-WriteHeavy", 200, 5, 20, 0},
		{"Mixed-Workload", 150, 25, 15, 5},
		{"Edge-Case-SingleAuction", 100, 1, 10, 3},
	}

	for _, s := range scenarios {
		b.Run(s.Name, func(b *testing.B) {
			runScenario(b, s)
		})
	}
}

func runScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	for n := 0; n < b.N; n++ {
		st := seedStore(s.NumAuctions)

		var accepted, rejected atomic.Int64
		var wg sync.WaitGroup
		for u := 0; u < s.NumUsers; u++ {
			wg.Add(1)
			go func(u int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(int64(u)))
				userID := fmt.Sprintf("user_%d", u)

				for i := 0; i < s.BidsPerUser; i++ {
					auctionID := fmt.Sprintf("auc%d", rng.Intn(s.NumAuctions))

					for r := 0; r < s.ReadRatio; r++ {
						if _, err := st.GetAuction(auctionID); err != nil {
							b.Errorf("read failed: %v", err)
							return
						}
					}

					// Bid a fixed step above whatever we last observed; under
					// contention some of these lose the race, which is the
					// behavior under test.
					view, err := st.GetAuction(auctionID)
					if err != nil {
						b.Errorf("read failed: %v", err)
						return
					}
					_, err = st.PlaceBid(auctionID, userID, view.CurrentHighestBid+50+float64(rng.Intn(3))*50)
					switch {
					case err == nil:
						accepted.Add(1)
					case errors.Is(err, auctionerrors.ErrBidTooLow):
						rejected.Add(1)
					default:
						b.Errorf("unexpected error: %v", err)
						return
					}
				}
			}(u)
		}
		wg.Wait()

		if accepted.Load() == 0 {
			b.Fatal("no bids accepted")
		}
		b.ReportMetric(float64(accepted.Load()), "accepted/op")
		b.ReportMetric(float64(rejected.Load()), "rejected/op")
	}
}
