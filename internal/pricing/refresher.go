package pricing

import (
	"context"
	"log"
	"time"
)

// istLocation is the NSE trading timezone (UTC+5:30).
var istLocation = time.FixedZone("IST", 5*3600+30*60)

// MarketOpen reports whether the NSE equity market is open at the given
// instant: Monday to Friday, 09:15 to 15:30 IST. Exchange holidays are not
// tracked; a closed-market refresh is only wasted work.
func MarketOpen(now time.Time) bool {
	ist := now.In(istLocation)
	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := ist.Hour()*60 + ist.Minute()
	return minutes >= 9*60+15 && minutes <= 15*60+30
}

// Refresher periodically fetches quotes for the tracked symbols and pushes
// them into the sink. It is read-only with respect to accounting.
type Refresher struct {
	source   Source
	interval time.Duration
	symbols  func() []string
	apply    func(symbol string, q Quote)
}

// NewRefresher creates a refresher. symbols supplies the set to refresh on
// each tick; apply receives each fetched quote.
func NewRefresher(source Source, interval time.Duration, symbols func() []string, apply func(symbol string, q Quote)) *Refresher {
	return &Refresher{source: source, interval: interval, symbols: symbols, apply: apply}
}

// Run refreshes until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !MarketOpen(time.Now()) {
				continue
			}
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	for _, symbol := range r.symbols() {
		q, err := r.source.GetPrice(ctx, symbol)
		if err != nil {
			// Stale prices are tolerated; accounting never depends on them.
			log.Printf("Price refresh skipped for %s: %v", symbol, err)
			continue
		}
		r.apply(symbol, q)
	}
}
