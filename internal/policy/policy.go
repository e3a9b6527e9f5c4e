package policy

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

// Config holds the trading thresholds. Defaults mirror the strategy settings
// the dashboard ships with.
type Config struct {
	// ProfitTargetPct gates sells: a holding qualifies once its unrealized
	// gain reaches this percentage.
	ProfitTargetPct decimal.Decimal
	// AveragingThresholdPct is the fall from the last buy price that makes
	// a holding an averaging-down candidate.
	AveragingThresholdPct decimal.Decimal
	// MaxETFsPerSector caps how many distinct symbols may be held per sector.
	MaxETFsPerSector int
	// DailySellLimit caps completed sells per calendar day.
	DailySellLimit int
}

// DefaultConfig returns the strategy defaults: 6% profit target, 2.5%
// averaging threshold, 3 ETFs per sector, one sell per day.
func DefaultConfig() Config {
	return Config{
		ProfitTargetPct:       decimal.NewFromFloat(6),
		AveragingThresholdPct: decimal.NewFromFloat(2.5),
		MaxETFsPerSector:      3,
		DailySellLimit:        1,
	}
}

// Policy evaluates trading rules over ledger snapshots. Every method is a
// pure function of its inputs.
type Policy struct {
	cfg Config
}

// New creates a policy with the given thresholds.
func New(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Config returns the configured thresholds.
func (p *Policy) Config() Config { return p.cfg }

// CanSellToday reports whether today's completed sells are still under the
// daily limit.
func (p *Policy) CanSellToday(dailySellCount int) bool {
	return dailySellCount < p.cfg.DailySellLimit
}

// BestSellCandidate picks the holding to sell: among holdings at or above the
// profit target it maximizes absolute profit (currentPrice − avgPrice) × qty,
// breaking ties toward the earliest last buy date. Returns nil when nothing
// qualifies.
func (p *Policy) BestSellCandidate(holdings []*models.Holding) *models.Holding {
	hundred := decimal.NewFromInt(100)
	var best *models.Holding
	var bestProfit decimal.Decimal

	for _, h := range holdings {
		if h.AvgPrice.IsZero() {
			continue
		}
		gainPct := h.CurrentPrice.Sub(h.AvgPrice).Div(h.AvgPrice).Mul(hundred)
		if gainPct.LessThan(p.cfg.ProfitTargetPct) {
			continue
		}
		profit := h.CurrentPrice.Sub(h.AvgPrice).Mul(decimal.NewFromInt(h.Quantity))
		switch {
		case best == nil:
			best, bestProfit = h, profit
		case profit.GreaterThan(bestProfit):
			best, bestProfit = h, profit
		case profit.Equal(bestProfit) && h.LastBuyDate.Before(best.LastBuyDate):
			best, bestProfit = h, profit
		}
	}
	return best
}

// RankETFsForPurchase orders the universe by dip depth: percent below the
// 20-day moving average, ascending, so the most-fallen ETF ranks first.
// Symbols already held keep their relative order but move to the end of the
// list. Rank is assigned 1-based after sorting. ETFs with no DMA signal sort
// after everything with one.
func (p *Policy) RankETFsForPurchase(etfs []*models.ETF, holdings []*models.Holding) []*models.ETF {
	held := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		held[h.Symbol] = true
	}

	hundred := decimal.NewFromInt(100)
	out := make([]*models.ETF, 0, len(etfs))
	for _, e := range etfs {
		cp := *e
		if !e.DMA20.IsZero() {
			cp.PercentBelowDMA = e.CMP.Sub(e.DMA20).Div(e.DMA20).Mul(hundred)
		}
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		hi, hj := held[out[i].Symbol], held[out[j].Symbol]
		if hi != hj {
			return !hi
		}
		si, sj := !out[i].DMA20.IsZero(), !out[j].DMA20.IsZero()
		if si != sj {
			return si
		}
		return out[i].PercentBelowDMA.LessThan(out[j].PercentBelowDMA)
	})

	for i, e := range out {
		e.Rank = i + 1
	}
	return out
}

// AveragingCandidates returns holdings whose market price has fallen at least
// the averaging threshold below the last buy price. cmps maps symbol to
// current market price; holdings without a quote are skipped.
func (p *Policy) AveragingCandidates(holdings []*models.Holding, cmps map[string]decimal.Decimal) []*models.Holding {
	hundred := decimal.NewFromInt(100)
	var out []*models.Holding
	for _, h := range holdings {
		cmp, ok := cmps[h.Symbol]
		if !ok || h.LastBuyPrice.IsZero() {
			continue
		}
		fallPct := h.LastBuyPrice.Sub(cmp).Div(h.LastBuyPrice).Mul(hundred)
		if fallPct.GreaterThanOrEqual(p.cfg.AveragingThresholdPct) {
			out = append(out, h)
		}
	}
	return out
}

// SectorConcentrationOK reports whether another symbol can be added to the
// sector without breaching the per-sector cap.
func (p *Policy) SectorConcentrationOK(holdings []*models.Holding, sector string) bool {
	distinct := make(map[string]bool)
	for _, h := range holdings {
		if h.Sector == sector {
			distinct[h.Symbol] = true
		}
	}
	return len(distinct) < p.cfg.MaxETFsPerSector
}
