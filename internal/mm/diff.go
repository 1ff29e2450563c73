package mm

import (
	"sort"

	"github.com/shopspring/decimal"

	"mm-core/pkg/types"
)

// diffResult is the outcome of a diff-based reuse pass for one side.
type diffResult struct {
	Keep   []types.CachedOrder // previous orders being reserved as-is
	Cancel []types.CachedOrder // previous orders to cancel
	Emit   []ProspectiveOrder  // new orders to submit
}

// diffSide compares a side's previous cached orders against freshly
// generated prospective orders. When diffRateBps <= 0 every previous
// order is cancelled and every new order emitted (a force refresh); the
// force-refresh counter is checked by the caller through shouldForceRefresh.
// Otherwise prices within diffRateBps of each other reserve the previous
// order in place; anything else is cancelled/emitted. ascending controls
// the side's natural sort order (true for asks, false for bids).
func diffSide(prev []types.CachedOrder, next []ProspectiveOrder, diffRateBps float64, ascending bool) diffResult {
	prev = sortCached(prev, ascending)
	next = sortProspective(next, ascending)

	if diffRateBps <= 0 {
		return diffResult{Cancel: prev, Emit: next}
	}

	threshold := decimal.NewFromFloat(diffRateBps).Mul(bps)
	var res diffResult
	n := len(prev)
	if len(next) < n {
		n = len(next)
	}

	for i := 0; i < n; i++ {
		p := prev[i]
		nOrder := next[i]
		if p.Price.IsZero() {
			res.Cancel = append(res.Cancel, p)
			res.Emit = append(res.Emit, nOrder)
			continue
		}
		ratio := p.Price.Div(nOrder.Price).Sub(decimal.NewFromInt(1)).Abs()
		if ratio.LessThan(threshold) {
			res.Keep = append(res.Keep, p)
		} else {
			res.Cancel = append(res.Cancel, p)
			res.Emit = append(res.Emit, nOrder)
		}
	}
	res.Cancel = append(res.Cancel, prev[n:]...)
	res.Emit = append(res.Emit, next[n:]...)
	return res
}

func sortCached(orders []types.CachedOrder, ascending bool) []types.CachedOrder {
	out := append([]types.CachedOrder{}, orders...)
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out
}

func sortProspective(orders []ProspectiveOrder, ascending bool) []ProspectiveOrder {
	out := append([]ProspectiveOrder{}, orders...)
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out
}

// shouldForceRefresh reports whether the next diff pass must force a full
// cancel/replace rather than reusing previous orders in place.
func shouldForceRefresh(diffRateBps float64, noForceRefreshNum, forceRefreshNum int) bool {
	return diffRateBps <= 0 || noForceRefreshNum >= forceRefreshNum
}
