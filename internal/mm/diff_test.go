package mm

import (
	"testing"

	"mm-core/pkg/types"
)

func TestDiffSideIdempotentWhenPricesUnchanged(t *testing.T) {
	prev := []types.CachedOrder{{Price: dec("100"), ID: "a"}, {Price: dec("101"), ID: "b"}}
	next := []ProspectiveOrder{{Price: dec("100"), Qty: dec("1")}, {Price: dec("101"), Qty: dec("1")}}

	res := diffSide(prev, next, 5, true)

	if len(res.Cancel) != 0 || len(res.Emit) != 0 {
		t.Fatalf("expected no cancels/emits when prices are unchanged, got cancel=%v emit=%v", res.Cancel, res.Emit)
	}
	if len(res.Keep) != 2 {
		t.Fatalf("expected both orders reserved, got %v", res.Keep)
	}
}

func TestDiffSideReplacesDivergedPrices(t *testing.T) {
	prev := []types.CachedOrder{{Price: dec("100"), ID: "a"}}
	next := []ProspectiveOrder{{Price: dec("105"), Qty: dec("1")}}

	res := diffSide(prev, next, 5, true)

	if len(res.Keep) != 0 {
		t.Fatalf("expected no kept orders, got %v", res.Keep)
	}
	if len(res.Cancel) != 1 || res.Cancel[0].ID != "a" {
		t.Fatalf("expected order a cancelled, got %v", res.Cancel)
	}
	if len(res.Emit) != 1 {
		t.Fatalf("expected new order emitted, got %v", res.Emit)
	}
}

func TestDiffSideForceRefreshCancelsAllWhenRateIsZero(t *testing.T) {
	prev := []types.CachedOrder{{Price: dec("100"), ID: "a"}}
	next := []ProspectiveOrder{{Price: dec("100"), Qty: dec("1")}}

	res := diffSide(prev, next, 0, true)

	if len(res.Cancel) != 1 || len(res.Emit) != 1 {
		t.Fatalf("expected force-refresh semantics (cancel all, emit all) when rate<=0, got %+v", res)
	}
}

// TestForceRefreshCadence covers invariant 9: a force refresh occurs
// exactly once every force_refresh_num + 1 passes in steady state.
func TestForceRefreshCadence(t *testing.T) {
	const forceRefreshNum = 3
	noForceRefreshNum := 0
	forcedAt := map[int]bool{}
	for pass := 0; pass < 12; pass++ {
		if shouldForceRefresh(5, noForceRefreshNum, forceRefreshNum) {
			forcedAt[pass] = true
			noForceRefreshNum = 0
		} else {
			noForceRefreshNum++
		}
	}
	// the counter starts at 0, so passes 3,7,11 force (every forceRefreshNum+1 = 4 passes)
	for _, p := range []int{3, 7, 11} {
		if !forcedAt[p] {
			t.Errorf("expected pass %d to force refresh", p)
		}
	}
	if len(forcedAt) != 3 {
		t.Errorf("expected exactly 3 forced passes in 12, got %d: %v", len(forcedAt), forcedAt)
	}
}

func TestDiffSideOverflowTailCancelledOrEmitted(t *testing.T) {
	prev := []types.CachedOrder{{Price: dec("100"), ID: "a"}, {Price: dec("101"), ID: "b"}}
	next := []ProspectiveOrder{{Price: dec("100"), Qty: dec("1")}}

	res := diffSide(prev, next, 5, true)

	if len(res.Keep) != 1 {
		t.Fatalf("expected first pair reserved, got %v", res.Keep)
	}
	if len(res.Cancel) != 1 || res.Cancel[0].ID != "b" {
		t.Fatalf("expected overflow prev order b cancelled, got %v", res.Cancel)
	}
}
