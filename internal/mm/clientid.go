package mm

import (
	"fmt"
	"time"

	"mm-core/pkg/types"
)

const (
	secondsPerDay = int64(86400)
	msPerDay      = secondsPerDay * 1000
)

// clientIDGen hands out sequential client ids for one cancel/replace pass,
// matching the "{symbol}_{day}_{offset}" / "F0{side}{symbol}" formats.
type clientIDGen struct {
	symbol string
	nowMs  int64
	nowS   int64
	offset int64
	far    bool
}

func newClientIDGen(symbol string, far bool) *clientIDGen {
	now := time.Now()
	return &clientIDGen{
		symbol: symbol,
		nowMs:  now.UnixMilli(),
		nowS:   now.Unix(),
		far:    far,
	}
}

// next returns the next client id in the sequence and advances the offset.
func (g *clientIDGen) next(side types.Side) string {
	if g.far {
		offset := (g.nowS*100 + g.offset) % (msPerDay / 10)
		g.offset++
		return fmt.Sprintf("F0%s%s%d", side, g.symbol, offset)
	}
	day := g.nowMs / msPerDay
	offset := (g.nowMs%msPerDay + g.offset) % msPerDay
	g.offset++
	return fmt.Sprintf("%s_%d_%d", g.symbol, day, offset)
}

// isFarClientID reports whether a client id was produced by a far-side
// pass (prefix "F0"), per the reconciliation rule in the failure policy.
func isFarClientID(clientID string) bool {
	return len(clientID) >= 2 && clientID[:2] == "F0"
}
