package chain

import (
	"math/big"
	"time"
)

// ShortenAddress renders a hex address as 0x1234…5678 for display.
func ShortenAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

// FormatEpochDate converts an on-chain unix timestamp to a calendar date in
// UTC. Zero and nil render empty.
func FormatEpochDate(epoch *big.Int) string {
	if epoch == nil || epoch.Sign() == 0 {
		return ""
	}
	return time.Unix(epoch.Int64(), 0).UTC().Format("2006-01-02")
}
