package core

import (
	"errors"
	"fmt"
)

// Distributor splits a collected fee across the configured destinations.
type Distributor struct {
	dests []Destination
}

// NewDistributor validates the split table: at least one destination, no
// duplicate accounts, positive shares summing to exactly 10000 bps.
func NewDistributor(dests []Destination) (*Distributor, error) {
	if len(dests) == 0 {
		return nil, errors.New("fee distribution: no destinations")
	}
	seen := make(map[string]bool, len(dests))
	var sum int64
	for _, d := range dests {
		if d.Account == "" {
			return nil, errors.New("fee distribution: destination with empty account")
		}
		if d.Bps <= 0 {
			return nil, fmt.Errorf("fee distribution: destination %s has non-positive share %d", d.Account, d.Bps)
		}
		if seen[d.Account] {
			return nil, fmt.Errorf("fee distribution: duplicate destination %s", d.Account)
		}
		seen[d.Account] = true
		sum += d.Bps
	}
	if sum != bpsDivisor {
		return nil, fmt.Errorf("fee distribution: shares sum to %d bps, want %d", sum, bpsDivisor)
	}
	return &Distributor{dests: dests}, nil
}

// Share is one destination's allocation of a fee.
type Share struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// Split allocates total across the destinations. Every destination except
// the last gets floor(total*bps/10000); the last absorbs the rounding
// remainder, so the shares always sum back to total exactly.
func (d *Distributor) Split(total int64) ([]Share, error) {
	if total < 0 {
		return nil, fmt.Errorf("split fee: negative total %d", total)
	}
	shares := make([]Share, len(d.dests))
	var allocated int64
	for i, dest := range d.dests {
		if i == len(d.dests)-1 {
			shares[i] = Share{Account: dest.Account, Amount: total - allocated}
			break
		}
		amt, err := mulDivBps(total, dest.Bps)
		if err != nil {
			return nil, fmt.Errorf("split fee: %w", err)
		}
		shares[i] = Share{Account: dest.Account, Amount: amt}
		allocated += amt
	}
	return shares, nil
}
