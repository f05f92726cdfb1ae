package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lutrii/payments/internal/model"
)

// FeeConfig holds the per-tier basis-point rates and the absolute fee
// bounds, all in settlement-token minor units.
type FeeConfig struct {
	Tiers  map[string]int64 `yaml:"tiers"`
	MinFee int64            `yaml:"min_fee"`
	MaxFee int64            `yaml:"max_fee"`
}

// Destination is one leg of the fee distribution.
type Destination struct {
	Account string `yaml:"account"`
	Bps     int64  `yaml:"bps"`
}

// PrepayConfig prices the burn-funded annual prepayment.
type PrepayConfig struct {
	FractionBps  int64         `yaml:"fraction_bps"`
	CoverageDays int           `yaml:"coverage_days"`
	OracleMaxAge time.Duration `yaml:"oracle_max_age"`
}

// UnmarshalYAML accepts Go duration strings ("5m", "90s") for
// oracle_max_age. Keys absent from the document keep their current values.
func (c *PrepayConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		FractionBps  int64  `yaml:"fraction_bps"`
		CoverageDays int    `yaml:"coverage_days"`
		OracleMaxAge string `yaml:"oracle_max_age"`
	}{
		FractionBps:  c.FractionBps,
		CoverageDays: c.CoverageDays,
		OracleMaxAge: c.OracleMaxAge.String(),
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	d, err := time.ParseDuration(raw.OracleMaxAge)
	if err != nil {
		return fmt.Errorf("oracle_max_age: %w", err)
	}
	c.FractionBps = raw.FractionBps
	c.CoverageDays = raw.CoverageDays
	c.OracleMaxAge = d
	return nil
}

// Policy is the operator-tunable economic configuration, loaded from a YAML
// file at startup.
type Policy struct {
	Fees         FeeConfig     `yaml:"fees"`
	SlippageBps  int64         `yaml:"slippage_bps"`
	Prepay       PrepayConfig  `yaml:"prepay"`
	Distribution []Destination `yaml:"distribution"`
}

func DefaultPolicy() Policy {
	return Policy{
		Fees: FeeConfig{
			Tiers: map[string]int64{
				model.TierVerified:  250,
				model.TierCommunity: 150,
				model.TierPremium:   50,
			},
			MinFee: 10_000,
			MaxFee: 10_000_000,
		},
		SlippageBps: 100,
		Prepay: PrepayConfig{
			FractionBps:  5_000,
			CoverageDays: 365,
			OracleMaxAge: 5 * time.Minute,
		},
		Distribution: []Destination{
			{Account: "platform-treasury", Bps: 10_000},
		},
	}
}

// LoadPolicy reads a YAML policy file layered over the defaults. An empty
// path returns the defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

func (p Policy) Validate() error {
	if len(p.Fees.Tiers) == 0 {
		return fmt.Errorf("no fee tiers configured")
	}
	for tier, bps := range p.Fees.Tiers {
		if bps < 0 || bps > bpsDivisor {
			return fmt.Errorf("fee tier %s: rate %d bps out of range", tier, bps)
		}
	}
	if p.Fees.MinFee < 0 {
		return fmt.Errorf("min_fee %d is negative", p.Fees.MinFee)
	}
	if p.Fees.MaxFee > 0 && p.Fees.MaxFee < p.Fees.MinFee {
		return fmt.Errorf("max_fee %d below min_fee %d", p.Fees.MaxFee, p.Fees.MinFee)
	}
	if p.SlippageBps < 0 || p.SlippageBps >= bpsDivisor {
		return fmt.Errorf("slippage %d bps out of range", p.SlippageBps)
	}
	if p.Prepay.FractionBps <= 0 || p.Prepay.FractionBps > bpsDivisor {
		return fmt.Errorf("prepay fraction %d bps out of range", p.Prepay.FractionBps)
	}
	if p.Prepay.CoverageDays <= 0 {
		return fmt.Errorf("prepay coverage of %d days", p.Prepay.CoverageDays)
	}
	if len(p.Distribution) == 0 {
		return fmt.Errorf("no fee distribution destinations")
	}
	return nil
}
