/*

Protocol presets: per-protocol defaults (tick spacing, conventional decimal
counts for the two legs) applied to a position configuration. Presets select
default values only; all behavior lives in the position engine.

*/

package protocol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rangeworks/clb/internal/position"
)

// Preset holds protocol-specific defaults for constructing a position.
type Preset struct {
	Name        string `json:"name"`
	TickSpacing int    `json:"tick_spacing"`
	Decimals0   int    `json:"decimals0"` // conventional base-leg precision
	Decimals1   int    `json:"decimals1"` // conventional quote-leg precision
}

var presets = map[string]Preset{
	// Uniswap v3, 0.3% fee tier.
	"uniswap-v3": {Name: "uniswap-v3", TickSpacing: 60, Decimals0: 18, Decimals1: 6},
	// Uniswap v3, 0.05% fee tier (stable-adjacent pairs).
	"uniswap-v3-005": {Name: "uniswap-v3-005", TickSpacing: 10, Decimals0: 18, Decimals1: 6},
	// PancakeSwap v3, 0.25% fee tier.
	"pancake-v3": {Name: "pancake-v3", TickSpacing: 50, Decimals0: 18, Decimals1: 18},
	// Aerodrome Slipstream concentrated pools.
	"aerodrome": {Name: "aerodrome", TickSpacing: 100, Decimals0: 18, Decimals1: 6},
}

// ByName looks up a preset; the name is case-insensitive.
func ByName(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown protocol preset %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the known preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPosition applies the preset's defaults to any zero-valued fields of cfg
// and constructs the position. Explicit values in cfg win over the preset.
func (p Preset) NewPosition(cfg position.Config) (*position.Position, error) {
	if cfg.TickSpacing == 0 {
		cfg.TickSpacing = p.TickSpacing
	}
	if cfg.Token0.Decimals == 0 {
		cfg.Token0.Decimals = p.Decimals0
	}
	if cfg.Token1.Decimals == 0 {
		cfg.Token1.Decimals = p.Decimals1
	}
	return position.New(cfg)
}
