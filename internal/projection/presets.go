package projection

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/networth/internal/models"
)

// Preset is a named bundle of annual growth-rate assumptions.
type Preset struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Rates       map[models.AssetClass]float64 `json:"rates,omitempty"` // nil = leave the baseline untouched
}

// PresetCustom applies no preset rates; only caller overrides change the baseline.
const PresetCustom = "custom"

var registry = map[string]Preset{
	PresetCustom: {
		ID:          PresetCustom,
		Name:        "Custom",
		Description: "Configured baseline plus explicit overrides",
	},
	"conservative": {
		ID:          "conservative",
		Name:        "Conservative",
		Description: "Low equity returns, flat property",
		Rates: map[models.AssetClass]float64{
			models.ClassCashBase:    0.5,
			models.ClassCashForeign: 1,
			models.ClassStocks:      4,
			models.ClassFunds:       4,
			models.ClassRealEstate:  1,
			models.ClassCrypto:      0,
			models.ClassVehicle:     0,
			models.ClassOther:       0,
		},
	},
	"balanced": {
		ID:          "balanced",
		Name:        "Balanced",
		Description: "Long-run historical averages",
		Rates: map[models.AssetClass]float64{
			models.ClassCashBase:    1,
			models.ClassCashForeign: 2,
			models.ClassStocks:      7,
			models.ClassFunds:       6,
			models.ClassRealEstate:  3,
			models.ClassCrypto:      10,
			models.ClassVehicle:     0,
			models.ClassOther:       1,
		},
	},
	"aggressive": {
		ID:          "aggressive",
		Name:        "Aggressive",
		Description: "Strong equity and crypto markets",
		Rates: map[models.AssetClass]float64{
			models.ClassCashBase:    1.5,
			models.ClassCashForeign: 3,
			models.ClassStocks:      10,
			models.ClassFunds:       9,
			models.ClassRealEstate:  5,
			models.ClassCrypto:      25,
			models.ClassVehicle:     0,
			models.ClassOther:       2,
		},
	},
	"downturn": {
		ID:          "downturn",
		Name:        "Downturn",
		Description: "Sustained bear market",
		Rates: map[models.AssetClass]float64{
			models.ClassCashBase:    0.5,
			models.ClassCashForeign: 0,
			models.ClassStocks:      -8,
			models.ClassFunds:       -6,
			models.ClassRealEstate:  -2,
			models.ClassCrypto:      -30,
			models.ClassVehicle:     0,
			models.ClassOther:       0,
		},
	},
}

// Presets lists the registered presets sorted by id.
func Presets() []Preset {
	out := make([]Preset, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupPreset finds a preset by id.
func LookupPreset(id string) (Preset, bool) {
	p, ok := registry[id]
	return p, ok
}

// Resolve layers baseline, preset and overrides, in that order. An empty id
// means custom. The returned map is always a fresh copy.
func Resolve(id string, baseline, overrides map[models.AssetClass]float64) (map[models.AssetClass]float64, error) {
	if id == "" {
		id = PresetCustom
	}
	preset, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPreset, id)
	}

	out := make(map[models.AssetClass]float64, len(models.AllAssetClasses))
	for _, class := range models.AllAssetClasses {
		out[class] = baseline[class]
		if v, ok := preset.Rates[class]; ok {
			out[class] = v
		}
		if v, ok := overrides[class]; ok {
			out[class] = v
		}
	}
	return out, nil
}
