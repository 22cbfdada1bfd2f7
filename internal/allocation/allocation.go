// Package allocation converts a period's holdings to base currency and
// derives portfolio weights and currency exposure.
package allocation

import (
	"math"
	"strings"

	"github.com/bobmcallan/networth/internal/models"
)

// Options configures Calculate.
type Options struct {
	BaseCurrency    string
	ClassCurrencies map[models.AssetClass]string

	// UnallocatedClass receives weight 1 when the period has a positive
	// effective value but no class values. Defaults to ClassOther.
	UnallocatedClass models.AssetClass
}

// Result is the allocation of one period.
type Result struct {
	Items    []models.Allocation // every class, in canonical order
	Exposure models.CurrencyExposure
	Total    float64 // denominator used for weights

	// Unallocated is set when no class carried a value and the whole
	// effective value was assigned to Options.UnallocatedClass.
	Unallocated bool
}

// Calculate values each class of p in base currency. Weights are taken
// against the period's effective value and renormalized to sum to 1 when the
// class sum drifts from it. A non-positive effective value is replaced by 1,
// which yields all-zero weights. A positive effective value with no class data
// is carried entirely by the unallocated class so the weights still sum to 1.
func Calculate(p models.Period, opts Options) Result {
	base := strings.ToUpper(opts.BaseCurrency)
	currencies := opts.ClassCurrencies
	if currencies == nil {
		currencies = models.DefaultClassCurrencies()
	}

	total := p.EffectiveValue
	if total <= 0 {
		total = 1
	}

	res := Result{
		Items:    make([]models.Allocation, 0, len(models.AllAssetClasses)),
		Exposure: make(models.CurrencyExposure),
		Total:    total,
	}

	var sum float64
	for _, class := range models.AllAssetClasses {
		ccy := strings.ToUpper(currencies[class])
		if ccy == "" {
			ccy = base
		}
		rate := p.RateFor(ccy, base).Value
		native := p.Asset(class)
		value := native * rate

		item := models.Allocation{
			Class:       class,
			Label:       class.Label(),
			Currency:    ccy,
			NativeValue: native,
			Rate:        rate,
			BaseValue:   value,
		}
		if p.EffectiveValue > 0 {
			item.Weight = value / total
		}
		sum += item.Weight
		res.Items = append(res.Items, item)

		if value > 0 {
			res.Exposure[ccy] += value
		}
	}

	if sum == 0 && p.EffectiveValue > 0 {
		fallback := opts.UnallocatedClass
		if !fallback.Valid() {
			fallback = models.ClassOther
		}
		for i := range res.Items {
			if res.Items[i].Class == fallback {
				res.Items[i].Weight = 1
			}
		}
		res.Unallocated = true
		return res
	}

	if sum > 0 && sum != 1 {
		for i := range res.Items {
			res.Items[i].Weight = clamp01(res.Items[i].Weight / sum)
		}
	}

	return res
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Weights returns the class -> weight map.
func (r Result) Weights() map[models.AssetClass]float64 {
	out := make(map[models.AssetClass]float64, len(r.Items))
	for _, it := range r.Items {
		out[it.Class] = it.Weight
	}
	return out
}

// WeightSum is the sum of all class weights.
func (r Result) WeightSum() float64 {
	var s float64
	for _, it := range r.Items {
		s += it.Weight
	}
	return s
}

// NonZero drops classes with no value, for pie-style display lists.
func (r Result) NonZero() []models.Allocation {
	out := make([]models.Allocation, 0, len(r.Items))
	for _, it := range r.Items {
		if it.BaseValue > 0 {
			out = append(out, it)
		}
	}
	return out
}

// Item returns the allocation for one class.
func (r Result) Item(c models.AssetClass) (models.Allocation, bool) {
	for _, it := range r.Items {
		if it.Class == c {
			return it, true
		}
	}
	return models.Allocation{}, false
}

// WeightedRate is the allocation-weighted average of annual growth rates,
// in percent. Classes missing from rates contribute 0.
func WeightedRate(weights map[models.AssetClass]float64, rates map[models.AssetClass]float64) float64 {
	var out float64
	for _, class := range models.AllAssetClasses {
		out += weights[class] * rates[class]
	}
	return out
}

// ConvertTo expresses a base-currency amount in another currency using the
// period's rates. ok is false when no usable rate exists.
func ConvertTo(amount float64, currency, base string, p models.Period) (float64, float64, bool) {
	currency, base = strings.ToUpper(currency), strings.ToUpper(base)
	rate := p.RateFor(currency, base).Value
	if rate <= 0 {
		return 0, 0, false
	}
	return amount / rate, rate, true
}
