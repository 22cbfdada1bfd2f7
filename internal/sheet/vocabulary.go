package sheet

import (
	"strings"
	"unicode"

	"github.com/bobmcallan/networth/internal/models"
)

// Vocabulary maps normalized header labels to logical columns.
type Vocabulary map[string]models.Column

// NormalizeLabel folds a header for lookup: lower-case, no whitespace, and
// full-width parentheses folded to ASCII.
func NormalizeLabel(label string) string {
	label = strings.NewReplacer("（", "(", "）", ")").Replace(label)
	var b strings.Builder
	for _, r := range label {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Lookup resolves a raw header label.
func (v Vocabulary) Lookup(label string) (models.Column, bool) {
	c, ok := v[NormalizeLabel(label)]
	return c, ok
}

// With returns a copy extended by alias -> column pairs (e.g. from config).
// Later aliases override built-in ones.
func (v Vocabulary) With(aliases map[string]string) Vocabulary {
	out := make(Vocabulary, len(v)+len(aliases))
	for k, c := range v {
		out[k] = c
	}
	for alias, col := range aliases {
		out[NormalizeLabel(alias)] = models.Column(strings.TrimSpace(col))
	}
	return out
}

// DefaultVocabulary knows the historical header variants of the tracking
// sheet, in both the Chinese labels and snake_case English.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{}
	add := func(col models.Column, labels ...string) {
		for _, l := range labels {
			v[NormalizeLabel(l)] = col
		}
	}

	add(models.ColumnDate, "日期", "date", "period", "period_date")
	add(models.ColumnTrueTotal, "真實總資產(TWD)", "真實總資產", "true_total", "true total")
	add(models.ColumnTotalPlusVehicleDepr, "總資產(含車輛折舊)", "總資產含車輛折舊(TWD)", "total_plus_vehicle_depreciation", "total_plus_dep", "total incl. vehicle depreciation")
	add(models.ColumnTotal, "總資產(TWD)", "總資產", "total", "net_worth", "total(twd)")
	add(models.ColumnPeriodGain, "月增減", "本月增減(TWD)", "period_gain", "monthly_gain", "month_diff")

	add(models.MarketColumn(models.ClassCashBase), "台幣現金(TWD)", "台幣現金", "cash_twd", "cash")
	add(models.MarketColumn(models.ClassCashForeign), "外幣現金(EUR)", "外幣現金", "cash_eur", "foreign_cash")
	add(models.MarketColumn(models.ClassStocks), "股票市值(USD)", "股票市值", "stock_value_usd", "stocks_market", "stock_value")
	add(models.CostColumn(models.ClassStocks), "股票成本(USD)", "股票成本", "stock_cost_usd", "stocks_cost", "stock_cost")
	add(models.MarketColumn(models.ClassFunds), "ETF(EUR)", "ETF市值(EUR)", "etf_eur", "fund_value_eur", "funds_market")
	add(models.CostColumn(models.ClassFunds), "ETF成本(EUR)", "fund_cost_eur", "funds_cost", "etf_cost_eur")
	add(models.MarketColumn(models.ClassRealEstate), "不動產(TWD)", "不動產", "real_estate_twd", "real_estate")
	add(models.MarketColumn(models.ClassCrypto), "加密貨幣(USD)", "加密貨幣", "crypto_usd", "crypto_market", "crypto")
	add(models.CostColumn(models.ClassCrypto), "加密貨幣成本(USD)", "crypto_cost_usd", "crypto_cost")
	add(models.MarketColumn(models.ClassVehicle), "車輛(TWD)", "汽車(TWD)", "vehicle_twd", "vehicle", "car")
	add(models.MarketColumn(models.ClassOther), "其他(TWD)", "其他", "other_twd", "other")

	add(models.RateColumn("USD"), "USDTWD", "usd_rate", "usd/twd", "rate_usd")
	add(models.RateColumn("EUR"), "EURTWD", "eur_rate", "eur/twd", "rate_eur")

	return v
}
