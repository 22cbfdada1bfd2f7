package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/projection"
)

const dateLayout = "2006-01-02"

// formatDashboard formats the dashboard as markdown
func formatDashboard(d *models.Dashboard) string {
	var sb strings.Builder
	base := d.BaseCurrency
	k := d.KPIs

	sb.WriteString(fmt.Sprintf("# Net Worth: %s\n\n", d.AsOf.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("**Net Worth:** %s\n", common.FormatMoney(k.NetWorth, base)))
	if k.DisplayCurrency != "" && k.DisplayCurrency != base {
		sb.WriteString(fmt.Sprintf("**In %s:** %s\n", k.DisplayCurrency, common.FormatMoney(k.NetWorthDisplay, k.DisplayCurrency)))
	}
	sb.WriteString(fmt.Sprintf("**Goal:** %s (%s reached, %s remaining)\n",
		common.FormatMoney(d.Goal.Target, base), common.FormatPercent(k.ProgressPct), common.FormatMoney(k.RemainingToGoal, base)))
	sb.WriteString(fmt.Sprintf("**Change vs previous:** %s (%s)\n", common.FormatMoney(k.PeriodDelta, base), common.FormatPercent(k.GrowthPct)))
	sb.WriteString(fmt.Sprintf("**Weighted growth:** %s p.a.\n", common.FormatPercent(k.WeightedCAGR)))
	sb.WriteString(fmt.Sprintf("**Passive income (4%% rule):** %s / month\n", common.FormatMoney(k.PassiveIncomeMonthly, base)))
	sb.WriteString(fmt.Sprintf("**Runway:** %.1f years\n", k.RunwayYears))
	if d.Cached {
		sb.WriteString(fmt.Sprintf("**Fetched:** %s (cached)\n", d.FetchedAt.Format("2006-01-02 15:04:05")))
	} else {
		sb.WriteString(fmt.Sprintf("**Fetched:** %s\n", d.FetchedAt.Format("2006-01-02 15:04:05")))
	}
	sb.WriteString("\n")

	sb.WriteString(formatAllocationTable(d.Allocation, base))
	sb.WriteString(formatExposureTable(d.Exposure, base))

	if len(d.Projection) > 0 {
		last := d.Projection[len(d.Projection)-1]
		sb.WriteString("## Projection\n\n")
		sb.WriteString(fmt.Sprintf("- Preset: %s, mode: %s, horizon: %d years\n", d.Goal.Preset, modeOrDefault(d.Goal.ProjectionMode), d.Goal.HorizonYears))
		sb.WriteString(fmt.Sprintf("- Monthly contribution: %s\n", common.FormatMoney(d.Contribution, base)))
		sb.WriteString(fmt.Sprintf("- Projected on %s: %s\n\n", last.Date.Format(dateLayout), common.FormatMoney(last.Value, base)))
	}

	sb.WriteString(formatDiagnostics(d.Diagnostics))
	return sb.String()
}

func formatAllocationTable(items []models.Allocation, base string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Allocation\n\n")
	sb.WriteString("| Class | Native | Rate | Value | Weight |\n")
	sb.WriteString("|-------|--------|------|-------|--------|\n")
	for _, a := range items {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.4g | %s | %s |\n",
			a.Label, common.FormatMoney(a.NativeValue, a.Currency), a.Rate,
			common.FormatMoney(a.BaseValue, base), common.FormatPercent(a.Weight*100)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatExposureTable(exposure models.CurrencyExposure, base string) string {
	if len(exposure) == 0 {
		return ""
	}
	codes := make([]string, 0, len(exposure))
	for ccy := range exposure {
		codes = append(codes, ccy)
	}
	sort.Strings(codes)

	var sb strings.Builder
	sb.WriteString("## Currency Exposure\n\n")
	sb.WriteString(fmt.Sprintf("| Currency | Value (%s) |\n", base))
	sb.WriteString("|----------|-------|\n")
	for _, ccy := range codes {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", ccy, common.FormatMoney(exposure[ccy], base)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatDiagnostics(diags []models.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	counts := models.CountDiagnostics(diags)
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	var sb strings.Builder
	sb.WriteString("## Diagnostics\n\n")
	for _, kind := range kinds {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", kind, counts[models.DiagnosticKind(kind)]))
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatProjection formats every Nth projected month plus the final one
func formatProjection(p *interfaces.ProjectionResult, base string, every int) string {
	var sb strings.Builder

	sb.WriteString("# Net Worth Projection\n\n")
	sb.WriteString(fmt.Sprintf("**Start:** %s on %s\n", common.FormatMoney(p.Start.Value, base), p.Start.Date.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("**Preset:** %s (%s)\n", p.Goal.Preset, modeOrDefault(p.Goal.ProjectionMode)))
	sb.WriteString(fmt.Sprintf("**Weighted growth:** %s p.a.\n", common.FormatPercent(p.WeightedCAGR)))
	sb.WriteString(fmt.Sprintf("**Monthly contribution:** %s\n", common.FormatMoney(p.Contribution, base)))
	if p.MonthsToTarget > 0 {
		sb.WriteString(fmt.Sprintf("**Goal %s reached after:** %d months (%.1f years)\n",
			common.FormatMoney(p.Goal.Target, base), p.MonthsToTarget, float64(p.MonthsToTarget)/12))
	} else {
		sb.WriteString(fmt.Sprintf("**Goal %s:** not reached within %d years\n",
			common.FormatMoney(p.Goal.Target, base), p.Goal.HorizonYears))
	}
	sb.WriteString("\n")

	if len(p.Points) == 0 {
		return sb.String()
	}

	sb.WriteString("| Month | Date | Projected |\n")
	sb.WriteString("|-------|------|-----------|\n")
	for i, pt := range p.Points {
		month := i + 1
		if month%every != 0 && i != len(p.Points)-1 {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", month, pt.Date.Format(dateLayout), common.FormatMoney(pt.Value, base)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatHistory(h *interfaces.HistoryResult, base string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# History (%d of %d periods)\n\n", len(h.Periods), h.Total))
	if len(h.Periods) == 0 {
		return sb.String()
	}

	sb.WriteString("| Date | Net Worth | Source | Gain |\n")
	sb.WriteString("|------|-----------|--------|------|\n")
	for _, p := range h.Periods {
		gain := "-"
		if p.HasPeriodGain {
			gain = common.FormatMoney(p.PeriodGain, base)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			p.Date.Format(dateLayout), common.FormatMoney(p.EffectiveValue, base), p.EffectiveColumn, gain))
	}
	sb.WriteString("\n")
	sb.WriteString(formatDiagnostics(h.Diagnostics))
	return sb.String()
}

func formatExposure(e *interfaces.ExposureResult, base string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Exposure as of %s\n\n", e.AsOf))
	sb.WriteString(formatAllocationTable(e.Allocation, base))
	sb.WriteString(formatExposureTable(e.Exposure, base))
	return sb.String()
}

// formatPresets lists presets with their rates in canonical class order
func formatPresets(presets []projection.Preset) string {
	var sb strings.Builder
	sb.WriteString("# Scenario Presets\n\n")
	for _, p := range presets {
		sb.WriteString(fmt.Sprintf("## %s (`%s`)\n\n%s\n\n", p.Name, p.ID, p.Description))
		if p.Rates == nil {
			continue
		}
		for _, class := range models.AllAssetClasses {
			if v, ok := p.Rates[class]; ok {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", class.Label(), common.FormatPercent(v)))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatRefresh(r *interfaces.RefreshResult) string {
	var sb strings.Builder
	sb.WriteString("# Data Refreshed\n\n")
	sb.WriteString(fmt.Sprintf("**Fetched:** %s\n", r.FetchedAt))
	sb.WriteString(fmt.Sprintf("**Periods:** %d\n", r.Periods))

	kinds := make([]string, 0, len(r.Diagnostics))
	for kind := range r.Diagnostics {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", kind, r.Diagnostics[models.DiagnosticKind(kind)]))
	}
	return sb.String()
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return models.ProjectionCompound
	}
	return mode
}
