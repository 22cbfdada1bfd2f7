package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/projection"
)

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds with build information and uptime.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	info := common.VersionInfo()
	if !s.app.StartupTime.IsZero() {
		info["uptime"] = time.Since(s.app.StartupTime).Round(time.Second).String()
	}
	WriteJSON(w, http.StatusOK, info)
}

// dashboardDisplay carries pre-formatted amounts for a front end.
type dashboardDisplay struct {
	NetWorth        string `json:"net_worth"`
	NetWorthDisplay string `json:"net_worth_display,omitempty"`
	Target          string `json:"target"`
	Remaining       string `json:"remaining_to_goal"`
	PeriodDelta     string `json:"period_delta"`
	PassiveIncome   string `json:"passive_income_monthly"`
	Contribution    string `json:"monthly_contribution"`
}

type dashboardResponse struct {
	*models.Dashboard
	Display dashboardDisplay `json:"display"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	goal, ok := s.goalFromQuery(w, r.URL.Query())
	if !ok {
		return
	}

	d, err := s.app.DashboardService.GetDashboard(r.Context(), goal)
	if err != nil {
		s.logServiceError(r, err, "Dashboard failed")
		WriteServiceError(w, err)
		return
	}

	base := d.BaseCurrency
	display := dashboardDisplay{
		NetWorth:      common.FormatMoney(d.KPIs.NetWorth, base),
		Target:        common.FormatMoney(d.Goal.Target, base),
		Remaining:     common.FormatMoney(d.KPIs.RemainingToGoal, base),
		PeriodDelta:   common.FormatMoney(d.KPIs.PeriodDelta, base),
		PassiveIncome: common.FormatMoney(d.KPIs.PassiveIncomeMonthly, base),
		Contribution:  common.FormatMoney(d.Contribution, base),
	}
	if d.KPIs.DisplayCurrency != "" {
		display.NetWorthDisplay = common.FormatMoney(d.KPIs.NetWorthDisplay, d.KPIs.DisplayCurrency)
	}

	WriteJSON(w, http.StatusOK, dashboardResponse{Dashboard: d, Display: display})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	goal, ok := s.goalFromQuery(w, r.URL.Query())
	if !ok {
		return
	}

	p, err := s.app.DashboardService.GetProjection(r.Context(), goal)
	if err != nil {
		s.logServiceError(r, err, "Projection failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handleHistory serves the raw-table window: ?window=K, "all" or 0 for every period.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	window := s.app.Config.Reconcile.HistoryWindow
	if raw := strings.TrimSpace(r.URL.Query().Get("window")); raw != "" {
		if raw == "all" {
			window = 0
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "window must be a non-negative integer or \"all\"")
				return
			}
			window = n
		}
	}

	h, err := s.app.DashboardService.GetHistory(r.Context(), window)
	if err != nil {
		s.logServiceError(r, err, "History failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h)
}

func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	e, err := s.app.DashboardService.GetExposure(r.Context())
	if err != nil {
		s.logServiceError(r, err, "Exposure failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"presets": projection.Presets()})
}

// handleChart renders history and forecast as PNG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	goal, ok := s.goalFromQuery(w, r.URL.Query())
	if !ok {
		return
	}

	png, err := s.app.DashboardService.RenderChart(r.Context(), goal)
	if err != nil {
		s.logServiceError(r, err, "Chart failed")
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleRefresh drops the cached snapshot and reloads.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	res, err := s.app.DashboardService.Refresh(r.Context())
	if err != nil {
		s.logServiceError(r, err, "Refresh failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// goalFromQuery builds the request goal. A malformed value writes 400 and
// returns false.
func (s *Server) goalFromQuery(w http.ResponseWriter, q url.Values) (models.GoalConfig, bool) {
	o, err := ParseGoalOverrides(q)
	if err == nil {
		var goal models.GoalConfig
		goal, err = s.app.DashboardService.BuildGoal(o)
		if err == nil {
			return goal, true
		}
	}
	WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidConfig)
	return models.GoalConfig{}, false
}

// ParseGoalOverrides reads goal overrides from query parameters:
// goal, expense, preset, rates ("stocks=8,crypto=-20"), rate.<class>,
// contribution, depreciation, horizon and mode. Absent parameters keep the
// configured value.
func ParseGoalOverrides(q url.Values) (models.GoalOverrides, error) {
	var o models.GoalOverrides
	var err error

	if o.Target, err = floatParam(q, "goal", models.ErrInvalidGoal); err != nil {
		return o, err
	}
	if o.MonthlyExpense, err = floatParam(q, "expense", models.ErrInvalidRate); err != nil {
		return o, err
	}
	if o.MonthlyContribution, err = floatParam(q, "contribution", models.ErrInvalidRate); err != nil {
		return o, err
	}
	if o.DepreciationRate, err = floatParam(q, "depreciation", models.ErrInvalidRate); err != nil {
		return o, err
	}
	if raw := strings.TrimSpace(q.Get("horizon")); raw != "" {
		n, perr := strconv.Atoi(raw)
		if perr != nil {
			return o, fmt.Errorf("%w: horizon %q", models.ErrInvalidHorizon, raw)
		}
		o.HorizonYears = &n
	}
	if v := strings.TrimSpace(q.Get("preset")); v != "" {
		o.Preset = &v
	}
	if v := strings.TrimSpace(q.Get("mode")); v != "" {
		o.ProjectionMode = &v
	}

	if raw := q.Get("rates"); raw != "" {
		if o.GrowthRates, err = models.ParseGrowthRates(raw); err != nil {
			return o, err
		}
	}
	for key, values := range q {
		name, ok := strings.CutPrefix(key, "rate.")
		if !ok || len(values) == 0 {
			continue
		}
		rates, perr := models.ParseGrowthRates(name + "=" + values[len(values)-1])
		if perr != nil {
			return o, perr
		}
		if o.GrowthRates == nil {
			o.GrowthRates = make(map[models.AssetClass]float64)
		}
		for class, v := range rates {
			o.GrowthRates[class] = v
		}
	}

	return o, nil
}

func floatParam(q url.Values, key string, sentinel error) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s %q is not a number", sentinel, key, raw)
	}
	return &v, nil
}

func (s *Server) logServiceError(r *http.Request, err error, msg string) {
	event := s.logger.Error()
	if models.IsConfigError(err) {
		event = s.logger.Info()
	}
	event.Err(err).
		Str("path", r.URL.Path).
		Str("correlation_id", common.CorrelationIDFromContext(r.Context())).
		Msg(msg)
}
