package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/projection"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Networth MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetDashboard implements the get_dashboard tool
func handleGetDashboard(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goal, err := goalFromRequest(svc, request)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid goal: %v", err)), nil
		}

		d, err := svc.GetDashboard(ctx, goal)
		if err != nil {
			logger.Error().Err(err).Msg("Dashboard failed")
			return errorResult(describeError("Dashboard error", err)), nil
		}

		return textResult(formatDashboard(d)), nil
	}
}

// handleGetProjection implements the get_projection tool
func handleGetProjection(svc interfaces.DashboardService, base string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goal, err := goalFromRequest(svc, request)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid goal: %v", err)), nil
		}
		every := request.GetInt("every", 12)
		if every <= 0 {
			every = 12
		}

		p, err := svc.GetProjection(ctx, goal)
		if err != nil {
			logger.Error().Err(err).Msg("Projection failed")
			return errorResult(describeError("Projection error", err)), nil
		}

		return textResult(formatProjection(p, base, every)), nil
	}
}

func handleGetHistory(svc interfaces.DashboardService, defaultWindow int, base string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		window := request.GetInt("window", defaultWindow)

		h, err := svc.GetHistory(ctx, window)
		if err != nil {
			logger.Error().Err(err).Msg("History failed")
			return errorResult(describeError("History error", err)), nil
		}

		return textResult(formatHistory(h, base)), nil
	}
}

func handleGetExposure(svc interfaces.DashboardService, base string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		e, err := svc.GetExposure(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Exposure failed")
			return errorResult(describeError("Exposure error", err)), nil
		}

		return textResult(formatExposure(e, base)), nil
	}
}

// handleListPresets implements the list_presets tool
func handleListPresets() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatPresets(projection.Presets())), nil
	}
}

// handleRefreshData implements the refresh_data tool
func handleRefreshData(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := svc.Refresh(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Refresh failed")
			return errorResult(describeError("Refresh error", err)), nil
		}

		return textResult(formatRefresh(r)), nil
	}
}

// goalFromRequest applies the optional goal arguments over the configured goal.
// Arguments that are absent keep the configured value.
func goalFromRequest(svc interfaces.DashboardService, request mcp.CallToolRequest) (models.GoalConfig, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	var o models.GoalOverrides

	if _, ok := args["target"]; ok {
		v := request.GetFloat("target", 0)
		o.Target = &v
	}
	if _, ok := args["monthly_expense"]; ok {
		v := request.GetFloat("monthly_expense", 0)
		o.MonthlyExpense = &v
	}
	if v := request.GetString("preset", ""); v != "" {
		o.Preset = &v
	}
	if v := request.GetString("growth_rates", ""); v != "" {
		rates, err := models.ParseGrowthRates(v)
		if err != nil {
			return models.GoalConfig{}, err
		}
		o.GrowthRates = rates
	}
	if _, ok := args["monthly_contribution"]; ok {
		v := request.GetFloat("monthly_contribution", 0)
		o.MonthlyContribution = &v
	}
	if _, ok := args["depreciation_rate"]; ok {
		v := request.GetFloat("depreciation_rate", 0)
		o.DepreciationRate = &v
	}
	if _, ok := args["horizon_years"]; ok {
		v := request.GetInt("horizon_years", 0)
		o.HorizonYears = &v
	}
	if v := request.GetString("projection_mode", ""); v != "" {
		o.ProjectionMode = &v
	}

	return svc.BuildGoal(o)
}

// describeError prefixes the error with a hint for the common failure classes.
func describeError(prefix string, err error) string {
	switch {
	case models.IsConfigError(err):
		return fmt.Sprintf("%s (invalid configuration): %v", prefix, err)
	case errors.Is(err, models.ErrNoData):
		return fmt.Sprintf("%s (no usable rows in the sheet): %v", prefix, err)
	case errors.Is(err, models.ErrSourceUnavailable):
		return fmt.Sprintf("%s (sheet could not be fetched): %v", prefix, err)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
