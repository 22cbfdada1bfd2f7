package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// goalOptions are the per-request goal parameters shared by the dashboard,
// projection and chart tools.
func goalOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("target",
			mcp.Description("Net-worth goal in the base currency (default: configured goal)"),
		),
		mcp.WithNumber("monthly_expense",
			mcp.Description("Monthly living expense used for the runway KPI"),
		),
		mcp.WithString("preset",
			mcp.Description("Scenario preset: custom, conservative, balanced, aggressive, downturn"),
		),
		mcp.WithString("growth_rates",
			mcp.Description("Per-class annual growth overrides in percent, e.g. 'stocks=8,crypto=-20'"),
		),
		mcp.WithNumber("monthly_contribution",
			mcp.Description("Monthly contribution in the base currency (default: historical average)"),
		),
		mcp.WithNumber("depreciation_rate",
			mcp.Description("Annual depreciation percent for consumption classes such as vehicles"),
		),
		mcp.WithNumber("horizon_years",
			mcp.Description("Projection horizon in years (default: 10)"),
		),
		mcp.WithString("projection_mode",
			mcp.Description("compound (per-class compounding) or seasonal (smoothing over history)"),
		),
	}
}

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the net-worth server version and status. Use this to verify connectivity."),
	)
}

// createGetDashboardTool returns the get_dashboard tool definition
func createGetDashboardTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Reconcile the net-worth sheet and return the latest KPIs (net worth, progress to goal, growth, passive income, runway), asset allocation and currency exposure."),
	}, goalOptions()...)
	return mcp.NewTool("get_dashboard", opts...)
}

// createGetProjectionTool returns the get_projection tool definition
func createGetProjectionTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Project net worth month by month over the horizon and report when the goal is reached."),
		mcp.WithNumber("every",
			mcp.Description("Show every Nth month in the table (default: 12)"),
		),
	}, goalOptions()...)
	return mcp.NewTool("get_projection", opts...)
}

func createGetHistoryTool() mcp.Tool {
	return mcp.NewTool("get_history",
		mcp.WithDescription("List the most recent reconciled periods of the sheet with their effective net worth."),
		mcp.WithNumber("window",
			mcp.Description("Number of most recent periods (0 = all, default: configured window)"),
		),
	)
}

func createGetExposureTool() mcp.Tool {
	return mcp.NewTool("get_exposure",
		mcp.WithDescription("Show the latest allocation by asset class and the exposure per settlement currency."),
	)
}

// createListPresetsTool returns the list_presets tool definition
func createListPresetsTool() mcp.Tool {
	return mcp.NewTool("list_presets",
		mcp.WithDescription("List the scenario presets and their per-class annual growth rates."),
	)
}

// createRefreshDataTool returns the refresh_data tool definition
func createRefreshDataTool() mcp.Tool {
	return mcp.NewTool("refresh_data",
		mcp.WithDescription("Drop the cached sheet snapshot and fetch the export again."),
	)
}
