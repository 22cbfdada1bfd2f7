package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/networth/internal/models"
)

// RenderNetWorthChart renders a PNG line chart of net worth.
// Series: history (blue solid), forecast (orange dashed, starting at the last
// history point) and the goal (gray dotted). Returns raw PNG bytes.
func RenderNetWorthChart(history []models.SeriesPoint, forecast []models.ProjectionPoint, target float64) ([]byte, error) {
	if len(history)+len(forecast) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(history)+len(forecast))
	}

	var series []chart.Series

	if len(history) >= 2 {
		xs := make([]time.Time, len(history))
		ys := make([]float64, len(history))
		for i, p := range history {
			xs[i] = p.Date
			ys[i] = p.Value
		}
		series = append(series, chart.TimeSeries{
			Name: "Net Worth",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.5,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	var first, last time.Time
	if len(history) > 0 {
		first, last = history[0].Date, history[len(history)-1].Date
	}

	if len(forecast) > 0 {
		xs := make([]time.Time, 0, len(forecast)+1)
		ys := make([]float64, 0, len(forecast)+1)
		if len(history) > 0 {
			xs = append(xs, history[len(history)-1].Date)
			ys = append(ys, history[len(history)-1].Value)
		}
		for _, p := range forecast {
			xs = append(xs, p.Date)
			ys = append(ys, p.Value)
		}
		if len(xs) >= 2 {
			series = append(series, chart.TimeSeries{
				Name: "Forecast",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("f97316"), // orange-500
					StrokeWidth:     2,
					StrokeDashArray: []float64{6.0, 4.0},
				},
				XValues: xs,
				YValues: ys,
			})
		}
		if first.IsZero() {
			first = forecast[0].Date
		}
		last = forecast[len(forecast)-1].Date
	}

	if target > 0 && !first.IsZero() && last.After(first) {
		series = append(series, chart.TimeSeries{
			Name: "Goal",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{2.0, 3.0},
			},
			XValues: []time.Time{first, last},
			YValues: []float64{target, target},
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no drawable series")
	}

	graph := chart.Chart{
		Title:  "Net Worth",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1fM", f/1e6)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
