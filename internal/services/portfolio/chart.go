package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// RenderPriceChart renders a PNG line chart of a symbol's close prices.
// Returns raw PNG bytes.
func RenderPriceChart(history *models.PriceHistory) ([]byte, error) {
	if history == nil || len(history.Bars) < 2 {
		n := 0
		if history != nil {
			n = len(history.Bars)
		}
		return nil, fmt.Errorf("need at least 2 data points, got %d", n)
	}

	xValues := make([]time.Time, len(history.Bars))
	closeY := make([]float64, len(history.Bars))
	for i, b := range history.Bars {
		xValues[i] = b.Date
		closeY[i] = b.Close
	}

	closeSeries := chart.TimeSeries{
		Name: history.Symbol,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	intraday := xValues[len(xValues)-1].Sub(xValues[0]) < 48*time.Hour
	dateFormat := "Jan 02"
	if intraday {
		dateFormat = "15:04"
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price", history.Symbol),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format(dateFormat)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{closeSeries},
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
