package portfolio

import (
	"bytes"
	"testing"
	"time"

	"github.com/bobmcallan/tradedesk/internal/models"
)

func TestRenderPriceChart_ProducesPNG(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	history := &models.PriceHistory{
		Symbol: "AAPL",
		Bars: []models.Bar{
			{Date: base, Close: 200},
			{Date: base.AddDate(0, 0, 1), Close: 205},
			{Date: base.AddDate(0, 0, 2), Close: 202},
		},
	}

	png, err := RenderPriceChart(history)
	if err != nil {
		t.Fatalf("RenderPriceChart returned error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output does not start with PNG magic bytes")
	}
}

func TestRenderPriceChart_TooFewPoints(t *testing.T) {
	history := &models.PriceHistory{
		Symbol: "AAPL",
		Bars:   []models.Bar{{Date: time.Now(), Close: 200}},
	}
	if _, err := RenderPriceChart(history); err == nil {
		t.Error("expected error for single data point")
	}
	if _, err := RenderPriceChart(nil); err == nil {
		t.Error("expected error for nil history")
	}
}
