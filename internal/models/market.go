package models

import "time"

// Quote is a real-time quote from the market data provider.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePct     float64 `json:"changesPercentage"`
	Exchange      string  `json:"exchange"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	PreviousClose float64 `json:"previousClose"`
	Volume        float64 `json:"volume"`
	MarketCap     float64 `json:"marketCap"`
	YearHigh      float64 `json:"yearHigh"`
	YearLow       float64 `json:"yearLow"`
}

// Bar is a single OHLCV bar from intraday or daily history.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceHistory is a symbol's bar series, oldest first.
type PriceHistory struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}
