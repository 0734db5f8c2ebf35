package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuote_ParsesFlexibleNumerics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/AAPL" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q", got)
		}
		// price as string, marketCap as number
		w.Write([]byte(`[{"symbol":"AAPL","name":"Apple Inc.","price":"210.55","previousClose":208.10,"marketCap":3200000000000}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	q, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if q.Price != 210.55 {
		t.Errorf("Price = %v, want 210.55 (string-typed in payload)", q.Price)
	}
	if q.PreviousClose != 208.10 {
		t.Errorf("PreviousClose = %v", q.PreviousClose)
	}
}

func TestQuote_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	if _, err := client.Quote(context.Background(), "UNKNOWN"); err == nil {
		t.Error("expected error for empty quote response")
	}
}

func TestBatchQuotes_CommaJoinsSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/AAPL,TSLA" {
			t.Errorf("path = %s, want comma-joined symbols", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"symbol": "AAPL", "price": 210.0},
			{"symbol": "TSLA", "price": 250.0},
		})
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	quotes, err := client.BatchQuotes(context.Background(), []string{"AAPL", "TSLA"})
	if err != nil {
		t.Fatalf("BatchQuotes returned error: %v", err)
	}
	if len(quotes) != 2 || quotes[1].Symbol != "TSLA" {
		t.Errorf("quotes = %+v", quotes)
	}
}

func TestBatchQuotes_NoSymbols(t *testing.T) {
	client := NewClient("k", WithBaseURL("http://unreachable.invalid"))
	quotes, err := client.BatchQuotes(context.Background(), nil)
	if err != nil || quotes != nil {
		t.Errorf("BatchQuotes(nil) = %v, %v, want nil, nil without a request", quotes, err)
	}
}

func TestDailyHistory_SortsOldestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Provider returns newest first
		w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2026-08-28","close":212.0},
			{"date":"2026-08-27","close":210.0},
			{"date":"2026-08-26","close":208.0}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	history, err := client.DailyHistory(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("DailyHistory returned error: %v", err)
	}
	if len(history.Bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(history.Bars))
	}
	if history.Bars[0].Close != 208.0 || history.Bars[2].Close != 212.0 {
		t.Errorf("bars not oldest-first: %+v", history.Bars)
	}
}

func TestIntradayChart_ParsesTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/historical-chart/1hour/AAPL" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"date":"2026-08-28 15:00:00","close":212.5},
			{"date":"2026-08-28 14:00:00","close":211.8},
			{"date":"not-a-date","close":0}
		]`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	history, err := client.IntradayChart(context.Background(), "1hour", "AAPL")
	if err != nil {
		t.Fatalf("IntradayChart returned error: %v", err)
	}
	// Malformed bar is dropped, remaining sorted ascending
	if len(history.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(history.Bars))
	}
	if !history.Bars[0].Date.Before(history.Bars[1].Date) {
		t.Error("bars not sorted ascending")
	}
}

func TestProviderError_Surfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"Error Message":"Invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Quote(context.Background(), "AAPL")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}
