// Package marketdata provides a client for the market data provider API
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.MarketDataClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a provider error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("path", path).Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse tolerates string-typed numerics in quote payloads.
type quoteResponse struct {
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	Price         flexFloat64 `json:"price"`
	Change        flexFloat64 `json:"change"`
	ChangePct     flexFloat64 `json:"changesPercentage"`
	Exchange      string      `json:"exchange"`
	Open          flexFloat64 `json:"open"`
	DayHigh       flexFloat64 `json:"dayHigh"`
	DayLow        flexFloat64 `json:"dayLow"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Volume        flexFloat64 `json:"volume"`
	MarketCap     flexFloat64 `json:"marketCap"`
	YearHigh      flexFloat64 `json:"yearHigh"`
	YearLow       flexFloat64 `json:"yearLow"`
}

func (q *quoteResponse) toModel() models.Quote {
	return models.Quote{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         float64(q.Price),
		Change:        float64(q.Change),
		ChangePct:     float64(q.ChangePct),
		Exchange:      q.Exchange,
		Open:          float64(q.Open),
		DayHigh:       float64(q.DayHigh),
		DayLow:        float64(q.DayLow),
		PreviousClose: float64(q.PreviousClose),
		Volume:        float64(q.Volume),
		MarketCap:     float64(q.MarketCap),
		YearHigh:      float64(q.YearHigh),
		YearLow:       float64(q.YearLow),
	}
}

// Quote retrieves a real-time quote for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var quotes []quoteResponse
	if err := c.get(ctx, "/quote/"+url.PathEscape(symbol), nil, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	q := quotes[0].toModel()
	return &q, nil
}

// BatchQuotes retrieves quotes for multiple symbols in one call.
// Symbols are comma-joined into a single path segment.
func (c *Client) BatchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	joined := strings.Join(symbols, ",")
	var quotes []quoteResponse
	if err := c.get(ctx, "/quote/"+url.PathEscape(joined), nil, &quotes); err != nil {
		return nil, err
	}

	result := make([]models.Quote, len(quotes))
	for i, q := range quotes {
		result[i] = q.toModel()
	}
	return result, nil
}

// intradayBar is one bar from /historical-chart, timestamped to the minute.
type intradayBar struct {
	Date   string      `json:"date"` // "2006-01-02 15:04:05"
	Open   flexFloat64 `json:"open"`
	High   flexFloat64 `json:"high"`
	Low    flexFloat64 `json:"low"`
	Close  flexFloat64 `json:"close"`
	Volume flexFloat64 `json:"volume"`
}

// IntradayChart retrieves intraday bars at the given interval, oldest first.
func (c *Client) IntradayChart(ctx context.Context, interval, symbol string) (*models.PriceHistory, error) {
	if interval == "" || symbol == "" {
		return nil, fmt.Errorf("interval and symbol are required")
	}

	path := fmt.Sprintf("/historical-chart/%s/%s", url.PathEscape(interval), url.PathEscape(symbol))
	var bars []intradayBar
	if err := c.get(ctx, path, nil, &bars); err != nil {
		return nil, err
	}

	history := &models.PriceHistory{
		Symbol: symbol,
		Bars:   make([]models.Bar, 0, len(bars)),
	}
	for _, b := range bars {
		date, err := time.Parse("2006-01-02 15:04:05", b.Date)
		if err != nil {
			continue
		}
		history.Bars = append(history.Bars, models.Bar{
			Date:   date,
			Open:   float64(b.Open),
			High:   float64(b.High),
			Low:    float64(b.Low),
			Close:  float64(b.Close),
			Volume: float64(b.Volume),
		})
	}

	sortBarsAscending(history.Bars)
	return history, nil
}

// dailyHistoryResponse wraps /historical-price-full payloads.
type dailyHistoryResponse struct {
	Symbol     string     `json:"symbol"`
	Historical []dailyBar `json:"historical"`
}

type dailyBar struct {
	Date   string      `json:"date"` // "2006-01-02"
	Open   flexFloat64 `json:"open"`
	High   flexFloat64 `json:"high"`
	Low    flexFloat64 `json:"low"`
	Close  flexFloat64 `json:"close"`
	Volume flexFloat64 `json:"volume"`
}

// DailyHistory retrieves daily bars, oldest first.
func (c *Client) DailyHistory(ctx context.Context, symbol string) (*models.PriceHistory, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var resp dailyHistoryResponse
	if err := c.get(ctx, "/historical-price-full/"+url.PathEscape(symbol), nil, &resp); err != nil {
		return nil, err
	}

	history := &models.PriceHistory{
		Symbol: symbol,
		Bars:   make([]models.Bar, 0, len(resp.Historical)),
	}
	for _, b := range resp.Historical {
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		history.Bars = append(history.Bars, models.Bar{
			Date:   date,
			Open:   float64(b.Open),
			High:   float64(b.High),
			Low:    float64(b.Low),
			Close:  float64(b.Close),
			Volume: float64(b.Volume),
		})
	}

	sortBarsAscending(history.Bars)
	return history, nil
}

func sortBarsAscending(bars []models.Bar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
}
