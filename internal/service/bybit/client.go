package bybit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/domain/repository"
	xhttp "ScalpSignal/pkg/http"

	"github.com/shopspring/decimal"
)

const (
	klinePath = "/v5/market/kline"
	timePath  = "/v5/market/time"

	defaultFetchTimeout = 10 * time.Second
	defaultPingTimeout  = 3 * time.Second
	maxLimit            = 1000
)

// Option configures Client.
type Option func(*Client)

// WithCategory sets the product category (spot, linear, inverse).
func WithCategory(category string) Option {
	return func(c *Client) {
		if category != "" {
			c.category = category
		}
	}
}

// WithFetchTimeout bounds each kline request.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithPingTimeout bounds each latency probe.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pingTimeout = d
		}
	}
}

// Client reads public market data from the Bybit v5 REST API.
type Client struct {
	http         *xhttp.Client
	category     string
	fetchTimeout time.Duration
	pingTimeout  time.Duration

	mu       sync.RWMutex
	endpoint string
}

var _ repository.MarketData = (*Client)(nil)

// New creates a client bound to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		category:     "spot",
		fetchTimeout: defaultFetchTimeout,
		pingTimeout:  defaultPingTimeout,
		endpoint:     strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	// per-request contexts carry the real deadlines
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.fetchTimeout + c.pingTimeout))
	return c
}

// SetEndpoint switches subsequent requests to baseURL.
func (c *Client) SetEndpoint(baseURL string) {
	c.mu.Lock()
	c.endpoint = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
}

func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

type klineEnvelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string     `json:"category"`
		Symbol   string     `json:"symbol"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

// FetchCandles returns up to limit candles, oldest first.
func (c *Client) FetchCandles(ctx context.Context, symbol string, interval repository.Interval, limit int) (models.CandleSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("bybit: symbol is required")
	}
	if limit < 1 {
		return nil, fmt.Errorf("bybit: limit must be >= 1, got %d", limit)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if !repository.IsValidInterval(interval) {
		return nil, fmt.Errorf("bybit: unsupported interval %q", interval)
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	var env klineEnvelope
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.Endpoint() + klinePath,
		QueryParams: map[string][]string{
			"category": {c.category},
			"symbol":   {symbol},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("bybit: fetch klines: %w", err)
	}
	if env.RetCode != 0 {
		return nil, fmt.Errorf("bybit: retCode %d: %s", env.RetCode, env.RetMsg)
	}

	series, err := parseKlines(env.Result.List)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// MeasureLatency times a server-time request against endpoint.
// Any non-200 status is a failure.
func (c *Client) MeasureLatency(ctx context.Context, endpoint string) (time.Duration, error) {
	if endpoint == "" {
		endpoint = c.Endpoint()
	}
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    strings.TrimRight(endpoint, "/") + timePath,
	})
	if err != nil {
		return 0, fmt.Errorf("bybit: ping %s: %w", endpoint, err)
	}
	elapsed := time.Since(start)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bybit: ping %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return elapsed, nil
}

// parseKlines converts newest-first wire rows into a chronological series.
//
// Bybit kline array layout:
//
//	[0] startTime (ms)
//	[1] openPrice
//	[2] highPrice
//	[3] lowPrice
//	[4] closePrice
//	[5] volume   (base coin)
//	[6] turnover (quote coin, optional)
func parseKlines(rows [][]string) (models.CandleSeries, error) {
	out := make(models.CandleSeries, len(rows))
	for i, r := range rows {
		if len(r) < 6 {
			return nil, fmt.Errorf("bybit: kline[%d] has %d fields, want >=6", i, len(r))
		}
		ts, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit: kline[%d] start time: %w", i, err)
		}

		var vals [6]float64
		for j := 1; j < len(r) && j <= 6; j++ {
			d, err := decimal.NewFromString(r[j])
			if err != nil {
				return nil, fmt.Errorf("bybit: kline[%d] field %d: %w", i, j, err)
			}
			vals[j-1] = d.InexactFloat64()
		}

		// reverse while filling: rows arrive newest first
		out[len(rows)-1-i] = models.Candle{
			Timestamp: time.UnixMilli(ts).UTC(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
			Turnover:  vals[5],
		}
	}
	return out, nil
}
