// Package v1 implements the WhiteBIT Public API v1 client. All v1
// endpoints are unauthenticated GETs sharing one 1000 requests per 10
// seconds budget.
package v1

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	apihttp "whitebit/internal/http"
	"whitebit/internal/ratelimit"
	"whitebit/pkg/core"
)

// Client is the Public API v1 client.
type Client struct {
	transport *apihttp.Client
	limiter   *ratelimit.Limiter
	logger    zerolog.Logger
}

// Option configures the client.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	limiter *ratelimit.Limiter
}

// WithLogger sets the logger used by the client and its transport.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLimiter replaces the tier limiter, e.g. to share one budget across
// several client instances of the same tier.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// New creates a Public API v1 client. A nil config uses the defaults.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}

	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	if o.limiter == nil {
		limiter, err := ratelimit.NewTier(core.TierPublicV1)
		if err != nil {
			return nil, err
		}
		o.limiter = limiter
	}

	transport, err := apihttp.NewClient(config, o.logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Client{
		transport: transport,
		limiter:   o.limiter,
		logger:    o.logger,
	}, nil
}

// Close releases the client's transport resources.
func (c *Client) Close() error {
	return c.transport.Close()
}

// get admits the call through the tier limiter, performs the request and
// decodes the body into out.
func (c *Client) get(ctx context.Context, path string, out any, opts ...apihttp.RequestOption) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	resp, err := c.transport.Get(ctx, path, opts...)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return core.ParseAPIError(resp.StatusCode(), resp.Bytes())
	}
	if err := sonic.Unmarshal(resp.Bytes(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetMarketInfo retrieves information about all available markets.
func (c *Client) GetMarketInfo(ctx context.Context) (*MarketInfo, error) {
	var info MarketInfo
	if err := c.get(ctx, core.PathMarketsV1, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetTickers retrieves recent trading activity on all markets.
func (c *Client) GetTickers(ctx context.Context) (*Tickers, error) {
	var wire tickersWire
	if err := c.get(ctx, core.PathTickersV1, &wire); err != nil {
		return nil, err
	}

	out := &Tickers{Envelope: wire.Envelope, Result: make([]Ticker, 0, len(wire.Result))}
	for name, entry := range wire.Result {
		t := entry.Ticker
		t.Name = name
		t.At = entry.At
		out.Result = append(out.Result, t)
	}
	return out, nil
}

// GetSingleMarket retrieves recent trading activity on the requested market.
func (c *Client) GetSingleMarket(ctx context.Context, market string) (*MarketSingleResponse, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	var resp MarketSingleResponse
	err := c.get(ctx, core.PathTickerV1, &resp, apihttp.WithQueryParam("market", market))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetKline retrieves candlestick data for the requested market between
// start and end (Unix seconds) at the given interval.
func (c *Client) GetKline(ctx context.Context, market string, start, end int64, interval string) (*Kline, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	var kline Kline
	err := c.get(ctx, core.PathKlineV1, &kline, apihttp.WithQueryParams(map[string]string{
		"market":   market,
		"start":    strconv.FormatInt(start, 10),
		"end":      strconv.FormatInt(end, 10),
		"interval": interval,
	}))
	if err != nil {
		return nil, err
	}
	return &kline, nil
}

// GetSymbols retrieves the list of available market names.
func (c *Client) GetSymbols(ctx context.Context) (*Symbols, error) {
	var symbols Symbols
	if err := c.get(ctx, core.PathSymbolsV1, &symbols); err != nil {
		return nil, err
	}
	return &symbols, nil
}

// GetOrderDepth retrieves the order book for the requested market.
func (c *Client) GetOrderDepth(ctx context.Context, market string) (*OrderDepth, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	var depth OrderDepth
	if err := c.get(ctx, fmt.Sprintf(core.PathDepthV1, market), &depth); err != nil {
		return nil, err
	}
	return &depth, nil
}

// GetTradeHistory retrieves executed deals for the requested market
// starting after lastID.
func (c *Client) GetTradeHistory(ctx context.Context, market string, lastID int64, limit int) (*TradeHistory, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	params := map[string]string{
		"market": market,
		"lastId": strconv.FormatInt(lastID, 10),
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var history TradeHistory
	err := c.get(ctx, core.PathHistoryV1, &history, apihttp.WithQueryParams(params))
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func validateMarket(market string) error {
	if market == "" {
		return core.NewConfigError("market", "must not be empty")
	}
	return nil
}
