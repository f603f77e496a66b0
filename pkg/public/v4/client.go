// Package v4 implements the WhiteBIT Public API v4 client. All v4
// endpoints are unauthenticated GETs sharing one 2000 requests per 10
// seconds budget. Unlike v1 and v2, v4 responses carry no envelope.
package v4

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

// Client is the Public API v4 client.
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

// WithLimiter replaces the tier limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// New creates a Public API v4 client. A nil config uses the defaults.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}

	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	if o.limiter == nil {
		limiter, err := ratelimit.NewTier(core.TierPublicV4)
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

// GetMarketInfo retrieves all available spot and futures markets.
func (c *Client) GetMarketInfo(ctx context.Context) ([]Market, error) {
	var markets []Market
	if err := c.get(ctx, core.PathMarketsV4, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetMarketActivity retrieves the 24-hour pricing and volume summary,
// keyed by market name.
func (c *Client) GetMarketActivity(ctx context.Context) (map[string]MarketActivity, error) {
	var activity map[string]MarketActivity
	if err := c.get(ctx, core.PathTickerV4, &activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// GetAssetStatusList retrieves the asset list keyed by ticker.
func (c *Client) GetAssetStatusList(ctx context.Context) (map[string]Asset, error) {
	var assets map[string]Asset
	if err := c.get(ctx, core.PathAssetsV4, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// GetOrderbook retrieves the order book for the requested market.
// A positive limit bounds the number of levels; level sets the price
// aggregation level (1-8, 1 means no aggregation).
func (c *Client) GetOrderbook(ctx context.Context, market string, limit, level int) (*Orderbook, error) {
	if market == "" {
		return nil, core.NewConfigError("market", "must not be empty")
	}
	if level < 0 || level > 8 {
		return nil, core.NewConfigError("level", "must be between 1 and 8")
	}

	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if level > 0 {
		params["level"] = strconv.Itoa(level)
	}

	var book Orderbook
	err := c.get(ctx, fmt.Sprintf(core.PathOrderbookV4, market), &book, apihttp.WithQueryParams(params))
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetDepth retrieves price levels within ±2% of the market last price.
func (c *Client) GetDepth(ctx context.Context, market string) (*Depth, error) {
	if market == "" {
		return nil, core.NewConfigError("market", "must not be empty")
	}

	var depth Depth
	if err := c.get(ctx, fmt.Sprintf(core.PathDepthV4, market), &depth); err != nil {
		return nil, err
	}
	return &depth, nil
}

// GetRecentTrades retrieves recent trades for the requested market,
// optionally filtered by trade type ("buy" or "sell").
func (c *Client) GetRecentTrades(ctx context.Context, market, tradeType string) ([]RecentTrade, error) {
	if market == "" {
		return nil, core.NewConfigError("market", "must not be empty")
	}
	if tradeType != "" && tradeType != "buy" && tradeType != "sell" {
		return nil, core.NewConfigError("tradeType", `must be "buy" or "sell"`)
	}

	var reqOpts []apihttp.RequestOption
	if tradeType != "" {
		reqOpts = append(reqOpts, apihttp.WithQueryParam("type", tradeType))
	}

	var trades []RecentTrade
	err := c.get(ctx, fmt.Sprintf(core.PathTradesV4, market), &trades, reqOpts...)
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// GetFee retrieves deposit and withdrawal fee information keyed by ticker.
func (c *Client) GetFee(ctx context.Context) (map[string]Fee, error) {
	var fees map[string]Fee
	if err := c.get(ctx, core.PathFeeV4, &fees); err != nil {
		return nil, err
	}
	return fees, nil
}

// GetServerTime retrieves the current server time.
func (c *Client) GetServerTime(ctx context.Context) (*ServerTime, error) {
	var t ServerTime
	if err := c.get(ctx, core.PathTimeV4, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Ping checks server availability. The server answers ["pong"].
func (c *Client) Ping(ctx context.Context) (bool, error) {
	var reply []string
	if err := c.get(ctx, core.PathPingV4, &reply); err != nil {
		return false, err
	}
	return len(reply) > 0 && reply[0] == "pong", nil
}

// GetMaintenanceStatus retrieves the platform maintenance status.
func (c *Client) GetMaintenanceStatus(ctx context.Context) (*MaintenanceStatus, error) {
	var status MaintenanceStatus
	if err := c.get(ctx, core.PathMaintenanceV4, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
