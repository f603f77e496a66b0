// Package v2 implements the WhiteBIT Public API v2 client. All v2
// endpoints are unauthenticated GETs sharing one 1000 requests per 10
// seconds budget.
package v2

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	apihttp "whitebit/internal/http"
	"whitebit/internal/ratelimit"
	"whitebit/pkg/core"
)

// Client is the Public API v2 client.
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

// New creates a Public API v2 client. A nil config uses the defaults.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}

	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	if o.limiter == nil {
		limiter, err := ratelimit.NewTier(core.TierPublicV2)
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

// GetMarketInfo retrieves information about all available markets.
func (c *Client) GetMarketInfo(ctx context.Context) (*MarketInfo, error) {
	var info MarketInfo
	if err := c.get(ctx, core.PathMarketsV2, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetTickers retrieves recent trading activity on all markets.
func (c *Client) GetTickers(ctx context.Context) (*Tickers, error) {
	var tickers Tickers
	if err := c.get(ctx, core.PathTickerV2, &tickers); err != nil {
		return nil, err
	}
	return &tickers, nil
}

// GetRecentTrades retrieves recent trades for the requested market.
func (c *Client) GetRecentTrades(ctx context.Context, market string) (*RecentTrades, error) {
	if market == "" {
		return nil, core.NewConfigError("market", "must not be empty")
	}

	var trades RecentTrades
	if err := c.get(ctx, fmt.Sprintf(core.PathTradesV2, market), &trades); err != nil {
		return nil, err
	}
	return &trades, nil
}

// GetFee retrieves the default trading fees.
func (c *Client) GetFee(ctx context.Context) (*FeeResponse, error) {
	var fee FeeResponse
	if err := c.get(ctx, core.PathFeeV2, &fee); err != nil {
		return nil, err
	}
	return &fee, nil
}

// GetAssetStatusList retrieves the asset list with deposit and
// withdrawal availability.
func (c *Client) GetAssetStatusList(ctx context.Context) (*AssetStatus, error) {
	var wire assetStatusWire
	if err := c.get(ctx, core.PathAssetsV2, &wire); err != nil {
		return nil, err
	}

	out := &AssetStatus{Envelope: wire.Envelope, Result: make([]Asset, 0, len(wire.Result))}
	for name, asset := range wire.Result {
		asset.AssetName = name
		out.Result = append(out.Result, asset)
	}
	return out, nil
}

// GetOrderDepth retrieves the order book for the requested market.
func (c *Client) GetOrderDepth(ctx context.Context, market string) (*OrderDepth, error) {
	if market == "" {
		return nil, core.NewConfigError("market", "must not be empty")
	}

	var wire orderDepthWire
	if err := c.get(ctx, fmt.Sprintf(core.PathDepthV2, market), &wire); err != nil {
		return nil, err
	}
	return &wire.Result, nil
}
