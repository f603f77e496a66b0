// Package wsapi exposes the public WhiteBIT websocket API: one-shot
// queries (ping, time, last price, candles, depth) and the subscribe
// streams the endpoint publishes.
package wsapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"whitebit/internal/ws"
	"whitebit/pkg/core"
)

// Request method names of the public websocket API.
const (
	methodPing             = "ping"
	methodTime             = "time"
	methodCandlesRequest   = "candles_request"
	methodLastPriceRequest = "lastprice_request"
	methodMarketRequest    = "market_request"
	methodMarketTodayQuery = "marketToday_query"
	methodTradesRequest    = "trades_request"
	methodDepthRequest     = "depth_request"
)

// Subscription method names. Each subscribe has a matching update
// stream and unsubscribe.
const (
	MethodCandlesSubscribe     = "candles_subscribe"
	MethodCandlesUpdate        = "candles_update"
	MethodCandlesUnsubscribe   = "candles_unsubscribe"
	MethodLastPriceSubscribe   = "lastprice_subscribe"
	MethodLastPriceUpdate      = "lastprice_update"
	MethodLastPriceUnsubscribe = "lastprice_unsubscribe"
	MethodMarketSubscribe      = "market_subscribe"
	MethodMarketUpdate         = "market_update"
	MethodMarketUnsubscribe    = "market_unsubscribe"
	MethodTradesSubscribe      = "trades_subscribe"
	MethodTradesUpdate         = "trades_update"
	MethodTradesUnsubscribe    = "trades_unsubscribe"
	MethodDepthSubscribe       = "depth_subscribe"
	MethodDepthUpdate          = "depth_update"
	MethodDepthUnsubscribe     = "depth_unsubscribe"
)

// Client is the public websocket API client.
type Client struct {
	conn   *ws.Conn
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client, *ws.Config)

// WithLogger sets the client and connection logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client, _ *ws.Config) { c.logger = logger }
}

// WithReconnect enables automatic reconnection with exponential backoff.
func WithReconnect() Option {
	return func(_ *Client, cfg *ws.Config) { cfg.ReconnectEnabled = true }
}

// WithBufferSize sets the per-stream update buffer capacity.
func WithBufferSize(size int) Option {
	return func(_ *Client, cfg *ws.Config) { cfg.BufferSize = size }
}

// New builds a client for the given endpoint URL; an empty URL selects
// the production endpoint. The connection is dialed by Connect.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = core.BaseWSURL
	}

	cfg := ws.Config{URL: url}
	c := &Client{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c, &cfg)
	}

	c.conn = ws.NewConn(cfg)
	c.conn.SetLogger(c.logger)
	return c
}

// Connect dials the endpoint.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// IsConnected reports whether the connection is live.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	raw, err := c.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return &core.SerializationError{Err: err}
	}
	return nil
}

// Ping checks endpoint liveness; the endpoint answers "pong".
func (c *Client) Ping(ctx context.Context) (string, error) {
	var out string
	if err := c.call(ctx, methodPing, []any{}, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Time returns the endpoint's clock as epoch seconds.
func (c *Client) Time(ctx context.Context) (int64, error) {
	var out int64
	if err := c.call(ctx, methodTime, []any{}, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// LastPrice returns the last trade price of a market.
func (c *Client) LastPrice(ctx context.Context, market string) (string, error) {
	var out string
	if err := c.call(ctx, methodLastPriceRequest, []any{market}, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Candles returns kline data for the interval [start, end] in epoch
// seconds with the given candle width in seconds.
func (c *Client) Candles(ctx context.Context, market string, start, end time.Time, intervalSecs int) ([]Candle, error) {
	var out []Candle
	params := []any{market, start.Unix(), end.Unix(), intervalSecs}
	if err := c.call(ctx, methodCandlesRequest, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarketStats returns market statistics over the trailing period in
// seconds.
func (c *Client) MarketStats(ctx context.Context, market string, periodSecs int) (*MarketStats, error) {
	var out MarketStats
	if err := c.call(ctx, methodMarketRequest, []any{market, periodSecs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketStatsToday returns market statistics for the current UTC day.
func (c *Client) MarketStatsToday(ctx context.Context, market string) (*MarketStats, error) {
	var out MarketStats
	if err := c.call(ctx, methodMarketTodayQuery, []any{market}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketTrades returns up to limit trades newer than largestID.
func (c *Client) MarketTrades(ctx context.Context, market string, limit int, largestID int64) ([]Trade, error) {
	var out []Trade
	if err := c.call(ctx, methodTradesRequest, []any{market, limit, largestID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarketDepth returns the order book. interval groups price levels;
// "0" disables grouping.
func (c *Client) MarketDepth(ctx context.Context, market string, limit int, interval string) (*Depth, error) {
	var out Depth
	if err := c.call(ctx, methodDepthRequest, []any{market, limit, interval}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubscribeCandles subscribes to candle updates for a market and
// interval, returning the raw update stream.
func (c *Client) SubscribeCandles(ctx context.Context, market string, intervalSecs int) (<-chan json.RawMessage, error) {
	return c.subscribe(ctx, MethodCandlesSubscribe, MethodCandlesUpdate, []any{market, intervalSecs})
}

// SubscribeLastPrice subscribes to last-price updates for markets.
func (c *Client) SubscribeLastPrice(ctx context.Context, markets ...string) (<-chan json.RawMessage, error) {
	params := make([]any, len(markets))
	for i, m := range markets {
		params[i] = m
	}
	return c.subscribe(ctx, MethodLastPriceSubscribe, MethodLastPriceUpdate, params)
}

// SubscribeMarket subscribes to market statistics updates.
func (c *Client) SubscribeMarket(ctx context.Context, markets ...string) (<-chan json.RawMessage, error) {
	params := make([]any, len(markets))
	for i, m := range markets {
		params[i] = m
	}
	return c.subscribe(ctx, MethodMarketSubscribe, MethodMarketUpdate, params)
}

// SubscribeTrades subscribes to trade updates.
func (c *Client) SubscribeTrades(ctx context.Context, markets ...string) (<-chan json.RawMessage, error) {
	params := make([]any, len(markets))
	for i, m := range markets {
		params[i] = m
	}
	return c.subscribe(ctx, MethodTradesSubscribe, MethodTradesUpdate, params)
}

// SubscribeDepth subscribes to order book updates. priceInterval groups
// levels; "0" disables grouping.
func (c *Client) SubscribeDepth(ctx context.Context, market string, limit int, priceInterval string) (<-chan json.RawMessage, error) {
	return c.subscribe(ctx, MethodDepthSubscribe, MethodDepthUpdate, []any{market, limit, priceInterval, true})
}

func (c *Client) subscribe(ctx context.Context, subMethod, updateMethod string, params []any) (<-chan json.RawMessage, error) {
	stream := c.conn.Updates(updateMethod)
	if _, err := c.conn.Call(ctx, subMethod, params); err != nil {
		c.conn.DropUpdates(updateMethod)
		return nil, err
	}
	return stream, nil
}

// Unsubscribe issues the unsubscribe call and closes the matching
// update stream. updateMethod is one of the Method*Update constants.
func (c *Client) Unsubscribe(ctx context.Context, unsubMethod, updateMethod string) error {
	_, err := c.conn.Call(ctx, unsubMethod, []any{})
	c.conn.DropUpdates(updateMethod)
	return err
}
