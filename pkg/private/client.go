// Package private implements the authenticated trade-account and order
// endpoints. Every request is signed, rate limited against the private
// tier, and posted as the exact byte body the signature covers.
package private

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"whitebit/internal/auth"
	"whitebit/internal/circuitbreaker"
	apihttp "whitebit/internal/http"
	"whitebit/internal/keyring"
	"whitebit/internal/ratelimit"
	"whitebit/pkg/core"
)

// NonceSource yields a strictly increasing nonce in epoch seconds.
type NonceSource func() int64

// Client talks to the private v4 REST API.
type Client struct {
	transport *apihttp.Client
	signer    *auth.Signer
	ring      *keyring.Ring
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.Breaker
	validate  *validator.Validate
	nonce     NonceSource
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithLimiter replaces the private-tier limiter, typically to share one
// limiter across several clients holding the same API key.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithNonceSource replaces the nonce source. The source must be
// strictly increasing across calls; the exchange rejects reused nonces.
func WithNonceSource(source NonceSource) Option {
	return func(c *Client) { c.nonce = source }
}

// WithBreaker installs a circuit breaker on the transport.
func WithBreaker(breaker *circuitbreaker.Breaker) Option {
	return func(c *Client) { c.breaker = breaker }
}

// WithKeyRing signs requests with a rotating credential set instead of
// the single key pair from the config. Each request is signed with the
// ring's current key, and rejections rotate per the ring's strategy.
func WithKeyRing(ring *keyring.Ring) Option {
	return func(c *Client) { c.ring = ring }
}

// New builds a private client. The config must carry credentials;
// without them every private call would be rejected, so construction
// fails early with core.ErrNoCredentials.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}

	c := &Client{
		validate: newRequestValidator(),
		nonce:    monotonicNonce(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.ring == nil {
		if config.Credentials == nil || config.Credentials.APIKey == "" || config.Credentials.SecretKey == "" {
			return nil, core.ErrNoCredentials
		}
		c.signer = auth.NewSigner(config.Credentials.APIKey, config.Credentials.SecretKey)
	}

	if c.limiter == nil {
		limiter, err := ratelimit.NewTier(core.TierPrivateV4)
		if err != nil {
			return nil, err
		}
		c.limiter = limiter
	}

	var transportOpts []apihttp.ClientOption
	if c.breaker != nil {
		transportOpts = append(transportOpts, apihttp.WithBreaker(c.breaker))
	}
	transport, err := apihttp.NewClient(config, c.logger, transportOpts...)
	if err != nil {
		return nil, err
	}
	c.transport = transport
	return c, nil
}

// newRequestValidator builds the request validator with the
// decimal_gt_zero rule used by amount and price fields. The exchange
// rejects zero and negative values server side; catching them here
// avoids burning a nonce and a rate-limit slot.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("decimal_gt_zero", func(fl validator.FieldLevel) bool {
		d, _, err := apd.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return d.Sign() > 0
	})
	return v
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// monotonicNonce returns epoch seconds, bumped by one whenever the
// clock has not advanced past the previous value. Two calls in the
// same second still produce distinct nonces.
func monotonicNonce() NonceSource {
	var last atomic.Int64
	return func() int64 {
		for {
			now := time.Now().Unix()
			prev := last.Load()
			if now <= prev {
				now = prev + 1
			}
			if last.CompareAndSwap(prev, now) {
				return now
			}
		}
	}
}

// postRaw validates, signs, rate limits and sends one private request,
// returning the raw response body. The signed body bytes are sent
// verbatim; re-encoding them would break the signature.
func (c *Client) postRaw(ctx context.Context, path string, body any) ([]byte, error) {
	if body != nil {
		if err := c.validate.Struct(body); err != nil {
			return nil, core.NewConfigError("request", err.Error())
		}
	}

	signer, err := c.requestSigner()
	if err != nil {
		return nil, err
	}
	signed, err := signer.Sign(path, body, c.nonce())
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.transport.Post(ctx, path, signed.Body, apihttp.WithHeaders(signed.Headers))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr := core.ParseAPIError(resp.StatusCode(), resp.Bytes())
		c.recordKeyError(apiErr)
		return nil, apiErr
	}
	if c.ring != nil {
		c.ring.MarkUsed()
	}
	return resp.Bytes(), nil
}

// requestSigner picks the signer for one request. With a key ring the
// current key is resolved per request so rotation takes effect between
// calls.
func (c *Client) requestSigner() (*auth.Signer, error) {
	if c.ring == nil {
		return c.signer, nil
	}
	key := c.ring.Current()
	if key == nil {
		return nil, core.ErrNoCredentials
	}
	return auth.NewSigner(key.Credentials.APIKey, key.Credentials.SecretKey), nil
}

// recordKeyError reports key-level rejections to the ring. Only auth
// and rate-limit statuses count; order-level errors say nothing about
// the key.
func (c *Client) recordKeyError(err error) {
	if c.ring == nil {
		return
	}
	apiErr, ok := core.IsAPIError(err)
	if !ok {
		return
	}
	switch apiErr.StatusCode {
	case 401, 403, 429:
		c.logger.Warn().Int("status", apiErr.StatusCode).Msg("api key rejected, reporting to key ring")
		c.ring.OnError()
	}
}

// post sends one private request and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := c.postRaw(ctx, path, body)
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

type tradingBalanceRequest struct {
	Ticker string `json:"ticker,omitempty"`
}

// GetTradingBalance fetches the trade-account balance. With a ticker the
// result carries the Single variant; with an empty ticker it carries the
// All variant covering every ticker.
func (c *Client) GetTradingBalance(ctx context.Context, ticker string) (*TradingBalance, error) {
	var body any
	if ticker != "" {
		body = tradingBalanceRequest{Ticker: ticker}
	}

	raw, err := c.postRaw(ctx, core.PathTradingBalance, body)
	if err != nil {
		return nil, err
	}

	// The endpoint answers with an object for a single ticker and a
	// ticker-keyed map otherwise; the request shape decides which.
	if ticker != "" {
		var item TradingBalanceItem
		if err := sonic.Unmarshal(raw, &item); err != nil {
			return nil, &core.SerializationError{Err: err}
		}
		item.Ticker = ticker
		return &TradingBalance{Single: &item}, nil
	}

	var byTicker map[string]TradingBalanceItem
	if err := sonic.Unmarshal(raw, &byTicker); err != nil {
		return nil, &core.SerializationError{Err: err}
	}
	all := make([]TradingBalanceItem, 0, len(byTicker))
	for name, item := range byTicker {
		item.Ticker = name
		all = append(all, item)
	}
	return &TradingBalance{All: all}, nil
}

// CreateLimitOrder places a limit order.
func (c *Client) CreateLimitOrder(ctx context.Context, req CreateLimitOrderRequest) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.post(ctx, core.PathOrderNew, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStockMarketOrder places a market order sized in stock currency.
func (c *Client) CreateStockMarketOrder(ctx context.Context, req CreateStockMarketOrderRequest) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.post(ctx, core.PathOrderStockMarket, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStopLimitOrder places a stop-limit order.
func (c *Client) CreateStopLimitOrder(ctx context.Context, req CreateStopLimitOrderRequest) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.post(ctx, core.PathOrderStopLimit, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStopMarketOrder places a stop-market order.
func (c *Client) CreateStopMarketOrder(ctx context.Context, req CreateStopMarketOrderRequest) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.post(ctx, core.PathOrderStopMarket, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels an order by id.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (*CancelOrderResponse, error) {
	var out CancelOrderResponse
	if err := c.post(ctx, core.PathOrderCancel, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveOrders lists unexecuted orders on a market.
func (c *Client) ActiveOrders(ctx context.Context, req ActiveOrdersRequest) ([]OrderResponse, error) {
	var out []OrderResponse
	if err := c.post(ctx, core.PathActiveOrders, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecutedOrderHistory lists executed orders, keyed by market.
func (c *Client) ExecutedOrderHistory(ctx context.Context, req ExecutedOrderHistoryRequest) (ExecutedOrders, error) {
	var out ExecutedOrders
	if err := c.post(ctx, core.PathExecutedHistory, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecutedOrderDeals lists the deals of one executed order.
func (c *Client) ExecutedOrderDeals(ctx context.Context, req ExecutedOrderDealsRequest) (*DealsResponse, error) {
	var out DealsResponse
	if err := c.post(ctx, core.PathOrderDeals, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecutedOrdersByMarket lists executed orders filtered by market.
func (c *Client) ExecutedOrdersByMarket(ctx context.Context, req ExecutedOrdersByMarketRequest) (ExecutedOrders, error) {
	var out ExecutedOrders
	if err := c.post(ctx, core.PathOrdersByMarket, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
