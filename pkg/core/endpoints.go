package core

import "time"

// Public v4 endpoint paths.
const (
	PathMarketsV4     = "/api/v4/public/markets"
	PathTickerV4      = "/api/v4/public/ticker"
	PathAssetsV4      = "/api/v4/public/assets"
	PathOrderbookV4   = "/api/v4/public/orderbook/%s"
	PathDepthV4       = "/api/v4/public/orderbook/depth/%s"
	PathTradesV4      = "/api/v4/public/trades/%s"
	PathFeeV4         = "/api/v4/public/fee"
	PathTimeV4        = "/api/v4/public/time"
	PathPingV4        = "/api/v4/public/ping"
	PathMaintenanceV4 = "/api/v4/public/platform/status"
)

// Public v2 endpoint paths.
const (
	PathMarketsV2 = "/api/v2/public/markets"
	PathTickerV2  = "/api/v2/public/ticker"
	PathTradesV2  = "/api/v2/public/trades/%s"
	PathFeeV2     = "/api/v2/public/fee"
	PathAssetsV2  = "/api/v2/public/assets"
	PathDepthV2   = "/api/v2/public/depth/%s"
)

// Public v1 endpoint paths.
const (
	PathMarketsV1 = "/api/v1/public/markets"
	PathTickerV1  = "/api/v1/public/ticker"
	PathTickersV1 = "/api/v1/public/tickers"
	PathKlineV1   = "/api/v1/public/kline"
	PathSymbolsV1 = "/api/v1/public/symbols"
	PathDepthV1   = "/api/v1/public/depth/%s"
	PathHistoryV1 = "/api/v1/public/history"
)

// Private v4 endpoint paths. The path doubles as the "request" field of
// the signed body, so these must match the documented routes exactly.
const (
	PathTradingBalance   = "/api/v4/trade-account/balance"
	PathOrderNew         = "/api/v4/order/new"
	PathOrderStockMarket = "/api/v4/order/stock_market"
	PathOrderStopLimit   = "/api/v4/order/stop_limit"
	PathOrderStopMarket  = "/api/v4/order/stop_market"
	PathOrderCancel      = "/api/v4/order/cancel"
	PathActiveOrders     = "/api/v4/orders"
	PathExecutedHistory  = "/api/v4/trade-account/executed-history"
	PathOrderDeals       = "/api/v4/trade-account/order"
	PathOrdersByMarket   = "/api/v4/trade-account/order/history"
)

// RateTier describes one rate-limit budget shared by a class of endpoints.
type RateTier struct {
	// Capacity is the maximum number of admissions per Window.
	Capacity int
	// Window is the trailing time span in which admissions are counted.
	Window time.Duration
}

// Published rate tiers. Each versioned client owns exactly one limiter
// constructed from its tier; callers never share a budget across tiers.
var (
	TierPublicV1  = RateTier{Capacity: 1000, Window: 10 * time.Second}
	TierPublicV2  = RateTier{Capacity: 1000, Window: 10 * time.Second}
	TierPublicV4  = RateTier{Capacity: 2000, Window: 10 * time.Second}
	TierPrivateV4 = RateTier{Capacity: 60, Window: time.Minute}
)
