package private

import (
	"github.com/cockroachdb/apd/v3"
)

// OrderSide is the direction of an order.
type OrderSide string

// Order side values accepted by the exchange.
const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// CreateLimitOrderRequest places a limit order.
type CreateLimitOrderRequest struct {
	Market        string    `json:"market" validate:"required"`
	Side          OrderSide `json:"side" validate:"required,oneof=buy sell"`
	Amount        string    `json:"amount" validate:"required,decimal_gt_zero"`
	Price         string    `json:"price" validate:"required,decimal_gt_zero"`
	ClientOrderID string    `json:"clientOrderId,omitempty" validate:"omitempty,max=36"`
}

// CreateStockMarketOrderRequest places a market order sized in stock
// currency.
type CreateStockMarketOrderRequest struct {
	Market        string    `json:"market" validate:"required"`
	Side          OrderSide `json:"side" validate:"required,oneof=buy sell"`
	Amount        string    `json:"amount" validate:"required,decimal_gt_zero"`
	ClientOrderID string    `json:"clientOrderId,omitempty" validate:"omitempty,max=36"`
}

// CreateStopLimitOrderRequest places a limit order activated at the
// activation price.
type CreateStopLimitOrderRequest struct {
	Market          string    `json:"market" validate:"required"`
	Side            OrderSide `json:"side" validate:"required,oneof=buy sell"`
	Amount          string    `json:"amount" validate:"required,decimal_gt_zero"`
	Price           string    `json:"price" validate:"required,decimal_gt_zero"`
	ActivationPrice string    `json:"activation_price" validate:"required,decimal_gt_zero"`
	ClientOrderID   string    `json:"clientOrderId,omitempty" validate:"omitempty,max=36"`
}

// CreateStopMarketOrderRequest places a market order activated at the
// activation price.
type CreateStopMarketOrderRequest struct {
	Market          string    `json:"market" validate:"required"`
	Side            OrderSide `json:"side" validate:"required,oneof=buy sell"`
	Amount          string    `json:"amount" validate:"required,decimal_gt_zero"`
	ActivationPrice string    `json:"activation_price" validate:"required,decimal_gt_zero"`
	ClientOrderID   string    `json:"clientOrderId,omitempty" validate:"omitempty,max=36"`
}

// CancelOrderRequest cancels an existing order.
type CancelOrderRequest struct {
	Market  string `json:"market" validate:"required"`
	OrderID int64  `json:"orderId" validate:"required,gt=0"`
}

// ActiveOrdersRequest lists unexecuted orders for a market.
type ActiveOrdersRequest struct {
	Market string `json:"market" validate:"required"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int    `json:"offset,omitempty" validate:"omitempty,min=0,max=10000"`
}

// ExecutedOrderHistoryRequest lists executed orders; the market filter
// is optional.
type ExecutedOrderHistoryRequest struct {
	Market string `json:"market,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int    `json:"offset,omitempty" validate:"omitempty,min=0,max=10000"`
}

// ExecutedOrderDealsRequest lists the deals of one executed order.
type ExecutedOrderDealsRequest struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
	Limit   int   `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset  int   `json:"offset,omitempty" validate:"omitempty,min=0,max=10000"`
}

// ExecutedOrdersByMarketRequest lists executed orders for one market.
type ExecutedOrdersByMarketRequest struct {
	Market string `json:"market,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int    `json:"offset,omitempty" validate:"omitempty,min=0,max=10000"`
}

// TradingBalanceItem is the balance for a single ticker.
type TradingBalanceItem struct {
	Ticker    string      `json:"ticker"`
	Available apd.Decimal `json:"available"`
	Freeze    apd.Decimal `json:"freeze"`
}

// TradingBalance is a two-variant result: exactly one of Single or All
// is set, resolved by whether a ticker was requested. Callers branch on
// the variant instead of inspecting the response shape at runtime.
type TradingBalance struct {
	// Single is the balance for the requested ticker; nil when the
	// request covered all tickers.
	Single *TradingBalanceItem
	// All holds one entry per ticker; nil when a single ticker was
	// requested.
	All []TradingBalanceItem
}

// OrderResponse is the exchange's record of a placed or queried order.
type OrderResponse struct {
	OrderID       int64       `json:"orderId"`
	ClientOrderID string      `json:"clientOrderId"`
	Market        string      `json:"market"`
	Side          OrderSide   `json:"side"`
	Type          string      `json:"type"`
	Price         string      `json:"price"`
	Amount        apd.Decimal `json:"amount"`
	Left          apd.Decimal `json:"left"`
	DealFee       apd.Decimal `json:"dealFee"`
	DealMoney     apd.Decimal `json:"dealMoney"`
	DealStock     apd.Decimal `json:"dealStock"`
	MakerFee      apd.Decimal `json:"makerFee"`
	TakerFee      apd.Decimal `json:"takerFee"`
	Timestamp     float64     `json:"timestamp"`
}

// CancelOrderResponse is an OrderResponse extended with the activation
// price for stop orders.
type CancelOrderResponse struct {
	OrderResponse
	ActivationPrice string `json:"activation_price,omitempty"`
}

// Deal is one execution of an order.
type Deal struct {
	ID          int64       `json:"id"`
	Time        float64     `json:"time"`
	Fee         apd.Decimal `json:"fee"`
	Price       apd.Decimal `json:"price"`
	Amount      apd.Decimal `json:"amount"`
	DealOrderID int64       `json:"dealOrderId"`
	Role        int         `json:"role"`
	Deal        apd.Decimal `json:"deal"`
}

// DealsResponse is a paginated list of deals for one order.
type DealsResponse struct {
	Records []Deal `json:"records"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

// ExecutedOrder is one finished order from the history endpoints.
type ExecutedOrder struct {
	ID            int64       `json:"id"`
	ClientOrderID string      `json:"clientOrderId"`
	Market        string      `json:"market,omitempty"`
	Side          OrderSide   `json:"side"`
	Type          string      `json:"type"`
	Price         string      `json:"price"`
	Amount        apd.Decimal `json:"amount"`
	DealFee       apd.Decimal `json:"dealFee"`
	DealMoney     apd.Decimal `json:"dealMoney"`
	DealStock     apd.Decimal `json:"dealStock"`
	MakerFee      apd.Decimal `json:"makerFee"`
	TakerFee      apd.Decimal `json:"takerFee"`
	Time          float64     `json:"time"`
}

// ExecutedOrders maps market name to the executed orders on it.
type ExecutedOrders map[string][]ExecutedOrder
