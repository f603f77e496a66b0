package v2

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// Envelope carries the success flag and message wrapped around every v2
// response body.
type Envelope struct {
	Success bool `json:"success"`
	Message any  `json:"message,omitempty"`
}

// Market describes one trading pair as reported by the v2 markets endpoint.
type Market struct {
	Name          string  `json:"name"`
	Stock         string  `json:"stock"`
	Money         string  `json:"money"`
	StockPrec     int     `json:"stockPrec"`
	MoneyPrec     int     `json:"moneyPrec"`
	FeePrec       int     `json:"feePrec"`
	MakerFee      float64 `json:"makerFee"`
	TakerFee      float64 `json:"takerFee"`
	MinAmount     float64 `json:"minAmount"`
	MinTotal      float64 `json:"minTotal"`
	TradesEnabled bool    `json:"tradesEnabled"`
}

// MarketInfo is the v2 markets response.
type MarketInfo struct {
	Envelope
	Result []Market `json:"result"`
}

// Ticker holds 24-hour trading activity for one market.
type Ticker struct {
	LastUpdateTimestamp string  `json:"lastUpdateTimestamp"`
	TradingPairs        string  `json:"tradingPairs"`
	LastPrice           float64 `json:"lastPrice"`
	LowestAsk           float64 `json:"lowestAsk"`
	HighestBid          float64 `json:"highestBid"`
	BaseVolume24h       float64 `json:"baseVolume24h"`
	QuoteVolume24h      float64 `json:"quoteVolume24h"`
	TradesEnabled       bool    `json:"tradesEnabled"`
}

// Tickers is the v2 tickers response.
type Tickers struct {
	Envelope
	Result []Ticker `json:"result"`
}

// RecentTrade is one executed trade from the v2 trades endpoint.
type RecentTrade struct {
	TradeID      int64   `json:"tradeId"`
	Price        float64 `json:"price"`
	Volume       float64 `json:"volume"`
	Time         string  `json:"time"`
	IsBuyerMaker bool    `json:"isBuyerMaker"`
}

// RecentTrades is the v2 trades response.
type RecentTrades struct {
	Envelope
	Result []RecentTrade `json:"result"`
}

// Fee holds the default trading fees.
type Fee struct {
	MakerFee float64 `json:"makerFee"`
	TakerFee float64 `json:"takerFee"`
}

// FeeResponse is the v2 fee response.
type FeeResponse struct {
	Envelope
	Result Fee `json:"result"`
}

// Asset describes one currency and its deposit/withdrawal limits. The
// wire shape keys assets by name; AssetName is filled in from the key.
type Asset struct {
	AssetName           string  `json:"asset_name"`
	ID                  string  `json:"id"`
	LastUpdateTimestamp string  `json:"lastUpdateTimestamp"`
	Name                string  `json:"name"`
	CanWithdraw         bool    `json:"canWithdraw"`
	CanDeposit          bool    `json:"canDeposit"`
	MinWithdrawal       float64 `json:"minWithdrawal"`
	MaxWithdrawal       float64 `json:"maxWithdrawal"`
	MakerFee            float64 `json:"makerFee"`
	TakerFee            float64 `json:"takerFee"`
}

// AssetStatus is the v2 assets response, flattened from the wire map.
type AssetStatus struct {
	Envelope
	Result []Asset `json:"result"`
}

// DepthItem is one price level as a [price, amount] pair.
type DepthItem struct {
	Price  float64
	Amount float64
}

// UnmarshalJSON decodes the positional [price, amount] pair.
func (d *DepthItem) UnmarshalJSON(data []byte) error {
	var raw [2]float64
	if err := unmarshalPair(data, &raw); err != nil {
		return err
	}
	d.Price = raw[0]
	d.Amount = raw[1]
	return nil
}

// OrderDepth is the v2 depth response result.
type OrderDepth struct {
	LastUpdateTimestamp string      `json:"lastUpdateTimestamp"`
	Asks                []DepthItem `json:"asks"`
	Bids                []DepthItem `json:"bids"`
}

// unmarshalPair decodes a two-element JSON array whose elements may be
// numbers or numeric strings.
func unmarshalPair(data []byte, out *[2]float64) error {
	var raw []any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("depth item: expected 2 elements, got %d", len(raw))
	}
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return fmt.Errorf("depth item: parse %q: %w", n, err)
			}
			out[i] = f
		default:
			return fmt.Errorf("depth item: unexpected type %T", v)
		}
	}
	return nil
}

type assetStatusWire struct {
	Envelope
	Result map[string]Asset `json:"result"`
}

type orderDepthWire struct {
	Envelope
	Result OrderDepth `json:"result"`
}
