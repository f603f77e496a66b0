package v1

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Envelope carries the success flag and message wrapped around every v1
// response body.
type Envelope struct {
	Success bool `json:"success"`
	Message any  `json:"message,omitempty"`
}

// Number is a float64 that decodes from either a JSON number or a
// numeric string. v1 encodes most prices and volumes as quoted strings,
// but a few fields and older payloads carry bare numbers.
type Number float64

// UnmarshalJSON accepts both encodings.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, err := asFloat(raw)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns the plain float value.
func (n Number) Float64() float64 {
	return float64(n)
}

// Market describes one trading pair as reported by the v1 markets endpoint.
type Market struct {
	Name      string `json:"name"`
	Stock     string `json:"stock"`
	Money     string `json:"money"`
	StockPrec int    `json:"stockPrec"`
	MoneyPrec int    `json:"moneyPrec"`
	FeePrec   int    `json:"feePrec"`
	MakerFee  Number `json:"makerFee"`
	TakerFee  Number `json:"takerFee"`
	MinAmount Number `json:"minAmount"`
}

// MarketInfo is the v1 markets response.
type MarketInfo struct {
	Envelope
	Result []Market `json:"result"`
}

// Ticker holds 24-hour trading activity for one market.
type Ticker struct {
	Name   string `json:"name"`
	Bid    Number `json:"bid"`
	Ask    Number `json:"ask"`
	Low    Number `json:"low"`
	High   Number `json:"high"`
	Last   Number `json:"last"`
	Vol    Number `json:"vol"`
	Deal   Number `json:"deal"`
	Change Number `json:"change"`
	At     int64  `json:"at"`
}

// Tickers is the v1 tickers response, flattened from the wire shape
// (a map of market name to {at, ticker}) into a slice.
type Tickers struct {
	Envelope
	Result []Ticker `json:"result"`
}

// MarketSingle holds trading activity for a single requested market.
type MarketSingle struct {
	Open   Number `json:"open"`
	Bid    Number `json:"bid"`
	Ask    Number `json:"ask"`
	Low    Number `json:"low"`
	High   Number `json:"high"`
	Last   Number `json:"last"`
	Volume Number `json:"volume"`
	Deal   Number `json:"deal"`
	Change Number `json:"change"`
}

// MarketSingleResponse is the v1 single-market ticker response.
type MarketSingleResponse struct {
	Envelope
	Result MarketSingle `json:"result"`
}

// KlineItem is one candlestick. The wire format is a 7-element array:
// [timestamp, open, close, high, low, stock volume, money volume].
type KlineItem struct {
	TimeSeconds int64
	Open        float64
	Close       float64
	High        float64
	Low         float64
	VolumeStock float64
	VolumeMoney float64
}

// UnmarshalJSON decodes the positional candlestick array. Price and
// volume elements arrive as either numbers or numeric strings.
func (k *KlineItem) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 7 {
		return fmt.Errorf("kline item: expected 7 elements, got %d", len(raw))
	}

	ts, err := asFloat(raw[0])
	if err != nil {
		return fmt.Errorf("kline item timestamp: %w", err)
	}
	k.TimeSeconds = int64(ts)

	fields := []*float64{&k.Open, &k.Close, &k.High, &k.Low, &k.VolumeStock, &k.VolumeMoney}
	for i, dst := range fields {
		v, err := asFloat(raw[i+1])
		if err != nil {
			return fmt.Errorf("kline item element %d: %w", i+1, err)
		}
		*dst = v
	}
	return nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		var f float64
		if err := sonic.Unmarshal([]byte(n), &f); err != nil {
			return 0, fmt.Errorf("parse %q as number: %w", n, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// Kline is the v1 kline response.
type Kline struct {
	Envelope
	Result []KlineItem `json:"result"`
}

// Symbols is the v1 symbols response: the list of market names.
type Symbols struct {
	Envelope
	Result []string `json:"result"`
}

// OrderDepthItem is one price level.
type OrderDepthItem struct {
	Price  float64
	Amount float64
}

// UnmarshalJSON decodes the positional [price, amount] pair.
func (o *OrderDepthItem) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("depth item: expected 2 elements, got %d", len(raw))
	}
	price, err := asFloat(raw[0])
	if err != nil {
		return fmt.Errorf("depth item price: %w", err)
	}
	amount, err := asFloat(raw[1])
	if err != nil {
		return fmt.Errorf("depth item amount: %w", err)
	}
	o.Price = price
	o.Amount = amount
	return nil
}

// OrderDepth is the v1 depth response.
type OrderDepth struct {
	Asks []OrderDepthItem `json:"asks"`
	Bids []OrderDepthItem `json:"bids"`
}

// TradeHistoryItem is one executed deal from the v1 history endpoint.
type TradeHistoryItem struct {
	ID     int64   `json:"id"`
	Time   float64 `json:"time"`
	Price  Number  `json:"price"`
	Amount Number  `json:"amount"`
	Type   string  `json:"type"`
}

// TradeHistory is the v1 history response.
type TradeHistory struct {
	Envelope
	Result []TradeHistoryItem `json:"result"`
}

// tickersWire is the raw v1 tickers shape before flattening.
type tickersWire struct {
	Envelope
	Result map[string]struct {
		At     int64  `json:"at"`
		Ticker Ticker `json:"ticker"`
	} `json:"result"`
}
