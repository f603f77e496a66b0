package wsapi

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Candle is one kline entry. The endpoint encodes candles as
// positional arrays: time, open, close, high, low, stock volume and
// money volume, optionally followed by the market name.
type Candle struct {
	Time        int64
	Open        string
	Close       string
	High        string
	Low         string
	VolumeStock string
	VolumeMoney string
	Market      string
}

// UnmarshalJSON decodes the positional candle array.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 7 {
		return fmt.Errorf("candle entry has %d elements, want at least 7", len(raw))
	}

	ts, ok := raw[0].(float64)
	if !ok {
		return fmt.Errorf("candle timestamp is %T, want number", raw[0])
	}
	c.Time = int64(ts)

	fields := []*string{&c.Open, &c.Close, &c.High, &c.Low, &c.VolumeStock, &c.VolumeMoney}
	for i, field := range fields {
		s, ok := raw[i+1].(string)
		if !ok {
			return fmt.Errorf("candle element %d is %T, want string", i+1, raw[i+1])
		}
		*field = s
	}

	if len(raw) > 7 {
		if market, ok := raw[7].(string); ok {
			c.Market = market
		}
	}
	return nil
}

// MarketStats is the statistics block returned by the market queries.
type MarketStats struct {
	Period int64  `json:"period"`
	Last   string `json:"last"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Volume string `json:"volume"`
	Deal   string `json:"deal"`
}

// Trade is one executed trade from the trades query.
type Trade struct {
	ID     int64   `json:"id"`
	Time   float64 `json:"time"`
	Price  string  `json:"price"`
	Amount string  `json:"amount"`
	Type   string  `json:"type"`
}

// Depth is an order book snapshot. Price levels are [price, amount]
// string pairs ordered best first.
type Depth struct {
	Asks [][2]string `json:"asks"`
	Bids [][2]string `json:"bids"`
}
