package v4

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// Market describes one trading pair as reported by the v4 markets
// endpoint. All numeric values arrive as strings.
type Market struct {
	Name          string `json:"name"`
	Stock         string `json:"stock"`
	Money         string `json:"money"`
	StockPrec     string `json:"stockPrec"`
	MoneyPrec     string `json:"moneyPrec"`
	FeePrec       string `json:"feePrec"`
	MakerFee      string `json:"makerFee"`
	TakerFee      string `json:"takerFee"`
	MinAmount     string `json:"minAmount"`
	MinTotal      string `json:"minTotal"`
	MaxTotal      string `json:"maxTotal"`
	TradesEnabled bool   `json:"tradesEnabled"`
	IsCollateral  bool   `json:"isCollateral"`
	Type          string `json:"type"`
}

// MarketActivity holds the 24-hour pricing and volume summary for one
// market from the v4 ticker endpoint.
type MarketActivity struct {
	BaseID      int64  `json:"base_id"`
	QuoteID     int64  `json:"quote_id"`
	LastPrice   string `json:"last_price"`
	QuoteVolume string `json:"quote_volume"`
	BaseVolume  string `json:"base_volume"`
	IsFrozen    bool   `json:"isFrozen"`
	Change      string `json:"change"`
}

// Asset describes one currency from the v4 assets endpoint.
type Asset struct {
	Name                 string                                  `json:"name"`
	UnifiedCryptoassetID int64                                   `json:"unified_cryptoasset_id"`
	CanWithdraw          bool                                    `json:"can_withdraw"`
	CanDeposit           bool                                    `json:"can_deposit"`
	MinWithdraw          string                                  `json:"min_withdraw"`
	MaxWithdraw          string                                  `json:"max_withdraw"`
	MakerFee             string                                  `json:"maker_fee"`
	TakerFee             string                                  `json:"taker_fee"`
	MinDeposit           string                                  `json:"min_deposit"`
	MaxDeposit           string                                  `json:"max_deposit"`
	CurrencyPrecision    int                                     `json:"currency_precision"`
	IsMemo               bool                                    `json:"is_memo"`
	Networks             map[string][]string                     `json:"networks,omitempty"`
	Confirmations        map[string]int                          `json:"confirmations,omitempty"`
	Providers            map[string][]string                     `json:"providers,omitempty"`
	Limits               map[string]map[string]map[string]string `json:"limits,omitempty"`
}

// OrderbookItem is one price level.
type OrderbookItem struct {
	Price  string
	Amount string
}

// Orderbook is the v4 orderbook response. Price levels are [price,
// amount] string pairs.
type Orderbook struct {
	TickerID  string      `json:"ticker_id"`
	Timestamp int64       `json:"timestamp"`
	Asks      [][2]string `json:"asks"`
	Bids      [][2]string `json:"bids"`
}

// AskItems converts the raw ask levels to typed items.
func (o *Orderbook) AskItems() []OrderbookItem {
	return toItems(o.Asks)
}

// BidItems converts the raw bid levels to typed items.
func (o *Orderbook) BidItems() []OrderbookItem {
	return toItems(o.Bids)
}

func toItems(levels [][2]string) []OrderbookItem {
	items := make([]OrderbookItem, len(levels))
	for i, l := range levels {
		items[i] = OrderbookItem{Price: l[0], Amount: l[1]}
	}
	return items
}

// Depth is the same shape as Orderbook, restricted to levels within
// ±2% of the last price.
type Depth = Orderbook

// RecentTrade is one executed trade from the v4 trades endpoint.
type RecentTrade struct {
	TradeID        int64  `json:"tradeID"`
	Price          string `json:"price"`
	QuoteVolume    string `json:"quote_volume"`
	BaseVolume     string `json:"base_volume"`
	TradeTimestamp int64  `json:"trade_timestamp"`
	Type           string `json:"type"`
}

// FeeFlex is a percentage fee bounded by min and max amounts.
type FeeFlex struct {
	MinFee  string `json:"min_fee"`
	MaxFee  string `json:"max_fee"`
	Percent string `json:"percent"`
}

// FeeDetails holds deposit or withdrawal fee limits for one direction.
type FeeDetails struct {
	MinAmount string   `json:"min_amount"`
	MaxAmount string   `json:"max_amount"`
	Fixed     *string  `json:"fixed,omitempty"`
	Flex      *FeeFlex `json:"flex,omitempty"`
}

// Fee holds deposit and withdrawal fee information for one ticker.
type Fee struct {
	Ticker      string     `json:"ticker"`
	Name        string     `json:"name"`
	CanDeposit  string     `json:"can_deposit"`
	CanWithdraw string     `json:"can_withdraw"`
	Deposit     FeeDetails `json:"deposit"`
	Withdraw    FeeDetails `json:"withdraw"`
}

// ServerTime is the v4 time response.
type ServerTime struct {
	Time int64 `json:"time"`
}

// MaintenanceStatus reports platform availability: "1" when the system
// is operational, "0" during maintenance.
type MaintenanceStatus struct {
	Status string `json:"status"`
}

// UnmarshalJSON accepts the status as either a string or a number; the
// exchange has emitted both.
func (m *MaintenanceStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status any `json:"status"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch s := raw.Status.(type) {
	case string:
		m.Status = s
	case float64:
		m.Status = strconv.FormatInt(int64(s), 10)
	case nil:
		m.Status = ""
	default:
		return fmt.Errorf("maintenance status: unexpected type %T", raw.Status)
	}
	return nil
}
