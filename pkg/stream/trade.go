package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"whitebit/pkg/wsapi"
)

// TradeEvent is one executed trade delivered by the trades stream.
type TradeEvent struct {
	Market string
	Trade  wsapi.Trade
}

// Trades subscribes to trade updates for the given markets and returns
// a typed event stream. A single update frame may carry several trades;
// each is emitted separately.
func Trades(ctx context.Context, client *wsapi.Client, logger zerolog.Logger, markets ...string) (<-chan TradeEvent, error) {
	raw, err := client.SubscribeTrades(ctx, markets...)
	if err != nil {
		return nil, err
	}

	out := make(chan TradeEvent, defaultBufferSize)
	go pump(ctx, raw, out, decodeTrades, logger)
	return out, nil
}

// decodeTrades decodes update params of the form ["BTC_USDT", [trade, ...]].
func decodeTrades(params json.RawMessage) ([]TradeEvent, error) {
	var raw []json.RawMessage
	if err := sonic.Unmarshal(params, &raw); err != nil {
		return nil, err
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("trades update has %d params, want 2", len(raw))
	}

	var market string
	if err := sonic.Unmarshal(raw[0], &market); err != nil {
		return nil, err
	}
	var trades []wsapi.Trade
	if err := sonic.Unmarshal(raw[1], &trades); err != nil {
		return nil, err
	}

	events := make([]TradeEvent, len(trades))
	for i, trade := range trades {
		events[i] = TradeEvent{Market: market, Trade: trade}
	}
	return events, nil
}
