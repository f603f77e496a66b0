package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"whitebit/pkg/wsapi"
)

// LastPrice is one last-price update: the market and its new price.
type LastPrice struct {
	Market string
	Price  string
}

// LastPrices subscribes to last-price updates for the given markets and
// returns a typed event stream. The stream closes when ctx ends or the
// connection drops.
func LastPrices(ctx context.Context, client *wsapi.Client, logger zerolog.Logger, markets ...string) (<-chan LastPrice, error) {
	raw, err := client.SubscribeLastPrice(ctx, markets...)
	if err != nil {
		return nil, err
	}

	out := make(chan LastPrice, defaultBufferSize)
	go pump(ctx, raw, out, decodeLastPrice, logger)
	return out, nil
}

// decodeLastPrice decodes update params of the form ["BTC_USDT", "9417.4"].
func decodeLastPrice(params json.RawMessage) ([]LastPrice, error) {
	var raw []string
	if err := sonic.Unmarshal(params, &raw); err != nil {
		return nil, err
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("lastprice update has %d params, want 2", len(raw))
	}
	return []LastPrice{{Market: raw[0], Price: raw[1]}}, nil
}
