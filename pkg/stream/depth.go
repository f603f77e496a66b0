package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"whitebit/pkg/wsapi"
)

// DepthEvent is one order book update. FullReload marks a complete
// snapshot; otherwise the asks and bids are deltas against the previous
// state, with an amount of "0" removing the level.
type DepthEvent struct {
	Market     string
	FullReload bool
	Book       wsapi.Depth
}

// DepthUpdates subscribes to order book updates for a market and
// returns a typed event stream. limit bounds the number of levels;
// priceInterval groups them, "0" disables grouping.
func DepthUpdates(ctx context.Context, client *wsapi.Client, logger zerolog.Logger, market string, limit int, priceInterval string) (<-chan DepthEvent, error) {
	raw, err := client.SubscribeDepth(ctx, market, limit, priceInterval)
	if err != nil {
		return nil, err
	}

	out := make(chan DepthEvent, defaultBufferSize)
	go pump(ctx, raw, out, decodeDepth, logger)
	return out, nil
}

// decodeDepth decodes update params of the form
// [fullReload, {"asks": ..., "bids": ...}, "BTC_USDT"].
func decodeDepth(params json.RawMessage) ([]DepthEvent, error) {
	var raw []json.RawMessage
	if err := sonic.Unmarshal(params, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("depth update has %d params, want at least 2", len(raw))
	}

	var event DepthEvent
	if err := sonic.Unmarshal(raw[0], &event.FullReload); err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(raw[1], &event.Book); err != nil {
		return nil, err
	}
	if len(raw) > 2 {
		if err := sonic.Unmarshal(raw[2], &event.Market); err != nil {
			return nil, err
		}
	}
	return []DepthEvent{event}, nil
}
