// Package stream decodes the public websocket update frames into typed
// events. Each stream wraps one wsapi subscription: it owns a pump
// goroutine that turns raw update params into typed values and stops
// when the context ends or the underlying connection closes the raw
// channel.
package stream

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

const defaultBufferSize = 100

// pump drives one decode loop. decode turns the raw params of a single
// update frame into zero or more typed events.
func pump[T any](ctx context.Context, raw <-chan json.RawMessage, out chan<- T, decode func(json.RawMessage) ([]T, error), logger zerolog.Logger) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case params, ok := <-raw:
			if !ok {
				return
			}
			events, err := decode(params)
			if err != nil {
				logger.Warn().Err(err).Msg("discarding undecodable update frame")
				continue
			}
			for _, event := range events {
				select {
				case <-ctx.Done():
					return
				case out <- event:
				}
			}
		}
	}
}
