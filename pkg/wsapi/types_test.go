package wsapi

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandle_UnmarshalJSON(t *testing.T) {
	data := []byte(`[1594391413, "9417.4", "9420.1", "9425.0", "9415.2", "12.5", "117800.3"]`)

	var candle Candle
	require.NoError(t, sonic.Unmarshal(data, &candle))

	assert.Equal(t, int64(1594391413), candle.Time)
	assert.Equal(t, "9417.4", candle.Open)
	assert.Equal(t, "9420.1", candle.Close)
	assert.Equal(t, "117800.3", candle.VolumeMoney)
	assert.Empty(t, candle.Market)
}

func TestCandle_UnmarshalJSON_WithMarket(t *testing.T) {
	data := []byte(`[1594391413, "9417.4", "9420.1", "9425.0", "9415.2", "12.5", "117800.3", "BTC_USDT"]`)

	var candle Candle
	require.NoError(t, sonic.Unmarshal(data, &candle))

	assert.Equal(t, "BTC_USDT", candle.Market)
}

func TestCandle_UnmarshalJSON_TooShort(t *testing.T) {
	var candle Candle
	err := sonic.Unmarshal([]byte(`[1594391413, "9417.4"]`), &candle)

	assert.Error(t, err)
}

func TestCandle_UnmarshalJSON_WrongElementType(t *testing.T) {
	var candle Candle
	err := sonic.Unmarshal([]byte(`[1594391413, 9417.4, "9420.1", "9425.0", "9415.2", "12.5", "117800.3"]`), &candle)

	assert.Error(t, err)
}

func TestCandles_UnmarshalList(t *testing.T) {
	data := []byte(`[
		[1594391413, "9417.4", "9420.1", "9425.0", "9415.2", "12.5", "117800.3"],
		[1594391473, "9420.1", "9418.9", "9422.0", "9417.0", "8.1", "76300.0"]
	]`)

	var candles []Candle
	require.NoError(t, sonic.Unmarshal(data, &candles))

	require.Len(t, candles, 2)
	assert.Equal(t, int64(1594391473), candles[1].Time)
	assert.Equal(t, "9418.9", candles[1].Close)
}
