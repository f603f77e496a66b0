package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitebit/pkg/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(core.DefaultConfig().WithBaseURL(server.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_GetMarketInfo(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.PathMarketsV1, r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"message": null,
			"result": [{
				"name": "BTC_USDT",
				"stock": "BTC",
				"money": "USDT",
				"stockPrec": 6,
				"moneyPrec": 2,
				"feePrec": 4,
				"makerFee": "0.001",
				"takerFee": "0.001",
				"minAmount": "0.0001"
			}]
		}`))
	}))

	info, err := client.GetMarketInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Success)
	require.Len(t, info.Result, 1)
	assert.Equal(t, "BTC_USDT", info.Result[0].Name)
	assert.Equal(t, 6, info.Result[0].StockPrec)
	assert.Equal(t, 0.001, info.Result[0].MakerFee.Float64())
}

func TestClient_GetTickers_FlattensWireMap(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.PathTickersV1, r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"result": {
				"BTC_USDT": {
					"at": 1594232194,
					"ticker": {"bid": "9412.1", "ask": "9416.33", "low": "9203", "high": "9469.27", "last": "9414.4", "vol": "27324.8", "deal": "254587570.4", "change": "1.53"}
				}
			}
		}`))
	}))

	tickers, err := client.GetTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers.Result, 1)
	assert.Equal(t, "BTC_USDT", tickers.Result[0].Name)
	assert.Equal(t, int64(1594232194), tickers.Result[0].At)
	assert.Equal(t, 9412.1, tickers.Result[0].Bid.Float64())
	assert.Equal(t, 1.53, tickers.Result[0].Change.Float64())
}

func TestClient_GetSingleMarket(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.PathTickerV1, r.URL.Path)
		assert.Equal(t, "BTC_USDT", r.URL.Query().Get("market"))
		w.Write([]byte(`{"success": true, "result": {"open": "9267.98", "bid": "9416.73", "ask": "9419.21", "low": "9203", "high": "9469.27", "last": "9419.55", "volume": "27303.8", "deal": "254399191.8", "change": "1.63"}}`))
	}))

	resp, err := client.GetSingleMarket(context.Background(), "BTC_USDT")
	require.NoError(t, err)
	assert.Equal(t, 9419.55, resp.Result.Last.Float64())
	assert.Equal(t, 9267.98, resp.Result.Open.Float64())
}

func TestClient_GetSingleMarket_EmptyMarket(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))

	_, err := client.GetSingleMarket(context.Background(), "")
	assert.True(t, core.IsConfigError(err))
}

func TestClient_GetKline(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.PathKlineV1, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "BTC_USDT", q.Get("market"))
		assert.Equal(t, "1594232194", q.Get("start"))
		assert.Equal(t, "1594232254", q.Get("end"))
		assert.Equal(t, "1m", q.Get("interval"))
		w.Write([]byte(`{"success": true, "result": [[1594232194, "9411.4", "9413.2", "9420.0", "9405.0", "12.3", "115700.9"]]}`))
	}))

	kline, err := client.GetKline(context.Background(), "BTC_USDT", 1594232194, 1594232254, "1m")
	require.NoError(t, err)
	require.Len(t, kline.Result, 1)
	assert.Equal(t, int64(1594232194), kline.Result[0].TimeSeconds)
	assert.Equal(t, 9411.4, kline.Result[0].Open)
	assert.Equal(t, 115700.9, kline.Result[0].VolumeMoney)
}

func TestClient_GetOrderDepth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/public/depth/BTC_USDT", r.URL.Path)
		w.Write([]byte(`{"asks": [["9431.9", "0.125"]], "bids": [[9427.65, 0.59]]}`))
	}))

	depth, err := client.GetOrderDepth(context.Background(), "BTC_USDT")
	require.NoError(t, err)
	require.Len(t, depth.Asks, 1)
	require.Len(t, depth.Bids, 1)
	assert.Equal(t, 9431.9, depth.Asks[0].Price)
	assert.Equal(t, 0.59, depth.Bids[0].Amount)
}

func TestClient_GetTradeHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.PathHistoryV1, r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("lastId"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success": true, "result": [{"id": 468968, "time": 1594240477.849703, "price": "9429.66", "amount": "0.002784", "type": "sell"}]}`))
	}))

	history, err := client.GetTradeHistory(context.Background(), "BTC_USDT", 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Result, 1)
	assert.Equal(t, int64(468968), history.Result[0].ID)
	assert.Equal(t, "sell", history.Result[0].Type)
	assert.Equal(t, 9429.66, history.Result[0].Price.Float64())
	assert.Equal(t, 0.002784, history.Result[0].Amount.Float64())
}

func TestClient_GetSymbols(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "result": ["BTC_USDT", "ETH_BTC"]}`))
	}))

	symbols, err := client.GetSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC_USDT", "ETH_BTC"}, symbols.Result)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": false, "message": "market not found"}`))
	}))

	_, err := client.GetSingleMarket(context.Background(), "NOPE_NOPE")
	require.Error(t, err)

	apiErr, ok := core.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "market not found", apiErr.Message)
}
