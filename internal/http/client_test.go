package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitebit/internal/circuitbreaker"
	"whitebit/pkg/core"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(core.DefaultConfig().WithBaseURL(baseURL), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	config := core.DefaultConfig()
	config.BaseURL = ""

	_, err := NewClient(config, zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v4/public/time", r.URL.Path)
		assert.Equal(t, "value", r.URL.Query().Get("key"))
		w.Write([]byte(`{"time": 1594391413}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Get(context.Background(), "/api/v4/public/time", WithQueryParam("key", "value"))
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestClient_Post_ByteBodySentVerbatim(t *testing.T) {
	body := []byte(`{"request":"/api/v4/orders","nonce":1700000000,"market":"BTC_USDT"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, got)
		assert.Equal(t, "k", r.Header.Get("X-TXC-APIKEY"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Post(context.Background(), "/api/v4/orders", body,
		WithHeaders(map[string]string{"X-TXC-APIKEY": "k", "Content-type": "application/json"}))
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestClient_Closed(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "/anything")
	assert.ErrorIs(t, err, core.ErrClientClosed)

	_, err = client.Post(context.Background(), "/anything", []byte("{}"))
	assert.ErrorIs(t, err, core.ErrClientClosed)
}

func TestClient_TransportError(t *testing.T) {
	// Port 1 is never listening.
	config := core.DefaultConfig().WithBaseURL("http://127.0.0.1:1")
	config.MaxRetries = 0
	client, err := NewClient(config, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Get(context.Background(), "/api/v4/public/time")
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker, err := circuitbreaker.New(circuitbreaker.Config{
		FailThreshold:    2,
		SuccessThreshold: 1,
		Cooldown:         time.Minute,
	})
	require.NoError(t, err)

	config := core.DefaultConfig().WithBaseURL(server.URL)
	config.MaxRetries = 0
	client, err := NewClient(config, zerolog.Nop(), WithBreaker(breaker))
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 2; i++ {
		resp, err := client.Get(context.Background(), "/api/v4/public/time")
		require.NoError(t, err)
		assert.True(t, resp.IsError())
	}

	_, err = client.Get(context.Background(), "/api/v4/public/time")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCircuitOpen)
	assert.True(t, core.IsTransportError(err))
}
