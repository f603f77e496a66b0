// Package ws maintains the websocket connection to the WhiteBIT
// JSON-RPC endpoint. Outgoing requests carry a client-assigned id and
// are matched to their responses; server-initiated update frames are
// routed to subscribers by update method name.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"whitebit/pkg/core"
)

// Config holds connection options for the WhiteBIT websocket endpoint.
type Config struct {
	// URL is the websocket endpoint to connect to.
	URL string
	// ReconnectEnabled turns automatic reconnection on.
	ReconnectEnabled bool
	// ReconnectBaseWait is the wait before the first reconnect attempt;
	// it doubles per attempt up to ReconnectMaxWait.
	ReconnectBaseWait time.Duration
	// ReconnectMaxWait caps the reconnect backoff.
	ReconnectMaxWait time.Duration
	// PingInterval is the period between keepalive pings.
	PingInterval time.Duration
	// PongWait is how long to wait for a pong before the connection is
	// considered dead.
	PongWait time.Duration
	// BufferSize is the capacity of update subscription buffers.
	BufferSize int
	// WriteRate caps outgoing frames per second. The endpoint tolerates
	// bursts, so this is a token bucket rather than a hard window.
	WriteRate rate.Limit
	// WriteBurst is the token bucket burst size.
	WriteBurst int
}

// envelope is the wire shape shared by requests, responses and updates.
// Responses carry a non-nil ID; updates carry a method and no ID.
type envelope struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

type request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

// Conn is a websocket connection to the exchange. It supports
// concurrent request/response calls and method-keyed update streams,
// and reconnects with exponential backoff when enabled.
type Conn struct {
	config  Config
	state   *State
	handler *eventHandler
	logger  zerolog.Logger
	writes  *rate.Limiter

	mu                sync.Mutex
	socket            *gws.Conn
	pending           map[int64]chan envelope
	updates           map[string]*updateStream
	connectedChan     chan struct{}
	stopChan          chan struct{}
	reconnectAttempts int
	nextID            int64

	wg sync.WaitGroup
}

type updateStream struct {
	method string
	dataCh chan json.RawMessage
}

type eventHandler struct {
	conn *Conn
}

// NewConn creates a connection for the given configuration. Zero-valued
// fields get defaults; the connection is not dialed until Connect.
func NewConn(config Config) *Conn {
	if config.ReconnectBaseWait == 0 {
		config.ReconnectBaseWait = 1 * time.Second
	}
	if config.ReconnectMaxWait == 0 {
		config.ReconnectMaxWait = 30 * time.Second
	}
	if config.PingInterval == 0 {
		config.PingInterval = 10 * time.Second
	}
	if config.PongWait == 0 {
		config.PongWait = 20 * time.Second
	}
	if config.BufferSize == 0 {
		config.BufferSize = 100
	}
	if config.WriteRate == 0 {
		config.WriteRate = rate.Limit(100)
	}
	if config.WriteBurst == 0 {
		config.WriteBurst = 20
	}

	c := &Conn{
		config:        config,
		state:         &State{},
		pending:       make(map[int64]chan envelope),
		updates:       make(map[string]*updateStream),
		connectedChan: make(chan struct{}),
		stopChan:      make(chan struct{}),
		logger:        zerolog.Nop(),
		writes:        rate.NewLimiter(config.WriteRate, config.WriteBurst),
	}
	c.state.Store(StateDisconnected)
	c.handler = &eventHandler{conn: c}
	return c
}

// SetLogger configures the connection logger.
func (c *Conn) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {
	h.conn.state.Store(StateConnected)

	h.conn.mu.Lock()
	h.conn.reconnectAttempts = 0
	select {
	case <-h.conn.connectedChan:
	default:
		close(h.conn.connectedChan)
	}
	h.conn.mu.Unlock()

	h.conn.logger.Info().Str("url", h.conn.config.URL).Msg("websocket connected")

	_ = socket.SetDeadline(time.Now().Add(h.conn.config.PingInterval + h.conn.config.PongWait))
}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	h.conn.state.Store(StateDisconnected)

	h.conn.mu.Lock()
	h.conn.connectedChan = make(chan struct{})
	// In-flight calls can never complete on a dead socket.
	for id, ch := range h.conn.pending {
		close(ch)
		delete(h.conn.pending, id)
	}
	h.conn.mu.Unlock()

	h.conn.logger.Warn().Err(err).Str("url", h.conn.config.URL).Msg("websocket disconnected")

	if h.conn.config.ReconnectEnabled {
		select {
		case <-h.conn.stopChan:
			return
		default:
			go h.conn.attemptReconnect()
		}
	}
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.conn.config.PingInterval + h.conn.config.PongWait))
	_ = socket.WritePong(nil)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.conn.config.PingInterval + h.conn.config.PongWait))
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		h.conn.logger.Warn().Err(err).Msg("discarding unparseable websocket frame")
		return
	}

	// Updates identify themselves by method; responses by id.
	if env.Method != "" {
		h.conn.dispatchUpdate(env)
		return
	}
	if env.ID != nil {
		h.conn.resolveCall(*env.ID, env)
	}
}

// dispatchUpdate routes one update frame to its stream. The send
// happens under mu: DropUpdates and Close close dataCh under the same
// lock, so a frame in flight can never hit a closed channel. The send
// is non-blocking, so holding mu here cannot stall the read loop.
func (c *Conn) dispatchUpdate(env envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, ok := c.updates[env.Method]
	if !ok {
		return
	}

	select {
	case stream.dataCh <- env.Params:
	default:
		c.logger.Warn().Str("method", env.Method).Msg("update buffer full, dropping frame")
	}
}

func (c *Conn) resolveCall(id int64, env envelope) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		c.logger.Debug().Int64("id", id).Msg("response for unknown call id")
		return
	}
	ch <- env
	close(ch)
}

// Connect dials the configured URL and waits for the connection to be
// established, the context to expire, or the connection to be closed.
func (c *Conn) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(StateDisconnected, StateConnecting) &&
		!c.state.CompareAndSwap(StateReconnecting, StateConnecting) {
		current := c.state.Load()
		if current == StateConnected {
			return nil
		}
		return fmt.Errorf("invalid state for connect: %s", current)
	}

	socket, _, err := gws.NewClient(c.handler, &gws.ClientOption{
		Addr: c.config.URL,
	})
	if err != nil {
		c.state.Store(StateDisconnected)
		return &core.TransportError{Op: "DIAL " + c.config.URL, Err: err}
	}

	c.mu.Lock()
	c.socket = socket
	connected := c.connectedChan
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		socket.ReadLoop()
	}()

	select {
	case <-connected:
		return nil
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		c.state.Store(StateDisconnected)
		return ctx.Err()
	case <-c.stopChan:
		_ = socket.NetConn().Close()
		c.state.Store(StateClosed)
		return core.ErrClientClosed
	}
}

// Close shuts the connection down and releases every stream and
// in-flight call.
func (c *Conn) Close() error {
	if !c.state.CompareAndSwap(StateConnected, StateClosed) &&
		!c.state.CompareAndSwap(StateConnecting, StateClosed) &&
		!c.state.CompareAndSwap(StateReconnecting, StateClosed) &&
		!c.state.CompareAndSwap(StateDisconnected, StateClosed) {
		return nil
	}

	close(c.stopChan)

	c.mu.Lock()
	if c.socket != nil {
		_ = c.socket.NetConn().Close()
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	for method, stream := range c.updates {
		close(stream.dataCh)
		delete(c.updates, method)
	}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// State returns the current connection state.
func (c *Conn) State() ConnState {
	return c.state.Load()
}

// IsConnected reports whether the connection is live.
func (c *Conn) IsConnected() bool {
	return c.state.Load() == StateConnected
}

// Call sends one request and waits for the matching response. The
// result bytes are the response's "result" field; a non-null "error"
// field is surfaced as an error. Outgoing frames are paced by the
// write limiter.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	c.mu.Lock()
	if c.state.Load() != StateConnected || c.socket == nil {
		c.mu.Unlock()
		return nil, core.ErrNotConnected
	}
	c.nextID++
	id := c.nextID
	ch := make(chan envelope, 1)
	c.pending[id] = ch
	socket := c.socket
	c.mu.Unlock()

	cancelCall := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	data, err := sonic.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		cancelCall()
		return nil, &core.SerializationError{Err: err}
	}

	if err := c.writes.Wait(ctx); err != nil {
		cancelCall()
		return nil, err
	}

	if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
		cancelCall()
		return nil, &core.TransportError{Op: "WRITE " + method, Err: err}
	}

	select {
	case env, ok := <-ch:
		if !ok {
			return nil, core.ErrNotConnected
		}
		if len(env.Error) > 0 && string(env.Error) != "null" {
			return nil, core.ParseAPIError(0, env.Error)
		}
		return env.Result, nil
	case <-ctx.Done():
		cancelCall()
		return nil, ctx.Err()
	case <-c.stopChan:
		cancelCall()
		return nil, core.ErrClientClosed
	}
}

// Updates returns the stream of update params for the given update
// method, creating it on first use. The caller still has to issue the
// matching subscribe call; this only routes the frames.
func (c *Conn) Updates(method string) <-chan json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stream, ok := c.updates[method]; ok {
		return stream.dataCh
	}
	stream := &updateStream{
		method: method,
		dataCh: make(chan json.RawMessage, c.config.BufferSize),
	}
	c.updates[method] = stream
	return stream.dataCh
}

// DropUpdates closes and removes the stream for the given update method.
func (c *Conn) DropUpdates(method string) {
	c.mu.Lock()
	if stream, ok := c.updates[method]; ok {
		close(stream.dataCh)
		delete(c.updates, method)
	}
	c.mu.Unlock()
}

func (c *Conn) attemptReconnect() {
	if !c.state.CompareAndSwap(StateDisconnected, StateReconnecting) {
		return
	}

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		c.mu.Lock()
		attempts := c.reconnectAttempts
		c.reconnectAttempts++
		c.mu.Unlock()

		wait := min(c.config.ReconnectBaseWait*time.Duration(1<<uint(attempts)), c.config.ReconnectMaxWait)
		c.logger.Info().Dur("wait", wait).Int("attempt", attempts+1).Msg("attempting reconnect")

		select {
		case <-time.After(wait):
		case <-c.stopChan:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.Connect(ctx); err != nil {
			c.logger.Error().Err(err).Int("attempt", attempts+1).Msg("reconnect failed")
			cancel()
			c.state.Store(StateReconnecting)
			continue
		}
		cancel()

		c.logger.Info().Msg("reconnected")
		return
	}
}
