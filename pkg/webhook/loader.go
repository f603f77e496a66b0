// Package webhook verifies and dispatches incoming WhiteBIT webhook
// deliveries. A delivery carries the base64 payload and its
// HMAC-SHA512 signature in headers; the signature is checked over the
// raw payload header bytes before anything is decoded, so malformed or
// forged payloads never reach JSON parsing.
package webhook

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"whitebit/internal/auth"
	"whitebit/pkg/core"
)

// Handler processes one verified webhook request.
type Handler func(req *Request) error

// Loader validates webhook deliveries and routes them to registered
// handlers.
type Loader struct {
	key      string
	secret   []byte
	handlers map[string]Handler
	logger   zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader builds a Loader for the given webhook credentials.
func NewLoader(webhookKey, webhookSecret string, opts ...Option) (*Loader, error) {
	if webhookKey == "" {
		return nil, core.NewConfigError("webhookKey", "must not be empty")
	}
	if webhookSecret == "" {
		return nil, core.NewConfigError("webhookSecret", "must not be empty")
	}

	l := &Loader{
		key:      webhookKey,
		secret:   []byte(webhookSecret),
		handlers: make(map[string]Handler),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// RegisterHandler installs the handler for a webhook method, replacing
// any previous one.
func (l *Loader) RegisterHandler(method string, handler Handler) {
	l.handlers[method] = handler
}

// ValidateHeaders checks a delivery's headers and returns the decoded
// request when everything holds. The checks run strictly in order:
// required headers present, API key match, signature over the raw
// payload header bytes, and only then base64 and JSON decoding with the
// id, method and params fields required. Any failure yields nil, false.
func (l *Loader) ValidateHeaders(headers http.Header) (*Request, bool) {
	apiKey := headers.Get(auth.HeaderAPIKey)
	payload := headers.Get(auth.HeaderPayload)
	signature := headers.Get(auth.HeaderSignature)
	if apiKey == "" || payload == "" || signature == "" {
		l.logger.Warn().Msg("webhook delivery missing required headers")
		return nil, false
	}

	if apiKey != l.key {
		l.logger.Warn().Msg("webhook delivery with unknown api key")
		return nil, false
	}

	if !auth.VerifySignature(l.secret, []byte(payload), signature) {
		l.logger.Warn().Msg("webhook delivery failed signature verification")
		return nil, false
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		l.logger.Warn().Err(err).Msg("webhook payload is not valid base64")
		return nil, false
	}

	var req Request
	if err := sonic.Unmarshal(decoded, &req); err != nil {
		l.logger.Warn().Err(err).Msg("webhook payload is not valid json")
		return nil, false
	}
	if req.ID == "" || req.Method == "" || len(req.Params) == 0 {
		l.logger.Warn().Msg("webhook payload missing id, method or params")
		return nil, false
	}
	return &req, true
}

// HandleRequest dispatches a verified request to its registered
// handler. Methods without a handler yield core.ErrUnknownMethod so
// receivers can acknowledge deliveries they do not care about.
func (l *Loader) HandleRequest(req *Request) error {
	handler, ok := l.handlers[req.Method]
	if !ok {
		return core.ErrUnknownMethod
	}
	return handler(req)
}

// HTTPHandler adapts the loader to net/http. Deliveries failing header
// validation get 400; handler errors and unknown methods get 500 and
// 404 respectively, everything else 200.
func (l *Loader) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := l.ValidateHeaders(r.Header)
		if !ok {
			http.Error(w, "invalid webhook request", http.StatusBadRequest)
			return
		}
		if err := l.HandleRequest(req); err != nil {
			if errors.Is(err, core.ErrUnknownMethod) {
				http.Error(w, "unknown webhook method", http.StatusNotFound)
				return
			}
			http.Error(w, "webhook handler failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
