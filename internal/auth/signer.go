// Package auth implements WhiteBIT request signing and webhook signature
// verification. Signing is pure computation: the signer performs no I/O,
// holds no shared mutable state, and produces byte-identical output for
// identical inputs.
package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"whitebit/pkg/core"
)

// Authentication header names per the WhiteBIT signing scheme.
const (
	HeaderContentType = "Content-type"
	HeaderAPIKey      = "X-TXC-APIKEY"
	HeaderPayload     = "X-TXC-PAYLOAD"
	HeaderSignature   = "X-TXC-SIGNATURE"
)

// SignedRequest is the output of signing one request. It is constructed
// immediately before the network call and never reused: every request
// carries a fresh nonce, hence a fresh signature.
type SignedRequest struct {
	// Body is the canonical JSON bytes. The signature is computed over
	// exactly these bytes, so they must be transmitted verbatim; any
	// re-encoding invalidates the signature.
	Body []byte
	// Headers carries Content-type, X-TXC-APIKEY, X-TXC-PAYLOAD and
	// X-TXC-SIGNATURE for the request.
	Headers map[string]string
}

// Signer produces authenticated request material from an API key pair.
// The zero value is unusable; construct with NewSigner.
type Signer struct {
	apiKey string
	secret []byte
}

// NewSigner creates a Signer for the given credentials. The secret is
// used as given; an empty secret still signs syntactically (the
// exchange, not the signer, rejects bad keys).
func NewSigner(apiKey, secretKey string) *Signer {
	return &Signer{
		apiKey: apiKey,
		secret: []byte(secretKey),
	}
}

// Sign builds the canonical body for the endpoint path and request body,
// injecting the request path and nonce, and derives the authentication
// headers from it. The body must encode to a JSON object (or be nil) and
// must not itself contain "request" or "nonce" keys.
//
// The nonce is supplied by the caller, typically Unix epoch seconds, so
// the function stays deterministic and testable.
func (s *Signer) Sign(path string, body any, nonce int64) (*SignedRequest, error) {
	canonical, err := CanonicalBody(path, body, nonce)
	if err != nil {
		return nil, err
	}

	payload := base64.StdEncoding.EncodeToString(canonical)
	mac := hmac.New(sha512.New, s.secret)
	mac.Write(canonical)
	signature := hex.EncodeToString(mac.Sum(nil))

	return &SignedRequest{
		Body: canonical,
		Headers: map[string]string{
			HeaderContentType: "application/json",
			HeaderAPIKey:      s.apiKey,
			HeaderPayload:     payload,
			HeaderSignature:   signature,
		},
	}, nil
}

// CanonicalBody serializes the request body to the minimal-whitespace
// JSON encoding with "request" and "nonce" injected first, followed by
// the body fields in their declared order. The same bytes are used both
// for signing and for transmission.
func CanonicalBody(path string, body any, nonce int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"request":`)
	quoted, err := sonic.Marshal(path)
	if err != nil {
		return nil, &core.SerializationError{Err: err}
	}
	buf.Write(quoted)
	buf.WriteString(`,"nonce":`)
	buf.WriteString(strconv.FormatInt(nonce, 10))

	if body == nil {
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	encoded, err := sonic.Marshal(body)
	if err != nil {
		return nil, &core.SerializationError{Err: err}
	}

	switch {
	case bytes.Equal(encoded, []byte("null")), bytes.Equal(encoded, []byte("{}")):
		buf.WriteByte('}')
	case len(encoded) > 1 && encoded[0] == '{':
		if err := checkReservedKeys(encoded); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(encoded[1:])
	default:
		return nil, &core.SerializationError{
			Err: fmt.Errorf("request body must encode to a JSON object, got %q", truncate(encoded, 32)),
		}
	}

	return buf.Bytes(), nil
}

// checkReservedKeys rejects bodies that already carry the injected keys;
// a duplicate key would shadow the signed path or nonce on the server.
func checkReservedKeys(encoded []byte) error {
	var fields map[string]any
	if err := sonic.Unmarshal(encoded, &fields); err != nil {
		return &core.SerializationError{Err: err}
	}
	for _, reserved := range []string{"request", "nonce"} {
		if _, ok := fields[reserved]; ok {
			return &core.SerializationError{
				Err: fmt.Errorf("request body must not contain reserved key %q", reserved),
			}
		}
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// VerifySignature recomputes the HMAC-SHA512 of rawPayload keyed by
// secret and compares it to signatureHex in constant time. It returns
// false for any mismatch, including malformed hex input; it never
// reveals how much of the signature matched.
func VerifySignature(secret, rawPayload []byte, signatureHex string) bool {
	supplied, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, secret)
	mac.Write(rawPayload)
	return hmac.Equal(mac.Sum(nil), supplied)
}
