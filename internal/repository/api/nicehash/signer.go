package nicehash

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"nhgate/internal/clock"
)

const (
	HeaderTime           = "X-Time"
	HeaderNonce          = "X-Nonce"
	HeaderOrganizationID = "X-Organization-Id"
	HeaderRequestID      = "X-Request-Id"
	HeaderAuth           = "X-Auth"
	HeaderContentType    = "Content-Type"

	ContentTypeJSON = "application/json"

	// The streaming channel signs these in place of method and path, with an
	// empty query.
	ChannelMethod = "wss"
	ChannelPath   = "my"
)

// NonceSource hands out unique tokens for X-Nonce and X-Request-Id.
type NonceSource interface {
	Nonce() string
}

// UUIDSource produces random version 4 UUIDs.
type UUIDSource struct{}

func (UUIDSource) Nonce() string {
	return uuid.NewString()
}

// Envelope is the authentication material for one request or one streaming
// connection. RequestID is sent along but is not signed.
type Envelope struct {
	Time           int64
	Nonce          string
	Digest         string
	Auth           string
	OrganizationID string
	RequestID      string
}

// Apply writes the auth headers and the JSON content type to h.
func (e Envelope) Apply(h http.Header) {
	h.Set(HeaderTime, strconv.FormatInt(e.Time, 10))
	h.Set(HeaderNonce, e.Nonce)
	h.Set(HeaderOrganizationID, e.OrganizationID)
	h.Set(HeaderRequestID, e.RequestID)
	h.Set(HeaderAuth, e.Auth)
	h.Set(HeaderContentType, ContentTypeJSON)
}

// Header returns a fresh header set carrying the envelope.
func (e Envelope) Header() http.Header {
	h := make(http.Header)
	e.Apply(h)
	return h
}

// CanonicalMessage builds the NUL separated byte sequence that gets signed:
// key, time, nonce, "", organization id, "", method, path, query and, only
// when there is one, the body exactly as sent.
func CanonicalMessage(creds Credentials, timestamp int64, nonce, method, path, query string, body []byte) []byte {
	fields := [...]string{
		creds.Key,
		strconv.FormatInt(timestamp, 10),
		nonce,
		"",
		creds.OrganizationID,
		"",
		method,
		path,
		query,
	}

	var buf bytes.Buffer
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(0)
		}
		buf.WriteString(f)
	}

	if len(body) > 0 {
		buf.WriteByte(0)
		buf.Write(body)
	}

	return buf.Bytes()
}

// Digest is the hex encoded HMAC-SHA256 of message keyed by secret.
func Digest(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Signer turns request descriptors into envelopes using the current time and
// fresh nonces.
type Signer struct {
	creds  Credentials
	clock  clock.Clock
	nonces NonceSource
}

func NewSigner(creds Credentials, c clock.Clock, nonces NonceSource) (*Signer, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = clock.System{}
	}
	if nonces == nil {
		nonces = UUIDSource{}
	}

	return &Signer{creds: creds, clock: c, nonces: nonces}, nil
}

// SignAt is the pure form of Sign: every input is supplied by the caller.
func SignAt(creds Credentials, timestamp int64, nonce, requestID, method, path, query string, body []byte) (Envelope, error) {
	if err := creds.Validate(); err != nil {
		return Envelope{}, err
	}

	digest := Digest(creds.Secret, CanonicalMessage(creds, timestamp, nonce, method, path, query, body))

	return Envelope{
		Time:           timestamp,
		Nonce:          nonce,
		Digest:         digest,
		Auth:           creds.Key + ":" + digest,
		OrganizationID: creds.OrganizationID,
		RequestID:      requestID,
	}, nil
}

// Sign signs a REST request. body must be the exact bytes that will be sent.
func (s *Signer) Sign(method, path, query string, body []byte) (Envelope, error) {
	return SignAt(s.creds, s.clock.Now().UnixMilli(), s.nonces.Nonce(), s.nonces.Nonce(), method, path, query, body)
}

// SignChannel signs the streaming handshake.
func (s *Signer) SignChannel() (Envelope, error) {
	return s.Sign(ChannelMethod, ChannelPath, "", nil)
}

func (s *Signer) Credentials() Credentials {
	return s.creds
}
