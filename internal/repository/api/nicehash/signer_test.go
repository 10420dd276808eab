package nicehash

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhgate/internal/clock"
)

var testCreds = Credentials{
	Key:            "4ebd366d-76f4-4400-a3b6-e51515d054d6",
	Secret:         "fd8a1652-728b-42fe-82b8-f623e56da8850750f5bf-ce66-4ca7-8b84-93651abc723b",
	OrganizationID: "da41b3bc-3d0b-4226-b7ea-aee73f94a518",
}

const (
	testTime  int64 = 1543597115712
	testNonce       = "9675d0f8-1325-484b-9594-c9d6d3268890"
)

type seqNonces struct {
	n int
}

func (s *seqNonces) Nonce() string {
	s.n++
	return "nonce-" + strconv.Itoa(s.n)
}

func TestSignAtVectors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		query  string
		body   []byte
		digest string
	}{
		{
			name:   "get with query",
			method: "GET",
			path:   "/main/api/v2/hashpower/orderBook",
			query:  "algorithm=X16R&page=0&size=100",
			digest: "21e6a16f6eb34ac476d59f969f548b47fffe3fea318d9c99e77fc710d2fed798",
		},
		{
			name:   "post with body",
			method: "POST",
			path:   "/main/api/v2/hashpower/order",
			body:   []byte(`{"amount":"0.005"}`),
			digest: "885b8a92fa4272049ff6fc5821c3f4a9f5d2b1c01f6789cc4585f168ce5349d1",
		},
		{
			name:   "streaming channel",
			method: ChannelMethod,
			path:   ChannelPath,
			digest: "b81a871fb9b012369b8060adb40ce0fc69a970fbbee6936d5ace865474667d13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := SignAt(testCreds, testTime, testNonce, "req-1", tt.method, tt.path, tt.query, tt.body)
			require.NoError(t, err)

			assert.Equal(t, tt.digest, env.Digest)
			assert.Equal(t, testCreds.Key+":"+tt.digest, env.Auth)
			assert.Equal(t, testTime, env.Time)
			assert.Equal(t, testNonce, env.Nonce)
			assert.Equal(t, "req-1", env.RequestID)
		})
	}
}

func TestSignAtIsDeterministic(t *testing.T) {
	a, err := SignAt(testCreds, testTime, testNonce, "x", "GET", "/p", "a=1", nil)
	require.NoError(t, err)
	b, err := SignAt(testCreds, testTime, testNonce, "y", "GET", "/p", "a=1", nil)
	require.NoError(t, err)

	require.Equal(t, a.Digest, b.Digest, "request id is not signed")
}

func TestSingleFieldChangesDigest(t *testing.T) {
	base, err := SignAt(testCreds, testTime, testNonce, "", "GET", "/p", "a=1", []byte(`{}`))
	require.NoError(t, err)

	otherOrg := testCreds
	otherOrg.OrganizationID = "other"
	otherKey := testCreds
	otherKey.Key = "other"
	otherSecret := testCreds
	otherSecret.Secret = "other"

	variants := map[string]func() (Envelope, error){
		"time":   func() (Envelope, error) { return SignAt(testCreds, testTime+1, testNonce, "", "GET", "/p", "a=1", []byte(`{}`)) },
		"nonce":  func() (Envelope, error) { return SignAt(testCreds, testTime, "n2", "", "GET", "/p", "a=1", []byte(`{}`)) },
		"method": func() (Envelope, error) { return SignAt(testCreds, testTime, testNonce, "", "POST", "/p", "a=1", []byte(`{}`)) },
		"path":   func() (Envelope, error) { return SignAt(testCreds, testTime, testNonce, "", "GET", "/q", "a=1", []byte(`{}`)) },
		"query":  func() (Envelope, error) { return SignAt(testCreds, testTime, testNonce, "", "GET", "/p", "a=2", []byte(`{}`)) },
		"body":   func() (Envelope, error) { return SignAt(testCreds, testTime, testNonce, "", "GET", "/p", "a=1", []byte(`[]`)) },
		"org":    func() (Envelope, error) { return SignAt(otherOrg, testTime, testNonce, "", "GET", "/p", "a=1", []byte(`{}`)) },
		"key":    func() (Envelope, error) { return SignAt(otherKey, testTime, testNonce, "", "GET", "/p", "a=1", []byte(`{}`)) },
		"secret": func() (Envelope, error) { return SignAt(otherSecret, testTime, testNonce, "", "GET", "/p", "a=1", []byte(`{}`)) },
	}

	for name, sign := range variants {
		t.Run(name, func(t *testing.T) {
			env, err := sign()
			require.NoError(t, err)
			assert.NotEqual(t, base.Digest, env.Digest)
		})
	}
}

func TestCanonicalMessageLayout(t *testing.T) {
	msg := CanonicalMessage(testCreds, testTime, testNonce, "GET", "/p", "", nil)
	parts := bytes.Split(msg, []byte{0})

	require.Len(t, parts, 9)
	assert.Equal(t, testCreds.Key, string(parts[0]))
	assert.Equal(t, "1543597115712", string(parts[1]))
	assert.Empty(t, parts[3])
	assert.Equal(t, testCreds.OrganizationID, string(parts[4]))
	assert.Empty(t, parts[5])
	assert.Empty(t, parts[8])

	withBody := CanonicalMessage(testCreds, testTime, testNonce, "POST", "/p", "", []byte(`{"a":1}`))
	assert.True(t, bytes.HasSuffix(withBody, []byte("\x00\x00{\"a\":1}")))

	// an empty body adds no field
	assert.Equal(t, msg, CanonicalMessage(testCreds, testTime, testNonce, "GET", "/p", "", []byte{}))
}

func TestChannelMessageEndsWithSeparator(t *testing.T) {
	msg := CanonicalMessage(testCreds, testTime, testNonce, ChannelMethod, ChannelPath, "", nil)
	require.True(t, bytes.HasSuffix(msg, []byte("\x00wss\x00my\x00")))
}

func TestEncodedBodyMatchesVector(t *testing.T) {
	body, err := encodeBody(&refillBody{Amount: decimal.RequireFromString("0.005")})
	require.NoError(t, err)
	require.Equal(t, `{"amount":"0.005"}`, string(body))

	env, err := SignAt(testCreds, testTime, testNonce, "", "POST", "/main/api/v2/hashpower/order", "", body)
	require.NoError(t, err)
	require.Equal(t, "885b8a92fa4272049ff6fc5821c3f4a9f5d2b1c01f6789cc4585f168ce5349d1", env.Digest)
}

func TestSignAtMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		field string
	}{
		{"key", Credentials{Secret: "s", OrganizationID: "o"}, "Key"},
		{"secret", Credentials{Key: "k", OrganizationID: "o"}, "Secret"},
		{"org", Credentials{Key: "k", Secret: "s"}, "OrganizationID"},
		{"nul", Credentials{Key: "k\x00", Secret: "s", OrganizationID: "o"}, "Key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SignAt(tt.creds, testTime, testNonce, "", "GET", "/", "", nil)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSignerUsesClockAndNonces(t *testing.T) {
	now := time.UnixMilli(testTime)
	s, err := NewSigner(testCreds, clock.Fixed(now), &seqNonces{})
	require.NoError(t, err)

	env, err := s.Sign("GET", "/main/api/v2/hashpower/orderBook", "algorithm=X16R&page=0&size=100", nil)
	require.NoError(t, err)

	assert.Equal(t, testTime, env.Time)
	assert.Equal(t, "nonce-1", env.Nonce)
	assert.Equal(t, "nonce-2", env.RequestID)

	h := env.Header()
	assert.Equal(t, "1543597115712", h.Get(HeaderTime))
	assert.Equal(t, "nonce-1", h.Get(HeaderNonce))
	assert.Equal(t, testCreds.OrganizationID, h.Get(HeaderOrganizationID))
	assert.Equal(t, "nonce-2", h.Get(HeaderRequestID))
	assert.Equal(t, env.Auth, h.Get(HeaderAuth))
	assert.Equal(t, ContentTypeJSON, h.Get(HeaderContentType))
}

func TestNewSignerRejectsMissingCredentials(t *testing.T) {
	_, err := NewSigner(Credentials{Key: "k"}, nil, nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCredentialsRedactSecret(t *testing.T) {
	assert.NotContains(t, testCreds.String(), testCreds.Secret)
	assert.NotContains(t, testCreds.LogValue().String(), testCreds.Secret)
}

func TestUUIDSourceIsUnique(t *testing.T) {
	var src UUIDSource
	a, b := src.Nonce(), src.Nonce()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
