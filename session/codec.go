package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrSecretRequired indicates a codec was built without a signing secret.
	ErrSecretRequired = errors.New("session secret required")
	// ErrExpiryRequired indicates Encode was called without an expiry.
	ErrExpiryRequired = errors.New("session expiry required")
)

var encoding = base64.RawURLEncoding.Strict()

type envelope struct {
	Values  map[string]string `json:"v"`
	Expires int64             `json:"exp"`
}

// Codec signs session payloads with HMAC-SHA256.
//
// The first key signs; every key verifies, so secrets can be rotated by
// prepending the new one.
type Codec struct {
	keys [][]byte
}

// NewCodec creates a codec from one or more secrets.
func NewCodec(secrets ...[]byte) (*Codec, error) {
	keys := make([][]byte, 0, len(secrets))
	for _, secret := range secrets {
		if len(secret) == 0 {
			continue
		}
		keys = append(keys, append([]byte(nil), secret...))
	}
	if len(keys) == 0 {
		return nil, ErrSecretRequired
	}
	return &Codec{keys: keys}, nil
}

// Encode serializes values with an absolute expiry and signs the result.
func (c *Codec) Encode(values map[string]string, expiresAt time.Time) (string, error) {
	if expiresAt.IsZero() {
		return "", ErrExpiryRequired
	}
	if values == nil {
		values = map[string]string{}
	}

	payload, err := json.Marshal(envelope{Values: values, Expires: expiresAt.Unix()})
	if err != nil {
		return "", err
	}

	sig := sign(payload, c.keys[0])
	return encoding.EncodeToString(payload) + "." + encoding.EncodeToString(sig), nil
}

// Decode verifies and parses a cookie value. Any structural, signature or
// expiry problem yields ok == false.
func (c *Codec) Decode(value string, now time.Time) (map[string]string, bool) {
	encodedPayload, encodedSig, found := strings.Cut(value, ".")
	if !found || encodedPayload == "" || strings.Contains(encodedSig, ".") {
		return nil, false
	}

	payload, err := encoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, false
	}
	signature, err := encoding.DecodeString(encodedSig)
	if err != nil || len(signature) != sha256.Size {
		return nil, false
	}

	valid := false
	for _, key := range c.keys {
		if hmac.Equal(signature, sign(payload, key)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}
	if env.Expires <= now.Unix() {
		return nil, false
	}
	if env.Values == nil {
		env.Values = map[string]string{}
	}
	return env.Values, true
}

func sign(payload []byte, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	_, _ = h.Write(payload)
	return h.Sum(nil)
}
