package session

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func mustCodec(t *testing.T, secrets ...string) *Codec {
	t.Helper()
	keys := make([][]byte, 0, len(secrets))
	for _, secret := range secrets {
		keys = append(keys, []byte(secret))
	}
	codec, err := NewCodec(keys...)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(); err != ErrSecretRequired {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
	if _, err := NewCodec([]byte{}, nil); err != ErrSecretRequired {
		t.Fatalf("expected ErrSecretRequired for empty secrets, got %v", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	values := map[string]string{UserIDKey: "user-1", "theme": "dark"}

	encoded, err := codec.Encode(values, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, ok := codec.Decode(encoded, testNow)
	if !ok {
		t.Fatalf("expected cookie to decode")
	}
	if len(decoded) != len(values) {
		t.Fatalf("expected %d values, got %v", len(values), decoded)
	}
	for key, value := range values {
		if decoded[key] != value {
			t.Fatalf("expected %s=%s, got %q", key, value, decoded[key])
		}
	}
}

func TestCodecRejectsTamperedSignature(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	encoded, err := codec.Encode(map[string]string{UserIDKey: "user-1"}, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dot := strings.IndexByte(encoded, '.')
	for i := dot + 1; i < len(encoded); i++ {
		replacement := byte('A')
		if encoded[i] == 'A' {
			replacement = 'B'
		}
		tampered := encoded[:i] + string(replacement) + encoded[i+1:]
		if values, ok := codec.Decode(tampered, testNow); ok {
			t.Fatalf("position %d: tampered cookie decoded to %v", i, values)
		}
	}
}

func TestCodecRejectsForgedPayload(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	encoded, err := codec.Encode(map[string]string{UserIDKey: "user-1"}, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, sig, _ := strings.Cut(encoded, ".")

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"v":{"userId":"admin"},"exp":9999999999}`))
	if _, ok := codec.Decode(forged+"."+sig, testNow); ok {
		t.Fatalf("expected forged payload to be rejected")
	}
}

func TestCodecRejectsOtherSecret(t *testing.T) {
	encoded, err := mustCodec(t, "one").Encode(map[string]string{UserIDKey: "user-1"}, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := mustCodec(t, "two").Decode(encoded, testNow); ok {
		t.Fatalf("expected decode with another secret to fail")
	}
}

func TestCodecKeyRotation(t *testing.T) {
	encoded, err := mustCodec(t, "old").Encode(map[string]string{UserIDKey: "user-1"}, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	rotated := mustCodec(t, "new", "old")
	values, ok := rotated.Decode(encoded, testNow)
	if !ok || values[UserIDKey] != "user-1" {
		t.Fatalf("expected old cookie to verify after rotation")
	}
}

func TestCodecRejectsExpired(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	encoded, err := codec.Encode(map[string]string{UserIDKey: "user-1"}, testNow.Add(-time.Second))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := codec.Decode(encoded, testNow); ok {
		t.Fatalf("expected expired cookie to be rejected")
	}
}

func TestCodecRequiresExpiry(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	if _, err := codec.Encode(nil, time.Time{}); err != ErrExpiryRequired {
		t.Fatalf("expected ErrExpiryRequired, got %v", err)
	}
}

func TestCodecRejectsMalformed(t *testing.T) {
	codec := mustCodec(t, "s3cr3t")
	signed := func(payload string) string {
		raw := []byte(payload)
		return base64.RawURLEncoding.EncodeToString(raw) + "." + base64.RawURLEncoding.EncodeToString(sign(raw, []byte("s3cr3t")))
	}

	cases := map[string]string{
		"empty":            "",
		"no separator":     "abc",
		"extra separator":  "a.b.c",
		"bad base64":       "***.***",
		"short signature":  "e30.AAAA",
		"non-string value": signed(`{"v":{"userId":42},"exp":9999999999}`),
		"not json":         signed(`not json`),
		"missing expiry":   signed(`{"v":{"userId":"user-1"}}`),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			if values, ok := codec.Decode(value, testNow); ok {
				t.Fatalf("expected rejection, got %v", values)
			}
		})
	}
}
