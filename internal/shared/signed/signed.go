// Package signed produces tamper-evident cookie values of the form
// base64url(payload).base64url(hmac-sha256(payload)).
package signed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid signed value")

// EncodeJSON marshals v and signs the result.
func EncodeJSON(secret []byte, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + Sign(secret, payload), nil
}

// DecodeJSON verifies the signature and unmarshals the payload into dst.
func DecodeJSON(secret []byte, v string, dst any) error {
	payload, sig, ok := strings.Cut(v, ".")
	if !ok || payload == "" || strings.Contains(sig, ".") {
		return ErrInvalid
	}
	if !Verify(secret, payload, sig) {
		return ErrInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalid
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalid
	}
	return nil
}

func Sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func Verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(Sign(secret, payload)), []byte(sig))
}
