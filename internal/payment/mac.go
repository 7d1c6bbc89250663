package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA256 of data under key.
func Sign(key, data string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyMAC reports whether mac is the signature of data under key.
// The comparison is constant-time and ignores hex case.
func VerifyMAC(key, data, mac string) bool {
	expected := Sign(key, data)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(mac))))
}
