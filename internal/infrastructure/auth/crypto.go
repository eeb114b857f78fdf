package authinfra

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

const sidEntropyBytes = 24

// Sign 以 HMAC-SHA256 簽章訊息，輸出 base64url（可直接放進 cookie 與 header）。
func Sign(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEquals 以恆定時間比較兩字串；長度不同直接視為不相等。
func ConstantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewSID 產生 24 bytes 亂數的 session 識別碼，base64url 編碼。
func NewSID() (string, error) {
	buf := make([]byte, sidEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
