package authinfra

import (
	"errors"
	"strings"
)

// token 格式為 "<sid>.<sig>"；base64url 字母表不含 '.'，
// 但解碼仍由右側切分，不假設 sid 無分隔字元。
const tokenSeparator = "."

// SessionCodec 將 sid 編碼為防竄改的 cookie token。
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec 建立 codec；secret 不得為空。
func NewSessionCodec(secret string) (*SessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &SessionCodec{secret: []byte(secret)}, nil
}

// Encode 回傳 sid 加上其簽章。
func (c *SessionCodec) Encode(sid string) string {
	return sid + tokenSeparator + Sign(c.secret, sid)
}

// Decode 驗章後取回 sid；任何不合格式或簽章不符都回傳 false。
func (c *SessionCodec) Decode(token string) (string, bool) {
	idx := strings.LastIndex(token, tokenSeparator)
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}
	sid, sig := token[:idx], token[idx+1:]
	if !ConstantTimeEquals(sig, Sign(c.secret, sid)) {
		return "", false
	}
	return sid, true
}
