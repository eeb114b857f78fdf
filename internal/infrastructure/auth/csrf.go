package authinfra

import "errors"

// CSRF 由 sid 決定性推導防偽 token：HMAC(csrfSecret, sid)。
// 不需要伺服端儲存，session 撤銷即全部失效。
type CSRF struct {
	secret []byte
}

// NewCSRF 建立 CSRF 簽發/驗證器；secret 不得為空。
func NewCSRF(secret string) (*CSRF, error) {
	if secret == "" {
		return nil, errors.New("csrf secret is required")
	}
	return &CSRF{secret: []byte(secret)}, nil
}

// Issue 回傳綁定該 sid 的 token。
func (c *CSRF) Issue(sid string) string {
	return Sign(c.secret, sid)
}

// Verify 重算並以恆定時間比較；缺漏一律視為驗證失敗。
func (c *CSRF) Verify(sid, supplied string) bool {
	if sid == "" || supplied == "" {
		return false
	}
	return ConstantTimeEquals(supplied, c.Issue(sid))
}
