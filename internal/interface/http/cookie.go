package httpapi

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	sessionCookieName = "session"
	csrfHeaderName    = "X-CSRF"
)

// 後備方案：直接掃整串 Cookie 標頭。鍵名比對不分大小寫。
var sessionCookiePattern = regexp.MustCompile(`(?i)(?:^|;\s*)session=([^;]+)`)

// ExtractCookieHeader 把多個 Cookie 標頭併成一串。部分代理會把
// cookie 拆成多個標頭送進來，逐一比對會漏。
func ExtractCookieHeader(r *http.Request) string {
	values := r.Header.Values("Cookie")
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, "; ")
}

// ExtractSessionValue 從 Cookie 標頭取出 session cookie 的值。
// 先逐對解析，解析不出來再用 regexp 後備。找不到回空字串。
func ExtractSessionValue(r *http.Request) string {
	header := ExtractCookieHeader(r)
	if header == "" {
		return ""
	}

	for _, pair := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), sessionCookieName) {
			continue
		}
		value = strings.TrimSpace(value)
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		if value != "" {
			return value
		}
	}

	if m := sessionCookiePattern.FindStringSubmatch(header); m != nil {
		value := m[1]
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		return value
	}
	return ""
}

func writeSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
