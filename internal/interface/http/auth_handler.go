package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	appAuth "matchtrack/internal/application/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// clientIP 依序看 X-Forwarded-For、X-Real-IP，最後退回 RemoteAddr。
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimited 對 key 計數一次；超限時直接寫出 429 並回 true。
// 限流器故障視為未超限，登入不因限流儲存異常而全面癱瘓。
func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request, key string, limit int, window time.Duration) bool {
	dec, err := s.limiter.Hit(r.Context(), key, limit, window)
	if err != nil {
		log.Printf("[ratelimit] hit %s: %v", key, err)
		return false
	}
	if dec.Limited {
		w.Header().Set("Retry-After", strconv.Itoa(int(dec.RetryAfter.Seconds())))
		writeError(w, http.StatusTooManyRequests, "rate_limited")
		return true
	}
	return false
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request")
			return
		}
	}

	if s.rateLimited(w, r, "login:ip:"+clientIP(r), s.cfg.RateLimit.LoginLimit, s.cfg.RateLimit.LoginWindow) {
		return
	}
	if req.Username != "" {
		if s.rateLimited(w, r, "login:user:"+req.Username, s.cfg.RateLimit.LoginLimit, s.cfg.RateLimit.LoginWindow) {
			return
		}
	}

	res, err := s.loginUC.Execute(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, appAuth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	case errors.Is(err, appAuth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeSessionCookie(w, s.codec.Encode(res.Session.SID), s.cfg.Auth.SessionTTL)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"csrf": s.csrf.Issue(res.Session.SID),
		"auth": map[string]any{
			"isAuthenticated": true,
			"role":            res.User.Role,
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := s.logoutUC.Execute(r.Context(), ident.SID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleMe 是唯一對匿名開放的身分端點：沒有 session 不回 401，
// 而是回報未登入狀態與預設偏好。
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, authed := s.resolveIdentity(r)

	payload := map[string]any{
		"ok": true,
		"auth": map[string]any{
			"isAuthenticated": false,
			"role":            "guest",
		},
	}

	userID := ""
	if authed {
		userID = ident.UserID
		payload["auth"] = map[string]any{
			"isAuthenticated": true,
			"role":            ident.Role,
		}
		payload["csrf"] = s.csrf.Issue(ident.SID)
	}

	prefs, err := s.prefUC.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	payload["preferences"] = prefs

	writeJSON(w, http.StatusOK, payload)
}
