package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	authDomain "matchtrack/internal/domain/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity 為通過認證的請求身分。
type Identity struct {
	SID    string
	UserID string
	Role   authDomain.Role
}

// IdentityFrom 取出 requireAuth 放進 context 的身分。
func IdentityFrom(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.cfg.CORS.Origin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-CSRF, Cookie")
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("[HTTP] %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// resolveIdentity 從 cookie 解出 sid 並查 session。任一步失敗都回
// ErrNoSession 等價結果；儲存層故障視同無 session（fail closed），
// 但會留下 log 以便排查。
func (s *Server) resolveIdentity(r *http.Request) (Identity, bool) {
	token := ExtractSessionValue(r)
	if token == "" {
		return Identity{}, false
	}
	sid, ok := s.codec.Decode(token)
	if !ok {
		return Identity{}, false
	}
	sess, err := s.sessions.Lookup(r.Context(), sid)
	if err != nil {
		if !errors.Is(err, authDomain.ErrNoSession) {
			log.Printf("[auth] session lookup: %v", err)
		}
		return Identity{}, false
	}
	return Identity{SID: sid, UserID: sess.UserID, Role: sess.Role}, true
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := s.resolveIdentity(r)
		if !ok {
			writeUnauthorized(w)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole 必須掛在 requireAuth 之後。
func (s *Server) requireRole(role authDomain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFrom(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if ident.Role != role {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireCSRF 驗證寫入請求帶的 X-CSRF。token 綁定 sid，
// 讀取方法不檢查。
func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		ident, ok := IdentityFrom(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		if !s.csrf.Verify(ident.SID, r.Header.Get(csrfHeaderName)) {
			writeForbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
