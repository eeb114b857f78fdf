package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"matchtrack/internal/infra/memory"
	"matchtrack/internal/infrastructure/config"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			SessionSecret: "test-session-secret",
			CSRFSecret:    "test-csrf-secret",
			SessionTTL:    time.Hour,
		},
		CORS: config.CORSConfig{Origin: "https://matches.example.com"},
		RateLimit: config.RateLimitConfig{
			LoginLimit:  100,
			LoginWindow: time.Minute,
			SyncLimit:   100,
			SyncWindow:  time.Minute,
		},
		Fixtures: config.FixturesConfig{DaysAhead: 14},
	}
}

type testEnv struct {
	srv     *Server
	store   *memory.Store
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv, err := NewServer(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	store := srv.sessions.(*memory.Store)
	return &testEnv{srv: srv, store: store, handler: srv.Handler()}
}

// loginAs 建立 session 並回傳 cookie token 與 CSRF token。
func (e *testEnv) loginAs(t *testing.T, username string) (cookie, csrf string) {
	t.Helper()
	u, err := e.store.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := e.store.Create(context.Background(), u.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return e.srv.codec.Encode(sess.SID), e.srv.csrf.Issue(sess.SID)
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("NoCookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/matches", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
		if body, _ := io.ReadAll(w.Result().Body); string(body) != "unauthorized" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("TamperedSignature", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		r := httptest.NewRequest("GET", "/api/matches", nil)
		r.Header.Set("Cookie", "session="+cookie+"x")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("UnsignedSID", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/matches", nil)
		r.Header.Set("Cookie", "session=justasid")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("RevokedSession", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		sid, _ := env.srv.codec.Decode(cookie)
		env.store.Revoke(context.Background(), sid)

		r := httptest.NewRequest("GET", "/api/matches", nil)
		r.Header.Set("Cookie", "session="+cookie)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("ExpiredSession", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		env.store.SetNow(func() time.Time { return base })
		cookie, _ := env.loginAs(t, "viewer")
		env.store.SetNow(func() time.Time { return base.Add(2 * time.Hour) })
		defer env.store.SetNow(time.Now)

		r := httptest.NewRequest("GET", "/api/matches", nil)
		r.Header.Set("Cookie", "session="+cookie)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("ValidSession", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		r := httptest.NewRequest("GET", "/api/matches", nil)
		r.Header.Set("Cookie", "session="+cookie)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})
}

func TestRequireRole(t *testing.T) {
	env := newTestEnv(t)

	t.Run("UserForbidden", func(t *testing.T) {
		cookie, csrf := env.loginAs(t, "viewer")
		r := httptest.NewRequest("POST", "/api/admin/cleanup", nil)
		r.Header.Set("Cookie", "session="+cookie)
		r.Header.Set(csrfHeaderName, csrf)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
		if body, _ := io.ReadAll(w.Result().Body); string(body) != "forbidden" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		cookie, csrf := env.loginAs(t, "admin")
		r := httptest.NewRequest("POST", "/api/admin/cleanup", nil)
		r.Header.Set("Cookie", "session="+cookie)
		r.Header.Set(csrfHeaderName, csrf)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})

	// 未帶 session 就打 admin 路由：401 而不是 403
	t.Run("AnonymousUnauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/admin/cleanup", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestRequireCSRF(t *testing.T) {
	env := newTestEnv(t)

	t.Run("MissingToken", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		r := httptest.NewRequest("POST", "/api/logout", nil)
		r.Header.Set("Cookie", "session="+cookie)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("WrongToken", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		r := httptest.NewRequest("POST", "/api/logout", nil)
		r.Header.Set("Cookie", "session="+cookie)
		r.Header.Set(csrfHeaderName, "bogus")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
	})

	// 別人 session 的 token 不能跨用
	t.Run("TokenFromOtherSession", func(t *testing.T) {
		cookie, _ := env.loginAs(t, "viewer")
		_, otherCSRF := env.loginAs(t, "admin")
		r := httptest.NewRequest("POST", "/api/logout", nil)
		r.Header.Set("Cookie", "session="+cookie)
		r.Header.Set(csrfHeaderName, otherCSRF)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("ValidToken", func(t *testing.T) {
		cookie, csrf := env.loginAs(t, "viewer")
		r := httptest.NewRequest("POST", "/api/logout", nil)
		r.Header.Set("Cookie", "session="+cookie)
		r.Header.Set(csrfHeaderName, csrf)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest("OPTIONS", "/api/matches/update", nil)
	r.Header.Set("Origin", "https://matches.example.com")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://matches.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), csrfHeaderName) {
		t.Errorf("allow-headers = %q", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}

	r := httptest.NewRequest("GET", "/api/health", nil)
	r.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}
