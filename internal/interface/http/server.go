// Package httpapi 提供對外的 REST API。
package httpapi

import (
	"database/sql"
	"log"
	"net/http"

	appAuth "matchtrack/internal/application/auth"
	appMatch "matchtrack/internal/application/match"
	appPref "matchtrack/internal/application/preference"
	authDomain "matchtrack/internal/domain/auth"
	matchDomain "matchtrack/internal/domain/match"
	prefDomain "matchtrack/internal/domain/preference"
	"matchtrack/internal/domain/ratelimit"
	"matchtrack/internal/infra/memory"
	authinfra "matchtrack/internal/infrastructure/auth"
	"matchtrack/internal/infrastructure/config"
	"matchtrack/internal/infrastructure/external/footballdata"
	"matchtrack/internal/infrastructure/persistence/postgres"

	"github.com/go-chi/chi/v5"
)

// Server 集中 API 的相依與路由。
type Server struct {
	cfg   config.Config
	db    *sql.DB
	codec *authinfra.SessionCodec
	csrf  *authinfra.CSRF

	sessions authDomain.SessionStore
	limiter  ratelimit.Limiter
	prefs    prefDomain.Store

	loginUC   *appAuth.LoginUseCase
	logoutUC  *appAuth.LogoutUseCase
	cleanupUC *appAuth.CleanupUseCase
	listUC    *appMatch.ListUseCase
	updateUC  *appMatch.UpdateUseCase
	importUC  *appMatch.ImportUseCase
	prefUC    *appPref.UseCase
}

// NewServer 建立 Server 並完成依賴注入。db 為 nil 時改用
// 記憶體儲存並植入示範資料，供本機開發。
func NewServer(cfg config.Config, db *sql.DB) (*Server, error) {
	codec, err := authinfra.NewSessionCodec(cfg.Auth.SessionSecret)
	if err != nil {
		return nil, err
	}
	csrf, err := authinfra.NewCSRF(cfg.Auth.CSRFSecret)
	if err != nil {
		return nil, err
	}

	var (
		users    authDomain.UserRepository
		sessions authDomain.SessionStore
		prefs    prefDomain.Store
		matches  matchDomain.Repository
		limiter  ratelimit.Limiter
	)
	if db != nil {
		users = postgres.NewUserRepo(db)
		sessions = postgres.NewSessionRepo(db)
		prefs = postgres.NewPreferenceRepo(db)
		matches = postgres.NewMatchRepo(db)
		limiter = postgres.NewRateLimitRepo(db)
	} else {
		log.Println("[init] no database configured, using in-memory store")
		store := memory.NewStore()
		store.SeedUsers()
		store.SeedMatches()
		users = store
		sessions = store
		prefs = store
		matches = store
		limiter = store
	}

	fixtures := footballdata.NewClient(cfg.Fixtures.BaseURL, cfg.Fixtures.APIToken)

	s := &Server{
		cfg:       cfg,
		db:        db,
		codec:     codec,
		csrf:      csrf,
		sessions:  sessions,
		limiter:   limiter,
		prefs:     prefs,
		loginUC:   appAuth.NewLoginUseCase(users, sessions, authinfra.BcryptHasher{}, cfg.Auth.SessionTTL),
		logoutUC:  appAuth.NewLogoutUseCase(sessions),
		cleanupUC: appAuth.NewCleanupUseCase(sessions),
		listUC:    appMatch.NewListUseCase(matches, prefs),
		updateUC:  appMatch.NewUpdateUseCase(matches),
		importUC:  appMatch.NewImportUseCase(fixtures, matches, cfg.Fixtures.DaysAhead),
		prefUC:    appPref.NewUseCase(prefs),
	}
	return s, nil
}

// Handler 組出完整路由。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(s.corsMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Get("/api/me", s.handleMe)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/matches", s.handleListMatches)
		r.Get("/api/preferences", s.handleGetPreferences)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCSRF)

			r.Post("/api/logout", s.handleLogout)
			r.Post("/api/matches/update", s.handleUpdateMatch)
			r.Post("/api/preferences", s.handleSavePreferences)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(authDomain.RoleAdmin))

				r.Post("/api/admin/update-matches", s.handleImportMatches)
				r.Post("/api/admin/cleanup", s.handleCleanup)
			})
		})
	})

	return r
}
