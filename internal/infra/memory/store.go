package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	authDomain "matchtrack/internal/domain/auth"
	matchDomain "matchtrack/internal/domain/match"
	"matchtrack/internal/domain/preference"
	"matchtrack/internal/domain/ratelimit"
	authinfra "matchtrack/internal/infrastructure/auth"

	"github.com/google/uuid"
)

// Store 為無 DB 時使用的記憶體資料庫，供本機開發與測試。
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]authDomain.User // id -> user
	byName   map[string]string          // username -> id
	sessions map[string]authDomain.Session
	prefs    map[string]preference.Preferences
	matches  map[int64]matchDomain.Match
	windows  map[string]windowRecord
	idSeq    int64
}

type windowRecord struct {
	Count   int
	ResetAt time.Time
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]authDomain.User),
		byName:   make(map[string]string),
		sessions: make(map[string]authDomain.Session),
		prefs:    make(map[string]preference.Preferences),
		matches:  make(map[int64]matchDomain.Match),
		windows:  make(map[string]windowRecord),
	}
}

// SetNow 覆寫時鐘，測試用。
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SeedUsers 寫入示範帳號（admin / viewer，密碼皆為 password123）。
func (s *Store) SeedUsers() {
	hash, err := authinfra.HashPassword("password123")
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, role := range map[string]authDomain.Role{
		"admin":  authDomain.RoleAdmin,
		"viewer": authDomain.RoleUser,
	} {
		if _, ok := s.byName[name]; ok {
			continue
		}
		id := uuid.NewString()
		s.users[id] = authDomain.User{
			ID:           id,
			Username:     name,
			Role:         role,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		}
		s.byName[name] = id
	}
}

// SeedMatches 寫入幾場示範賽事。
func (s *Store) SeedMatches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.now().Truncate(time.Hour).Add(24 * time.Hour)
	fixtures := []matchDomain.Match{
		{KickoffAt: base, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Tournament: "Premier League", League: "England", Status: "scheduled"},
		{KickoffAt: base.Add(26 * time.Hour), HomeTeam: "Barcelona", AwayTeam: "Real Madrid", Tournament: "La Liga", League: "Spain", Status: "scheduled"},
		{KickoffAt: base.Add(50 * time.Hour), HomeTeam: "Dynamo", AwayTeam: "Shakhtar", Tournament: "UPL", League: "Ukraine", Status: "scheduled"},
	}
	for _, m := range fixtures {
		s.upsertLocked(m)
	}
}

// --- authDomain.UserRepository ---

func (s *Store) FindByUsername(_ context.Context, username string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return authDomain.User{}, fmt.Errorf("user not found")
	}
	return s.users[id], nil
}

func (s *Store) TouchLastLogin(_ context.Context, _ string) error {
	return nil
}

// --- authDomain.SessionStore ---

func (s *Store) Create(_ context.Context, userID string, ttl time.Duration) (authDomain.Session, error) {
	sid, err := authinfra.NewSID()
	if err != nil {
		return authDomain.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := authDomain.Session{
		SID:       sid,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if u, ok := s.users[userID]; ok {
		sess.Role = u.Role
	}
	s.sessions[sess.SID] = sess
	return sess, nil
}

// Lookup 回傳有效 session；不存在、已撤銷、已過期一律 ErrNoSession。
// 角色每次都從使用者紀錄重讀，降權立即生效。
func (s *Store) Lookup(_ context.Context, sid string) (authDomain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sid]
	if !ok || !sess.Valid(s.now()) {
		return authDomain.Session{}, authDomain.ErrNoSession
	}
	if u, ok := s.users[sess.UserID]; ok {
		sess.Role = u.Role
	}
	return sess, nil
}

func (s *Store) Revoke(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sid]; ok {
		sess.Revoked = true
		s.sessions[sid] = sess
	}
	return nil
}

func (s *Store) SweepExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for sid, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, sid)
			n++
		}
	}
	return n, nil
}

// --- preference.Store ---

func (s *Store) Get(_ context.Context, userID string) (preference.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userID]; ok {
		return p, nil
	}
	return preference.Defaults(), nil
}

func (s *Store) Save(_ context.Context, userID string, p preference.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = p
	return nil
}

// --- matchDomain.Repository ---

func (s *Store) List(_ context.Context, sortCol, sortOrder string, limit int) ([]matchDomain.Match, error) {
	sortCol, sortOrder = matchDomain.NormalizeSort(sortCol, sortOrder)

	s.mu.RLock()
	out := make([]matchDomain.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		less := false
		switch sortCol {
		case "home_team":
			less = strings.Compare(out[i].HomeTeam, out[j].HomeTeam) < 0
		case "away_team":
			less = strings.Compare(out[i].AwayTeam, out[j].AwayTeam) < 0
		case "tournament":
			less = strings.Compare(out[i].Tournament, out[j].Tournament) < 0
		case "league":
			less = strings.Compare(out[i].League, out[j].League) < 0
		case "status":
			less = strings.Compare(out[i].Status, out[j].Status) < 0
		default:
			less = out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		if sortOrder == "desc" {
			return !less
		}
		return less
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Apply(_ context.Context, u matchDomain.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[u.ID]
	if !ok {
		return fmt.Errorf("match %d not found", u.ID)
	}
	if u.Seen != nil {
		m.Seen = *u.Seen
	}
	if u.Comment != nil {
		m.Comment = *u.Comment
	}
	s.matches[u.ID] = m
	return nil
}

func (s *Store) Upsert(_ context.Context, m matchDomain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(m)
	return nil
}

func (s *Store) upsertLocked(m matchDomain.Match) {
	for id, existing := range s.matches {
		if existing.HomeTeam == m.HomeTeam && existing.AwayTeam == m.AwayTeam && existing.KickoffAt.Equal(m.KickoffAt) {
			existing.Tournament = m.Tournament
			existing.League = m.League
			existing.Status = m.Status
			s.matches[id] = existing
			return
		}
	}
	s.idSeq++
	m.ID = s.idSeq
	if m.Status == "" {
		m.Status = "scheduled"
	}
	s.matches[m.ID] = m
}

// --- ratelimit.Limiter ---

func (s *Store) Hit(_ context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	rec, ok := s.windows[key]
	if !ok || !rec.ResetAt.After(now) {
		rec = windowRecord{Count: 0, ResetAt: now.Add(window)}
	}
	rec.Count++
	s.windows[key] = rec

	retryAfter := rec.ResetAt.Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	remaining := limit - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Decision{
		Limited:    rec.Count > limit,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}

var (
	_ authDomain.UserRepository = (*Store)(nil)
	_ authDomain.SessionStore   = (*Store)(nil)
	_ preference.Store          = (*Store)(nil)
	_ matchDomain.Repository    = (*Store)(nil)
	_ ratelimit.Limiter         = (*Store)(nil)
)
