package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"matchtrack/internal/domain/auth"
)

// PasswordHasher 驗證密碼。
type PasswordHasher interface {
	Compare(hashed, plain string) bool
}

var (
	// ErrMissingCredentials 表示帳號或密碼留空。
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials 表示帳號不存在或密碼錯誤；兩者對呼叫端等價。
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// LoginResult 帶回新建 session 與登入者。
type LoginResult struct {
	Session auth.Session
	User    auth.User
}

// LoginUseCase 處理帳密登入。
type LoginUseCase struct {
	users    auth.UserRepository
	sessions auth.SessionStore
	hasher   PasswordHasher
	ttl      time.Duration
}

// NewLoginUseCase 建立 LoginUseCase；ttl <= 0 時用預設 30 天。
func NewLoginUseCase(users auth.UserRepository, sessions auth.SessionStore, hasher PasswordHasher, ttl time.Duration) *LoginUseCase {
	if ttl <= 0 {
		ttl = auth.DefaultTTL
	}
	return &LoginUseCase{users: users, sessions: sessions, hasher: hasher, ttl: ttl}
}

// Execute 驗證帳密並簽發 session。查無使用者與密碼錯誤
// 都回 ErrInvalidCredentials，不讓呼叫端探測帳號是否存在。
func (uc *LoginUseCase) Execute(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !uc.hasher.Compare(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	sess, err := uc.sessions.Create(ctx, user.ID, uc.ttl)
	if err != nil {
		return LoginResult{}, err
	}
	sess.Role = user.Role

	// 紀錄最後登入時間失敗不影響登入結果。
	_ = uc.users.TouchLastLogin(ctx, user.ID)

	return LoginResult{Session: sess, User: user}, nil
}

// LogoutUseCase 撤銷 session。
type LogoutUseCase struct {
	sessions auth.SessionStore
}

// NewLogoutUseCase 建立 LogoutUseCase。
func NewLogoutUseCase(sessions auth.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions}
}

// Execute 撤銷指定 sid；重複登出不是錯誤。
func (uc *LogoutUseCase) Execute(ctx context.Context, sid string) error {
	return uc.sessions.Revoke(ctx, sid)
}

// CleanupUseCase 清掉已過期的 session 列。
type CleanupUseCase struct {
	sessions auth.SessionStore
}

// NewCleanupUseCase 建立 CleanupUseCase。
func NewCleanupUseCase(sessions auth.SessionStore) *CleanupUseCase {
	return &CleanupUseCase{sessions: sessions}
}

// Execute 回傳刪除數量。
func (uc *CleanupUseCase) Execute(ctx context.Context) (int64, error) {
	return uc.sessions.SweepExpired(ctx)
}
