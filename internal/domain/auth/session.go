package auth

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession 表示查無有效 session。不存在、已撤銷、已過期對呼叫端
// 一律等價，避免洩漏具體原因。
var ErrNoSession = errors.New("no valid session")

// DefaultTTL 為 session 預設存活時間（30 天）。到期時間在建立時決定，
// 之後不會延長。
const DefaultTTL = 30 * 24 * time.Hour

// Session 紀錄一次登入的伺服端狀態。除 Revoked 外所有欄位在建立後不可變。
type Session struct {
	SID       string
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Valid 檢查 session 是否仍可使用；到期時間點本身即視為失效。
func (s Session) Valid(now time.Time) bool {
	if s.Revoked {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// SessionStore 提供 session 的建立、查詢、撤銷與清理。
type SessionStore interface {
	// Create 產生全新亂數 sid 並寫入一筆 session。
	Create(ctx context.Context, userID string, ttl time.Duration) (Session, error)
	// Lookup 取回有效 session 並帶出擁有者目前的角色；
	// 查無有效列時回傳 ErrNoSession。
	Lookup(ctx context.Context, sid string) (Session, error)
	// Revoke 將 session 標記為撤銷；重複撤銷或 sid 不存在都不是錯誤。
	Revoke(ctx context.Context, sid string) error
	// SweepExpired 刪除已過期的列，回傳清除數量。
	SweepExpired(ctx context.Context) (int64, error)
}
