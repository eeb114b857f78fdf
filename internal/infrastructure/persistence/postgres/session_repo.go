package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	authDomain "matchtrack/internal/domain/auth"
	authinfra "matchtrack/internal/infrastructure/auth"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation  = "23505"
	sidCreateRetries = 3
)

// SessionRepo 以 sessions 資料表儲存登入 session。
type SessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepo 建立 SessionRepo。
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

// Create 產生新 sid 並寫入一筆 session；撞到唯一鍵時換新 sid 重試。
func (r *SessionRepo) Create(ctx context.Context, userID string, ttl time.Duration) (authDomain.Session, error) {
	if ttl <= 0 {
		ttl = authDomain.DefaultTTL
	}
	now := r.now()
	expiresAt := now.Add(ttl)

	const q = `
INSERT INTO sessions (sid, user_id, issued_at, expires_at, revoked)
VALUES ($1, $2, $3, $4, false);
`
	for attempt := 0; attempt < sidCreateRetries; attempt++ {
		sid, err := authinfra.NewSID()
		if err != nil {
			return authDomain.Session{}, fmt.Errorf("generate sid: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, q, sid, userID, now, expiresAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				continue
			}
			return authDomain.Session{}, fmt.Errorf("insert session: %w", err)
		}
		return authDomain.Session{
			SID:       sid,
			UserID:    userID,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		}, nil
	}
	return authDomain.Session{}, errors.New("sid collision retries exhausted")
}

// Lookup 取回有效 session 並以 JOIN 帶出擁有者目前的角色。
// 查無列、已撤銷、已過期一律回 ErrNoSession，呼叫端無從分辨。
func (r *SessionRepo) Lookup(ctx context.Context, sid string) (authDomain.Session, error) {
	const q = `
SELECT s.sid, s.user_id, COALESCE(u.role, 'user'), s.issued_at, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.sid = $1
  AND s.revoked = false
  AND s.expires_at > now()
LIMIT 1;
`
	var sess authDomain.Session
	var role string
	err := r.db.QueryRowContext(ctx, q, sid).Scan(&sess.SID, &sess.UserID, &role, &sess.IssuedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return authDomain.Session{}, authDomain.ErrNoSession
	}
	if err != nil {
		return authDomain.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	sess.Role = authDomain.Role(role)
	return sess, nil
}

// Revoke 將 session 標記為撤銷；不存在或已撤銷都視為成功。
func (r *SessionRepo) Revoke(ctx context.Context, sid string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked = true WHERE sid = $1;`, sid); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SweepExpired 刪除已過期的 session 列。Lookup 本身已過濾過期列，
// 這裡只是儲存空間的清理。
func (r *SessionRepo) SweepExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now();`)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return res.RowsAffected()
}
