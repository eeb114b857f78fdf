package postgres

import (
	"context"
	"database/sql"
	"fmt"

	authDomain "matchtrack/internal/domain/auth"
)

// UserRepo 提供使用者帳號的存取。
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo 建立 UserRepo。
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindByUsername 依帳號查詢使用者。
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (authDomain.User, error) {
	const q = `
SELECT id, username, password_hash, COALESCE(role, 'user'), created_at
FROM users
WHERE username = $1
LIMIT 1;
`
	var u authDomain.User
	var role string
	err := r.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		return authDomain.User{}, fmt.Errorf("find user: %w", err)
	}
	u.Role = authDomain.Role(role)
	return u, nil
}

// TouchLastLogin 更新最後登入時間。
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
