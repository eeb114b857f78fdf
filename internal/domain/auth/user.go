package auth

import (
	"context"
	"time"
)

// Role 定義系統角色。
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User 基本帳號資料。
type User struct {
	ID           string
	Username     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository 存取使用者。
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	TouchLastLogin(ctx context.Context, id string) error
}
