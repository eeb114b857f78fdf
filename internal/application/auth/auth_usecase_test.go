package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	authDomain "matchtrack/internal/domain/auth"
	authinfra "matchtrack/internal/infrastructure/auth"
	"matchtrack/internal/infra/memory"
)

func newLoginFixture(t *testing.T) (*LoginUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedUsers()
	uc := NewLoginUseCase(store, store, authinfra.BcryptHasher{}, time.Hour)
	return uc, store
}

func TestLoginUseCase_Execute(t *testing.T) {
	uc, _ := newLoginFixture(t)
	ctx := context.Background()

	res, err := uc.Execute(ctx, "admin", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Session.SID == "" {
		t.Error("empty sid")
	}
	if res.Session.Role != authDomain.RoleAdmin {
		t.Errorf("role = %s", res.Session.Role)
	}
	if res.User.Username != "admin" {
		t.Errorf("user = %+v", res.User)
	}
}

func TestLoginUseCase_Rejections(t *testing.T) {
	uc, _ := newLoginFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"empty username", "", "password123", ErrMissingCredentials},
		{"empty password", "admin", "", ErrMissingCredentials},
		{"whitespace username", "   ", "password123", ErrMissingCredentials},
		{"unknown user", "ghost", "password123", ErrInvalidCredentials},
		{"wrong password", "admin", "nope", ErrInvalidCredentials},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := uc.Execute(ctx, c.username, c.password); !errors.Is(err, c.want) {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestLogoutUseCase_Execute(t *testing.T) {
	loginUC, store := newLoginFixture(t)
	ctx := context.Background()

	res, err := loginUC.Execute(ctx, "viewer", "password123")
	if err != nil {
		t.Fatal(err)
	}

	logoutUC := NewLogoutUseCase(store)
	if err := logoutUC.Execute(ctx, res.Session.SID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Lookup(ctx, res.Session.SID); !errors.Is(err, authDomain.ErrNoSession) {
		t.Fatalf("session survived logout: %v", err)
	}

	// 重複登出是 no-op
	if err := logoutUC.Execute(ctx, res.Session.SID); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestCleanupUseCase_Execute(t *testing.T) {
	store := memory.NewStore()
	store.SeedUsers()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.SetNow(func() time.Time { return base })

	u, _ := store.FindByUsername(ctx, "viewer")
	store.Create(ctx, u.ID, time.Minute)
	store.SetNow(func() time.Time { return base.Add(time.Hour) })

	n, err := NewCleanupUseCase(store).Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
}
