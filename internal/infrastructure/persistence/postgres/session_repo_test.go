package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	authDomain "matchtrack/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestSessionRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewSessionRepo(db)
	repo.now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), "u-1", now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sess, err := repo.Create(context.Background(), "u-1", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.UserID != "u-1" || sess.SID == "" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if !sess.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expires_at = %v", sess.ExpiresAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// sid 撞到唯一鍵時必須換新 sid 重試，而不是把錯誤丟回呼叫端。
func TestSessionRepo_CreateRetriesOnCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)

	mock.ExpectExec("INSERT INTO sessions").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sess, err := repo.Create(context.Background(), "u-1", time.Hour)
	if err != nil {
		t.Fatalf("Create failed after collision: %v", err)
	}
	if sess.SID == "" {
		t.Error("empty sid after retry")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSessionRepo_CreateOtherErrorSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectExec("INSERT INTO sessions").WillReturnError(errors.New("connection reset"))

	if _, err := repo.Create(context.Background(), "u-1", time.Hour); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionRepo_Lookup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	issued := time.Now().Add(-time.Hour)
	expires := time.Now().Add(time.Hour)

	rows := sqlmock.NewRows([]string{"sid", "user_id", "role", "issued_at", "expires_at"}).
		AddRow("sid-1", "u-1", "admin", issued, expires)

	mock.ExpectQuery("SELECT (.+) FROM sessions").
		WithArgs("sid-1").
		WillReturnRows(rows)

	sess, err := repo.Lookup(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if sess.UserID != "u-1" || sess.Role != authDomain.RoleAdmin {
		t.Errorf("unexpected session: %+v", sess)
	}
}

// 查無列（不存在、已撤銷、已過期在 SQL 層同等）必須回 ErrNoSession。
func TestSessionRepo_LookupNoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectQuery("SELECT (.+) FROM sessions").
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"sid", "user_id", "role", "issued_at", "expires_at"}))

	_, err = repo.Lookup(context.Background(), "gone")
	if !errors.Is(err, authDomain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionRepo_Revoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectExec("UPDATE sessions SET revoked").
		WithArgs("sid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), "sid-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	// 再撤銷一次是 no-op，不是錯誤。
	mock.ExpectExec("UPDATE sessions SET revoked").
		WithArgs("sid-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Revoke(context.Background(), "sid-1"); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
}

func TestSessionRepo_SweepExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectExec("DELETE FROM sessions").
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if n != 7 {
		t.Errorf("swept = %d, want 7", n)
	}
}
