package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"matchtrack/internal/domain/preference"
)

// PreferenceRepo 以 user_preferences.data (jsonb) 儲存每位使用者的偏好文件。
type PreferenceRepo struct {
	db *sql.DB
}

// NewPreferenceRepo 建立 PreferenceRepo。
func NewPreferenceRepo(db *sql.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// Get 讀取偏好；尚無紀錄時回傳預設值。已存文件與預設值合併，
// 缺漏欄位不會覆蓋預設。
func (r *PreferenceRepo) Get(ctx context.Context, userID string) (preference.Preferences, error) {
	prefs := preference.Defaults()

	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM user_preferences WHERE user_id = $1 LIMIT 1;`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return preference.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &prefs); err != nil {
			return preference.Preferences{}, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return prefs, nil
}

// Save 覆寫整份偏好文件。
func (r *PreferenceRepo) Save(ctx context.Context, userID string, p preference.Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	const q = `
INSERT INTO user_preferences (user_id, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now();
`
	if _, err := r.db.ExecContext(ctx, q, userID, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
