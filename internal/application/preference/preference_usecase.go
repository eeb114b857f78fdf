package preference

import (
	"context"
	"errors"
	"regexp"

	matchDomain "matchtrack/internal/domain/match"
	"matchtrack/internal/domain/preference"
)

// ErrInvalidPreference 表示偏好內容不在允許範圍。
var ErrInvalidPreference = errors.New("invalid preference")

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// UseCase 讀寫使用者偏好。
type UseCase struct {
	prefs preference.Store
}

// NewUseCase 建立 UseCase。
func NewUseCase(prefs preference.Store) *UseCase {
	return &UseCase{prefs: prefs}
}

// Get 回傳使用者偏好；尚未儲存過則為預設值。
func (uc *UseCase) Get(ctx context.Context, userID string) (preference.Preferences, error) {
	return uc.prefs.Get(ctx, userID)
}

// Save 驗證後整份覆寫。留空欄位補回預設值，
// 排序欄位走白名單，顏色限 #RRGGBB。
func (uc *UseCase) Save(ctx context.Context, userID string, p preference.Preferences) (preference.Preferences, error) {
	defaults := preference.Defaults()

	if p.SortCol == "" {
		p.SortCol = defaults.SortCol
	}
	if p.SortOrder == "" {
		p.SortOrder = defaults.SortOrder
	}
	if p.SeenColor == "" {
		p.SeenColor = defaults.SeenColor
	}
	if p.BgColor == "" {
		p.BgColor = defaults.BgColor
	}

	if !matchDomain.ValidSortColumn(p.SortCol) || !matchDomain.ValidSortOrder(p.SortOrder) {
		return preference.Preferences{}, ErrInvalidPreference
	}
	if !colorPattern.MatchString(p.SeenColor) || !colorPattern.MatchString(p.BgColor) {
		return preference.Preferences{}, ErrInvalidPreference
	}

	if err := uc.prefs.Save(ctx, userID, p); err != nil {
		return preference.Preferences{}, err
	}
	return p, nil
}
