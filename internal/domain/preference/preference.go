package preference

import (
	"context"

	"matchtrack/internal/domain/match"
)

// Preferences 為使用者的顯示偏好，整份以 JSON 文件儲存。
type Preferences struct {
	SortCol   string `json:"sort_col"`
	SortOrder string `json:"sort_order"`
	SeenColor string `json:"seen_color"`
	BgColor   string `json:"bg_color"`
}

// Defaults 回傳匿名或尚未設定偏好時使用的預設值。
func Defaults() Preferences {
	return Preferences{
		SortCol:   match.DefaultSortCol,
		SortOrder: match.DefaultSortOrder,
		SeenColor: "#d4edda",
		BgColor:   "#ffffff",
	}
}

// Store 存取使用者偏好。
type Store interface {
	// Get 讀取偏好；尚無紀錄時回傳 Defaults()，不是錯誤。
	Get(ctx context.Context, userID string) (Preferences, error)
	// Save 覆寫整份偏好文件。
	Save(ctx context.Context, userID string, p Preferences) error
}
