package match

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Match 代表一場賽事及使用者附加的追蹤狀態。
type Match struct {
	ID         int64
	KickoffAt  time.Time
	HomeTeam   string
	AwayTeam   string
	Tournament string
	League     string
	Status     string
	Seen       bool
	Comment    string
}

// 排序欄位預設值。
const (
	DefaultSortCol   = "kickoff_at"
	DefaultSortOrder = "asc"
)

var sortColumns = map[string]struct{}{
	"kickoff_at": {},
	"home_team":  {},
	"away_team":  {},
	"tournament": {},
	"status":     {},
	"league":     {},
}

var sortOrders = map[string]struct{}{
	"asc":  {},
	"desc": {},
}

// ValidSortColumn 檢查欄位是否在白名單內。
func ValidSortColumn(col string) bool {
	_, ok := sortColumns[col]
	return ok
}

// ValidSortOrder 檢查排序方向是否合法。
func ValidSortOrder(order string) bool {
	_, ok := sortOrders[strings.ToLower(order)]
	return ok
}

// NormalizeSort 將排序參數收斂到白名單，不合法的值退回預設。
// ORDER BY 只能使用這裡的輸出。
func NormalizeSort(col, order string) (string, string) {
	if !ValidSortColumn(col) {
		col = DefaultSortCol
	}
	order = strings.ToLower(order)
	if !ValidSortOrder(order) {
		order = DefaultSortOrder
	}
	return col, order
}

// ErrEmptyUpdate 表示更新請求沒有任何要修改的欄位。
var ErrEmptyUpdate = errors.New("empty match update")

// Update 描述對單場賽事的部分更新；nil 欄位保持不變。
type Update struct {
	ID      int64
	Seen    *bool
	Comment *string
}

// Validate 基本欄位檢查。
func (u Update) Validate() error {
	if u.ID <= 0 {
		return errors.New("match id is required")
	}
	if u.Seen == nil && u.Comment == nil {
		return ErrEmptyUpdate
	}
	return nil
}

// Repository 存取賽事。
type Repository interface {
	// List 依白名單後的排序條件回傳賽事。
	List(ctx context.Context, sortCol, sortOrder string, limit int) ([]Match, error)
	// Apply 套用部分更新。
	Apply(ctx context.Context, u Update) error
	// Upsert 以 (home_team, away_team, kickoff_at) 為自然鍵寫入或更新賽事。
	Upsert(ctx context.Context, m Match) error
}
