package match

import (
	"context"
	"fmt"
	"time"

	matchDomain "matchtrack/internal/domain/match"
	"matchtrack/internal/domain/preference"
)

// listLimit 為單次查詢的上限筆數。
const listLimit = 1000

// ListUseCase 依使用者偏好排序回傳賽事清單。
type ListUseCase struct {
	matches matchDomain.Repository
	prefs   preference.Store
}

// NewListUseCase 建立 ListUseCase。
func NewListUseCase(matches matchDomain.Repository, prefs preference.Store) *ListUseCase {
	return &ListUseCase{matches: matches, prefs: prefs}
}

// Execute 回傳賽事清單。userID 留空（匿名）時用預設排序；
// 偏好讀取失敗也退回預設，不擋清單。
func (uc *ListUseCase) Execute(ctx context.Context, userID string) ([]matchDomain.Match, error) {
	p := preference.Defaults()
	if userID != "" {
		if got, err := uc.prefs.Get(ctx, userID); err == nil {
			p = got
		}
	}
	sortCol, sortOrder := matchDomain.NormalizeSort(p.SortCol, p.SortOrder)
	return uc.matches.List(ctx, sortCol, sortOrder, listLimit)
}

// UpdateUseCase 套用單場賽事的部分更新。
type UpdateUseCase struct {
	matches matchDomain.Repository
}

// NewUpdateUseCase 建立 UpdateUseCase。
func NewUpdateUseCase(matches matchDomain.Repository) *UpdateUseCase {
	return &UpdateUseCase{matches: matches}
}

// Execute 驗證並套用更新。
func (uc *UpdateUseCase) Execute(ctx context.Context, u matchDomain.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return uc.matches.Apply(ctx, u)
}

// FixtureSource 取得外部賽程。
type FixtureSource interface {
	ListFixtures(ctx context.Context, from, to time.Time) ([]matchDomain.Match, error)
}

// ImportUseCase 從外部來源匯入未來賽程。
type ImportUseCase struct {
	source  FixtureSource
	matches matchDomain.Repository
	days    int
	now     func() time.Time
}

// NewImportUseCase 建立 ImportUseCase；days <= 0 時預設抓 14 天。
func NewImportUseCase(source FixtureSource, matches matchDomain.Repository, days int) *ImportUseCase {
	if days <= 0 {
		days = 14
	}
	return &ImportUseCase{source: source, matches: matches, days: days, now: time.Now}
}

// Execute 抓取並 upsert 賽程，回傳寫入筆數。
// 單筆寫入失敗即中止，避免部分匯入卻回報成功。
func (uc *ImportUseCase) Execute(ctx context.Context) (int, error) {
	from := uc.now()
	to := from.AddDate(0, 0, uc.days)

	fixtures, err := uc.source.ListFixtures(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch fixtures: %w", err)
	}

	var n int
	for _, m := range fixtures {
		if err := uc.matches.Upsert(ctx, m); err != nil {
			return n, fmt.Errorf("import fixtures: %w", err)
		}
		n++
	}
	return n, nil
}
