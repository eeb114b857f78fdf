package postgres

import (
	"context"
	"database/sql"
	"fmt"

	matchDomain "matchtrack/internal/domain/match"
)

// MatchRepo 提供賽事的查詢與更新。
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo 建立 MatchRepo。
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// List 依排序條件回傳賽事。排序欄位先經過白名單收斂，
// 才能進到 ORDER BY 字串。
func (r *MatchRepo) List(ctx context.Context, sortCol, sortOrder string, limit int) ([]matchDomain.Match, error) {
	sortCol, sortOrder = matchDomain.NormalizeSort(sortCol, sortOrder)
	q := fmt.Sprintf(`
SELECT id, kickoff_at, home_team, away_team, tournament, league, status, seen, COALESCE(comment, '')
FROM matches
ORDER BY %s %s
LIMIT $1;
`, sortCol, sortOrder)

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []matchDomain.Match
	for rows.Next() {
		var m matchDomain.Match
		if err := rows.Scan(&m.ID, &m.KickoffAt, &m.HomeTeam, &m.AwayTeam, &m.Tournament, &m.League, &m.Status, &m.Seen, &m.Comment); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

// Apply 套用部分更新；nil 欄位不動。
func (r *MatchRepo) Apply(ctx context.Context, u matchDomain.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Seen != nil {
		if _, err := r.db.ExecContext(ctx, `UPDATE matches SET seen = $2 WHERE id = $1;`, u.ID, *u.Seen); err != nil {
			return fmt.Errorf("update seen: %w", err)
		}
	}
	if u.Comment != nil {
		if _, err := r.db.ExecContext(ctx, `UPDATE matches SET comment = $2 WHERE id = $1;`, u.ID, *u.Comment); err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
	}
	return nil
}

// Upsert 以 (home_team, away_team, kickoff_at) 為自然鍵寫入或更新，
// 不會動到使用者已標記的 seen/comment。
func (r *MatchRepo) Upsert(ctx context.Context, m matchDomain.Match) error {
	const q = `
INSERT INTO matches (kickoff_at, home_team, away_team, tournament, league, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (home_team, away_team, kickoff_at) DO UPDATE SET
    tournament = EXCLUDED.tournament,
    league     = EXCLUDED.league,
    status     = EXCLUDED.status;
`
	if _, err := r.db.ExecContext(ctx, q, m.KickoffAt, m.HomeTeam, m.AwayTeam, m.Tournament, m.League, m.Status); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

var _ matchDomain.Repository = (*MatchRepo)(nil)
