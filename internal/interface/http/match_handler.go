package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	matchDomain "matchtrack/internal/domain/match"
)

type matchItem struct {
	ID         int64     `json:"id"`
	KickoffAt  time.Time `json:"kickoff_at"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	Tournament string    `json:"tournament"`
	League     string    `json:"league"`
	Status     string    `json:"status"`
	Seen       bool      `json:"seen"`
	Comment    string    `json:"comment"`
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	matches, err := s.listUC.Execute(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	items := make([]matchItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchItem{
			ID:         m.ID,
			KickoffAt:  m.KickoffAt,
			HomeTeam:   m.HomeTeam,
			AwayTeam:   m.AwayTeam,
			Tournament: m.Tournament,
			League:     m.League,
			Status:     m.Status,
			Seen:       m.Seen,
			Comment:    m.Comment,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}

type updateMatchRequest struct {
	ID      int64   `json:"id"`
	Seen    *bool   `json:"seen"`
	Comment *string `json:"comment"`
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	var req updateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	u := matchDomain.Update{ID: req.ID, Seen: req.Seen, Comment: req.Comment}
	if err := s.updateUC.Execute(r.Context(), u); err != nil {
		if errors.Is(err, matchDomain.ErrEmptyUpdate) {
			writeError(w, http.StatusBadRequest, "empty_update")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleImportMatches 觸發外部賽程匯入。全站共用一把限流鑰匙，
// 避免重複打上游 API。
func (s *Server) handleImportMatches(w http.ResponseWriter, r *http.Request) {
	if s.rateLimited(w, r, "global:update-matches", s.cfg.RateLimit.SyncLimit, s.cfg.RateLimit.SyncWindow) {
		return
	}

	n, err := s.importUC.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fixtures_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "imported": n})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	n, err := s.cleanupUC.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "removed": n})
}
