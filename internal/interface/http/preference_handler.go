package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	appPref "matchtrack/internal/application/preference"
	"matchtrack/internal/domain/preference"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	prefs, err := s.prefUC.Get(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "preferences": prefs})
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var p preference.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	saved, err := s.prefUC.Save(r.Context(), ident.UserID, p)
	if err != nil {
		if errors.Is(err, appPref.ErrInvalidPreference) {
			writeError(w, http.StatusBadRequest, "invalid_preference")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "preferences": saved})
}
