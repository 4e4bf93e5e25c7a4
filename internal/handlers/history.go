package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/db"
	"github.com/ukydev/taller-finder/internal/middleware"
)

const maxHistoryLimit = 100

// HistoryHandler lists the caller's recent searches.
type HistoryHandler struct {
	history db.HistoryCollection
}

// NewHistoryHandler creates the handler.
func NewHistoryHandler(history db.HistoryCollection) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/historial?limit=N. It must run behind Authenticate.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrorResponse{Error: "User context not found", Kind: "unauthorized"})
		return
	}

	limit := int64(db.DefaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid limit", Kind: "invalid_input"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.history.FindRecent(r.Context(), claims.UserID, limit)
	if err != nil {
		log.WithField("user_id", claims.UserID).WithError(err).Error("Failed to load history")
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load history", Kind: "internal"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}
