package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/db"
	"github.com/ukydev/taller-finder/internal/middleware"
	"github.com/ukydev/taller-finder/internal/models"
)

const maxDiagnosisBody = 16 << 10

// Diagnoser produces a diagnosis from a symptom form.
type Diagnoser interface {
	Diagnose(ctx context.Context, req models.DiagnosisRequest) (*models.DiagnosisResponse, error)
}

// DiagnosisHandler serves the diagnosis endpoint.
type DiagnosisHandler struct {
	diagnoser Diagnoser
	history   db.HistoryCollection
}

// NewDiagnosisHandler creates the handler. history may be nil.
func NewDiagnosisHandler(diagnoser Diagnoser, history db.HistoryCollection) *DiagnosisHandler {
	return &DiagnosisHandler{diagnoser: diagnoser, history: history}
}

// Diagnose handles POST /api/diagnostico.
func (h *DiagnosisHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDiagnosisBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body", Kind: "invalid_input"})
		return
	}

	var req models.DiagnosisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON", Kind: "invalid_input"})
		return
	}

	resp, err := h.diagnoser.Diagnose(r.Context(), req)
	if err != nil {
		writeKindError(w, err)
		return
	}

	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && h.history != nil {
		record := models.SearchRecord{
			UserID:    claims.UserID,
			Category:  models.HistoryDiagnosis,
			Detail:    fmt.Sprintf("%s: %s", strings.TrimSpace(req.Vehicle), truncate(strings.TrimSpace(req.Symptoms), 80)),
			RequestID: middleware.GetRequestID(r.Context()),
		}
		if err := h.history.InsertRecord(r.Context(), record); err != nil {
			log.WithField("user_id", claims.UserID).WithError(err).Warn("Failed to record diagnosis history")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
