package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/taller-finder/internal/middleware"
	"github.com/ukydev/taller-finder/internal/models"
)

func withClaims(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{UserID: userID, Username: "ana"})
	return req.WithContext(ctx)
}

func TestHistoryHandler_List(t *testing.T) {
	t.Run("returns records", func(t *testing.T) {
		history := new(MockHistoryCollection)
		history.On("FindRecent", mock.Anything, "u1", int64(5)).Return([]models.SearchRecord{
			{Category: models.HistoryWorkshops, Detail: "Chapa cerca de 40.000000,-3.000000 (2 resultados)"},
		}, nil)

		w := httptest.NewRecorder()
		NewHistoryHandler(history).List(w, withClaims(httptest.NewRequest(http.MethodGet, "/api/historial?limit=5", nil), "u1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"category":"Talleres"`)
		history.AssertExpectations(t)
	})

	t.Run("limit is capped", func(t *testing.T) {
		history := new(MockHistoryCollection)
		history.On("FindRecent", mock.Anything, "u1", int64(maxHistoryLimit)).Return([]models.SearchRecord{}, nil)

		w := httptest.NewRecorder()
		NewHistoryHandler(history).List(w, withClaims(httptest.NewRequest(http.MethodGet, "/api/historial?limit=1000", nil), "u1"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHistoryHandler(new(MockHistoryCollection)).List(w, withClaims(httptest.NewRequest(http.MethodGet, "/api/historial?limit=-1", nil), "u1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHistoryHandler(new(MockHistoryCollection)).List(w, httptest.NewRequest(http.MethodGet, "/api/historial", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		history := new(MockHistoryCollection)
		history.On("FindRecent", mock.Anything, "u1", int64(20)).Return(nil, errors.New("boom"))

		w := httptest.NewRecorder()
		NewHistoryHandler(history).List(w, withClaims(httptest.NewRequest(http.MethodGet, "/api/historial", nil), "u1"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
