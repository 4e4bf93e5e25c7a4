package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/taller-finder/internal/auth"
	"github.com/ukydev/taller-finder/internal/models"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	authService, err := auth.NewService("middleware-secret", time.Hour)
	require.NoError(t, err)
	return authService
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newAuthService(t)
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Username: "testuser"}
		token, _ := authService.GenerateToken(user)

		req := httptest.NewRequest("GET", "/api/historial", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.Username, claims.Username)
			assert.Equal(t, user.ID.Hex(), claims.UserID)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/historial", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Authorization header required","kind":"unauthorized"}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/historial", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_OptionalAuth(t *testing.T) {
	authService := newAuthService(t)
	middleware := NewAuthMiddleware(authService)
	user := &models.User{ID: primitive.NewObjectID(), Username: "testuser"}
	token, _ := authService.GenerateToken(user)

	tests := []struct {
		name       string
		header     string
		wantClaims bool
	}{
		{"anonymous", "", false},
		{"valid token", "Bearer " + token, true},
		{"invalid token is ignored", "Bearer nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/talleres/ranked", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			called := false
			middleware.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, ok := GetUserFromContext(r.Context())
				assert.Equal(t, tt.wantClaims, ok)
			})).ServeHTTP(w, req)
			assert.True(t, called)
		})
	}
}

func TestGetUserFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	claims, ok := GetUserFromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, claims)
}
