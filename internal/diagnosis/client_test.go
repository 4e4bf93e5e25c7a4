package diagnosis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/taller-finder/internal/models"
)

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 0.3, req.Temperature)
		assert.Equal(t, 300, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "hola", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Revisa la batería"}}]}`))
	}))
	defer server.Close()

	text, err := NewOpenAIClient("sk-test", server.URL, time.Second).Complete(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "Revisa la batería", text)
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewOpenAIClient("", "http://127.0.0.1:1", time.Second).Complete(context.Background(), "x")
		assert.ErrorIs(t, err, models.ErrMissingCredential)
	})

	t.Run("provider message is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
		}))
		defer server.Close()

		_, err := NewOpenAIClient("sk-bad", server.URL, time.Second).Complete(context.Background(), "x")
		assert.ErrorIs(t, err, models.ErrProviderUnavailable)
		assert.Contains(t, err.Error(), "[HTTP 401] Incorrect API key provided")
	})

	t.Run("non json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}))
		defer server.Close()

		_, err := NewOpenAIClient("sk", server.URL, time.Second).Complete(context.Background(), "x")
		assert.Contains(t, err.Error(), "[HTTP 502]")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := NewOpenAIClient("sk", server.URL, time.Second).Complete(context.Background(), "x")
		assert.ErrorIs(t, err, models.ErrProviderUnavailable)
	})
}

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hola", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 300, req.GenerationConfig.MaxOutputTokens)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Cambia las bujías"}]}}]}`))
	}))
	defer server.Close()

	text, err := NewGeminiClient("g-key", server.URL, time.Second).Complete(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "Cambia las bujías", text)
}

func TestGeminiClient_EmptyCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]}}]}`))
	}))
	defer server.Close()

	_, err := NewGeminiClient("g-key", server.URL, time.Second).Complete(context.Background(), "hola")
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}
