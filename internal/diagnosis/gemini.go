package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukydev/taller-finder/internal/models"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-latest:generateContent"

// GeminiClient calls the generateContent API.
type GeminiClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewGeminiClient creates a client. An empty url selects the public endpoint.
func NewGeminiClient(apiKey, url string, timeout time.Duration) *GeminiClient {
	if url == "" {
		url = defaultGeminiURL
	}
	return &GeminiClient{
		apiKey:     apiKey,
		url:        url,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete sends prompt and returns the first candidate text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: Gemini API key is not configured", models.ErrMissingCredential)
	}

	var payload geminiRequest
	payload.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	payload.GenerationConfig.Temperature = temperature
	payload.GenerationConfig.MaxOutputTokens = maxTokens

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %s", models.ErrProviderUnavailable, strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", models.ErrProviderUnavailable, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 || out.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w: empty or unexpected response from Gemini", models.ErrProviderUnavailable)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
