package diagnosis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ukydev/taller-finder/internal/models"
)

type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusError builds the "[HTTP <code>] <detail>" error for a failed completion
// call, preferring the provider's own error message.
func statusError(resp *http.Response) error {
	detail := resp.Status
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			detail = parsed.Error.Message
		} else if len(strings.TrimSpace(string(body))) > 0 {
			detail = strings.TrimSpace(string(body))
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("HTTP Status: %d", resp.StatusCode)
	}
	return fmt.Errorf("%w: [HTTP %d] %s", models.ErrProviderUnavailable, resp.StatusCode, detail)
}
