package api

import (
	"fmt"
	"strings"
	"time"
)

const (
	minURLLength = 10
	maxURLLength = 2048
)

// AnalyzeRequest is the URL submission body. Page fields are optional and
// enable brand-impersonation analysis when present.
type AnalyzeRequest struct {
	URL       string   `json:"url"`
	PageTitle string   `json:"page_title,omitempty"`
	PageText  string   `json:"page_text,omitempty"`
	CSSColors []string `json:"css_colors,omitempty"`
}

// Validate checks the submission before it reaches the pipeline
func (r *AnalyzeRequest) Validate() error {
	url := strings.TrimSpace(r.URL)
	if url == "" {
		return fmt.Errorf("url is required")
	}
	if len(url) < minURLLength || len(url) > maxURLLength {
		return fmt.Errorf("url length must be between %d and %d characters", minURLLength, maxURLLength)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("url must start with http:// or https://")
	}
	return nil
}

// HasPageContext reports whether the submission carries rendered page data
func (r *AnalyzeRequest) HasPageContext() bool {
	return r.PageTitle != "" || r.PageText != "" || len(r.CSSColors) > 0
}

// ErrorResponse is the uniform failure body
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

func newErrorResponse(kind, message, path string) ErrorResponse {
	return ErrorResponse{
		Error:     kind,
		Message:   message,
		Path:      path,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// HealthResponse reports component readiness for load balancers
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Cache      map[string]any    `json:"cache"`
	Feed       map[string]any    `json:"feed"`
	Components map[string]string `json:"components"`
	Timestamp  string            `json:"timestamp"`
}
