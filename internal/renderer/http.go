package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"PMS-FORMS/internal/apperrors"
)

// HTTPRenderer posts the render request as JSON to a compositor service and
// returns its response body. One attempt per call; a failed render is never
// retried here because the caller resubmits.
type HTTPRenderer struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPRenderer(url string, timeoutStr string) *HTTPRenderer {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		fmt.Printf("Warning: failed to parse renderer timeout '%s', using default 30s: %v\n", timeoutStr, err)
	}

	return &HTTPRenderer{
		url:     strings.TrimRight(url, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(renderCtx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperrors.ErrRenderTimeout
		}
		return nil, &apperrors.RenderError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.RenderError{Detail: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		// The compositor's diagnostic text is surfaced verbatim.
		return nil, &apperrors.RenderError{Detail: strings.TrimSpace(string(out))}
	}

	return out, nil
}
