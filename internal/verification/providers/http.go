package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"bgv/internal/verification/models"
	"bgv/pkg/platform/circuit"
)

const maxResponseBytes = 1 << 20

// HTTPInvoker posts method inputs to a vendor's REST API.
//
// Non-2xx responses with a JSON body are returned as payloads of the form
// {"error":{"http_status":N,"data":<body>}} so the vendor's status code stays
// reachable for classification. Only calls that produced no usable body fail.
type HTTPInvoker struct {
	id      string
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type HTTPOption func(*HTTPInvoker)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPInvoker) {
		h.client = c
	}
}

func WithBreaker(b *circuit.Breaker) HTTPOption {
	return func(h *HTTPInvoker) {
		h.breaker = b
	}
}

func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTPInvoker) {
		h.logger = logger
	}
}

func NewHTTPInvoker(id, baseURL, apiKey string, timeout time.Duration, opts ...HTTPOption) *HTTPInvoker {
	h := &HTTPInvoker{
		id:      id,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.breaker == nil {
		h.breaker = circuit.New(id)
	}
	return h
}

func (h *HTTPInvoker) ID() string {
	return h.id
}

func (h *HTTPInvoker) Invoke(ctx context.Context, method models.Method, inputs map[string]string) (json.RawMessage, error) {
	if !h.breaker.Allow() {
		return nil, NewProviderError(ErrorProviderOutage, h.id, "circuit open", ErrCircuitOpen)
	}

	body, err := json.Marshal(inputs)
	if err != nil {
		return nil, NewProviderError(ErrorInternal, h.id, "encode inputs", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v1/"+string(method), bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(ErrorInternal, h.id, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		h.recordFailure(ctx)
		if isTimeout(ctx, err) {
			return nil, NewProviderError(ErrorTimeout, h.id, "request timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, h.id, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		h.recordFailure(ctx)
		return nil, NewProviderError(ErrorProviderOutage, h.id, "read response", err)
	}

	if resp.StatusCode >= 500 {
		h.recordFailure(ctx)
	} else {
		h.recordSuccess(ctx)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if !json.Valid(payload) {
			return nil, NewProviderError(ErrorBadData, h.id, "response is not JSON", nil)
		}
		return payload, nil
	}
	if len(bytes.TrimSpace(payload)) > 0 && json.Valid(payload) {
		return wrapErrorBody(resp.StatusCode, payload)
	}
	return nil, NewProviderError(categoryForStatus(resp.StatusCode), h.id, fmt.Sprintf("http status %d", resp.StatusCode), nil)
}

func wrapErrorBody(status int, body []byte) (json.RawMessage, error) {
	wrapped, err := json.Marshal(map[string]any{
		"error": map[string]any{
			"http_status": status,
			"data":        json.RawMessage(body),
		},
	})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuthentication
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return ErrorTimeout
	case status >= 500:
		return ErrorProviderOutage
	default:
		return ErrorBadData
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (h *HTTPInvoker) recordFailure(ctx context.Context) {
	if _, change := h.breaker.RecordFailure(); change.Opened {
		h.logger.WarnContext(ctx, "provider circuit opened", "provider", h.id)
	}
}

func (h *HTTPInvoker) recordSuccess(ctx context.Context) {
	if _, change := h.breaker.RecordSuccess(); change.Closed {
		h.logger.InfoContext(ctx, "provider circuit closed", "provider", h.id)
	}
}
