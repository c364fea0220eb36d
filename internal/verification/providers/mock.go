package providers

import (
	"context"
	"encoding/json"
	"strings"

	"bgv/internal/verification/models"
	"bgv/internal/verification/statuscodes"
)

// Mock-invoker outcomes are chosen by the last character of the first
// non-empty input value.
const (
	mockNotFoundSuffix = "0"
	mockErrorSuffix    = "9"
	mockErrorCode      = 1022
)

// MockInvoker answers deterministically from the status code table, for
// development and demos. GL methods report non-success codes in the nested
// error shape that vendor uses.
type MockInvoker struct {
	id string
}

func NewMockInvoker(id string) *MockInvoker {
	return &MockInvoker{id: id}
}

func (m *MockInvoker) ID() string {
	return m.id
}

func (m *MockInvoker) Invoke(ctx context.Context, method models.Method, inputs map[string]string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(ErrorTimeout, m.id, "context done", err)
	}
	entry, ok := statuscodes.Lookup(method)
	if !ok {
		return nil, NewProviderError(ErrorBadData, m.id, "unsupported method "+string(method), nil)
	}

	subject := firstValue(inputs)
	var code int
	switch {
	case strings.HasSuffix(subject, mockErrorSuffix):
		code = mockErrorCode
	case strings.HasSuffix(subject, mockNotFoundSuffix):
		code = entry.NotFoundCodes[len(entry.NotFoundCodes)-1]
	default:
		code = entry.SuccessCodes[len(entry.SuccessCodes)-1]
	}

	body := map[string]any{
		"status_code": code,
		"message":     statuscodes.Describe(code),
	}
	if entry.Kind(code) == models.OutcomeSuccess {
		body["data"] = map[string]any{"subject": subject, "method": method}
	} else if method == models.MethodUANFullHistoryGL {
		body = map[string]any{"error": map[string]any{"data": body}}
	}
	return json.Marshal(body)
}

func firstValue(inputs map[string]string) string {
	for _, name := range []string{"mobile_number", "pan", "uan"} {
		if v := inputs[name]; v != "" {
			return v
		}
	}
	return ""
}
