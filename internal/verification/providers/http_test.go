package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgv/internal/verification/classifier"
	"bgv/internal/verification/models"
	"bgv/pkg/platform/circuit"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPInvoker_SendsRequest(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"status_code":1016}`)
	}))
	defer srv.Close()

	inv := NewHTTPInvoker("standard", srv.URL+"/", "secret", time.Second)
	raw, err := inv.Invoke(context.Background(), models.MethodMobileToUAN, map[string]string{"mobile_number": "9876543210"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/mobile_to_uan", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "9876543210", gotBody["mobile_number"])
	assert.JSONEq(t, `{"status_code":1016}`, string(raw))
}

func TestHTTPInvoker_ErrorBodyIsWrapped(t *testing.T) {
	srv := newServer(t, http.StatusUnprocessableEntity, `{"status_code":1007,"message":"no UAN"}`)
	inv := NewHTTPInvoker("standard", srv.URL, "k", time.Second)

	raw, err := inv.Invoke(context.Background(), models.MethodMobileToUAN, map[string]string{"mobile_number": "9876543210"})
	require.NoError(t, err)

	c := classifier.Classify(models.MethodMobileToUAN, raw)
	assert.Equal(t, models.OutcomeNotFound, c.Outcome)
	assert.Equal(t, 1007, c.StatusCode)
}

func TestHTTPInvoker_FailureCategories(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorCategory
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrorAuthentication},
		{"rate limited", http.StatusTooManyRequests, "slow down", ErrorRateLimited},
		{"outage", http.StatusBadGateway, "<html>bad gateway</html>", ErrorProviderOutage},
		{"success but not json", http.StatusOK, "OK", ErrorBadData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)
			inv := NewHTTPInvoker("standard", srv.URL, "k", time.Second)

			_, err := inv.Invoke(context.Background(), models.MethodUANPassbook, map[string]string{"uan": "100200300400"})
			require.Error(t, err)
			assert.Equal(t, tt.want, GetCategory(err))
		})
	}
}

func TestHTTPInvoker_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	inv := NewHTTPInvoker("standard", srv.URL, "k", 20*time.Millisecond)
	_, err := inv.Invoke(context.Background(), models.MethodUANPassbook, nil)
	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.True(t, IsRetryable(err))
}

func TestHTTPInvoker_CircuitOpensOnServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuit.New("standard", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	inv := NewHTTPInvoker("standard", srv.URL, "k", time.Second, WithBreaker(breaker))

	for i := 0; i < 2; i++ {
		_, err := inv.Invoke(context.Background(), models.MethodUANPassbook, nil)
		require.Error(t, err)
	}
	require.True(t, breaker.IsOpen())

	_, err := inv.Invoke(context.Background(), models.MethodUANPassbook, nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}
