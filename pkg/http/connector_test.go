package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text   string `json:"text"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

func newTestConnector(url string, opts ...HttpOpts) *Connector {
	return NewConnector(&ConnectorConfig{BaseURL: url, Logger: zap.NewNop()}, opts...)
}

func TestDoRequestRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var req echoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(echoResponse{Text: req.Text, Method: r.Method, Path: r.URL.Path})
	}))
	defer srv.Close()

	var resp echoResponse
	err := newTestConnector(srv.URL).DoRequest(context.Background(), http.MethodPost, "/echo", echoRequest{Text: "hi"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, echoResponse{Text: "hi", Method: http.MethodPost, Path: "/echo"}, resp)
}

func TestDoRequestWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestConnector(srv.URL).DoRequest(context.Background(), http.MethodGet, "/", nil, nil)
	assert.NoError(t, err)
}

func TestDoRequestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestConnector(srv.URL).DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "boom")
}

func TestDoRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestConnector(url, WithRequestTimeout(time.Second)).DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, IsRetryable(err))
}

func TestDoRequestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var resp echoResponse
	err := newTestConnector(srv.URL).DoRequest(context.Background(), http.MethodGet, "/", nil, &resp)
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestAPIKeyHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("api-key")
	}))
	defer srv.Close()

	conn := newTestConnector(srv.URL, WithAPIKeyHeader("api-key", "secret"), WithRequestLogging())
	require.NoError(t, conn.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
	assert.Equal(t, "secret", got)
}

func TestAPIKeyHeaderEmptyKey(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Api-Key"]
	}))
	defer srv.Close()

	conn := newTestConnector(srv.URL, WithAPIKeyHeader("api-key", ""))
	require.NoError(t, conn.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
	assert.False(t, present)
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &NetworkError{Err: errors.New("refused")}, true},
		{"too many requests", &HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &HTTPError{StatusCode: http.StatusBadGateway}, true},
		{"wrapped server error", fmt.Errorf("embed: %w", &HTTPError{StatusCode: http.StatusInternalServerError}), true},
		{"bad request", &HTTPError{StatusCode: http.StatusBadRequest}, false},
		{"forbidden", &HTTPError{StatusCode: http.StatusForbidden}, false},
		{"plain", errors.New("plain"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer token")
	h.Set("Api-Key", "qdrant")
	h.Set("X-Goog-Api-Key", "gemini")
	h.Set("Accept", "application/json")

	out := redactHeaders(h)

	assert.Equal(t, "[REDACTED]", out.Get("Authorization"))
	assert.Equal(t, "[REDACTED]", out.Get("Api-Key"))
	assert.Equal(t, "[REDACTED]", out.Get("X-Goog-Api-Key"))
	assert.Equal(t, "application/json", out.Get("Accept"))
	assert.Equal(t, "Bearer token", h.Get("Authorization"))
}
