package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/helmcode/text-analyzer/pkg/config"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type capturedRequest struct {
	method      string
	contentType string
	requestID   string
	auth        string
	body        map[string]string
}

func newServer(t *testing.T, status int, body string, calls *int32, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if captured != nil {
			captured.method = r.Method
			captured.contentType = r.Header.Get("Content-Type")
			captured.requestID = r.Header.Get("X-Request-ID")
			captured.auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &captured.body)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Analyze_Success(t *testing.T) {
	var calls int32
	var captured capturedRequest
	srv := newServer(t, http.StatusOK, `{"summary":"short text"}`, &calls, &captured)

	c := New(srv.URL, WithHeaders(map[string]string{"Authorization": "Bearer token"}))
	result, err := c.Analyze(context.Background(), model.AnalysisRequest{Text: "  Some long text ", AnalysisType: model.AnalysisSummary})
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "application/json", captured.contentType)
	assert.NotEmpty(t, captured.requestID)
	assert.Equal(t, "Bearer token", captured.auth)
	assert.Equal(t, map[string]string{"text": "  Some long text ", "analysisType": "summary"}, captured.body)

	require.Equal(t, model.KindObject, result.Kind)
	assert.Equal(t, []string{"summary"}, result.Keys())
	assert.Equal(t, "short text", result.Get("summary").String())
}

func TestClient_Analyze_AcceptsAny2xx(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusAccepted, `["queued"]`, &calls, nil)

	result, err := New(srv.URL).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSentiment})
	require.NoError(t, err)
	assert.Equal(t, model.KindArray, result.Kind)
}

func TestClient_Analyze_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"empty body", http.StatusInternalServerError, "", ""},
		{"json message", http.StatusBadRequest, `{"message":"Workflow could not be started"}`, "Workflow could not be started"},
		{"json error string", http.StatusNotFound, `{"error":"webhook not registered"}`, "webhook not registered"},
		{"json nested error", http.StatusBadGateway, `{"error":{"message":"upstream down"}}`, "upstream down"},
		{"plain text", http.StatusServiceUnavailable, "  maintenance  ", "maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newServer(t, tt.status, tt.body, &calls, nil)

			result, err := New(srv.URL).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})
			assert.Nil(t, result)

			var rErr *model.ResponseError
			require.True(t, errors.As(err, &rErr))
			assert.Equal(t, "Failed to analyze text", err.Error())
			assert.Equal(t, tt.status, rErr.StatusCode)
			assert.Equal(t, tt.detail, rErr.Detail)
			assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_Analyze_InvalidJSON(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusOK, `<html>Workflow was started</html>`, &calls, nil)

	_, err := New(srv.URL).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var pErr *model.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.Contains(t, err.Error(), "invalid JSON in analysis response")
}

func TestClient_Analyze_EmptySuccessBodyIsParseError(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusOK, ``, &calls, nil)

	_, err := New(srv.URL).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var pErr *model.ParseError
	assert.True(t, errors.As(err, &pErr))
}

func TestClient_Analyze_ResponseTooLarge(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusOK, `{"summary":"this body is longer than the limit"}`, &calls, nil)

	_, err := New(srv.URL, WithMaxResponseBytes(8)).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var pErr *model.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.Contains(t, err.Error(), "exceeds 8 bytes")
}

func TestClient_Analyze_ErrorStatusIgnoresBodyLimit(t *testing.T) {
	var calls int32
	body := strings.Repeat("x", 64)
	srv := newServer(t, http.StatusInternalServerError, body, &calls, nil)

	_, err := New(srv.URL, WithMaxResponseBytes(8)).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var rErr *model.ResponseError
	require.True(t, errors.As(err, &rErr), "got %T: %v", err, err)
	assert.Equal(t, model.MsgAnalyzeFailed, err.Error())
	assert.Equal(t, http.StatusInternalServerError, rErr.StatusCode)
	assert.Equal(t, body, rErr.Detail)
}

func TestClient_Analyze_ErrorStatusWithBrokenBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("partial"))
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var rErr *model.ResponseError
	require.True(t, errors.As(err, &rErr), "got %T: %v", err, err)
	assert.Equal(t, http.StatusBadGateway, rErr.StatusCode)
}

func TestErrorDetail_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("é", 250)

	detail := errorDetail([]byte(body))

	assert.True(t, utf8.ValidString(detail))
	assert.Equal(t, strings.Repeat("é", 200)+"...", detail)
}

func TestClient_Analyze_Unreachable(t *testing.T) {
	// Grab a free port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New("http://"+addr+"/webhook/text-analysis", WithTimeout(2*time.Second))
	_, err = c.Analyze(context.Background(), model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var tErr *model.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Contains(t, err.Error(), "connect")
	c.client.CloseIdleConnections()
}

func TestClient_Analyze_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := New(srv.URL).Analyze(ctx, model.AnalysisRequest{Text: "x", AnalysisType: model.AnalysisSummary})

	var tErr *model.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.WebhookURL = "https://hooks.example.com/webhook/text-analysis"
	cfg.Timeout = 5 * time.Second
	cfg.MaxResponseBytes = 1024
	cfg.Headers = map[string]string{"X-Api-Key": "secret"}

	c := NewFromConfig(cfg, zap.NewNop())
	assert.Equal(t, cfg.WebhookURL, c.Endpoint())
	assert.Equal(t, 5*time.Second, c.client.Timeout)
	assert.EqualValues(t, 1024, c.maxResponseBytes)
	assert.Equal(t, "secret", c.headers["X-Api-Key"])
}
