package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/parser"
	"go.uber.org/zap"
)

// DefaultMaxResponseBytes caps how much of a reply is read.
const DefaultMaxResponseBytes = 10 << 20

const (
	// maxDetailBytes bounds how much of an error reply is read.
	maxDetailBytes = 64 << 10
	maxDetailRunes = 200
)

// Client posts analysis requests to the automation webhook.
type Client struct {
	endpoint         string
	client           *http.Client
	headers          map[string]string
	maxResponseBytes int64
	logger           *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithHeaders adds static headers to every request, e.g. webhook auth.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithMaxResponseBytes limits the size of a reply body.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxResponseBytes = n }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:         endpoint,
		client:           &http.Client{Timeout: 60 * time.Second},
		headers:          make(map[string]string),
		maxResponseBytes: DefaultMaxResponseBytes,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured webhook URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Analyze sends one request and decodes the reply. It never retries.
func (c *Client) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.Value, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &model.TransportError{Err: err}
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("analysis_type", string(req.AnalysisType)),
	)
	log.Debug("Sending analysis request", zap.String("endpoint", c.endpoint), zap.Int("text_length", len(req.Text)))

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Warn("Analysis request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	log = log.With(zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The body only supplies detail; read errors and overflow are ignored
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		rErr := &model.ResponseError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
		log.Warn("Webhook returned error status",
			zap.String("detail", rErr.Detail),
			zap.Duration("elapsed", time.Since(start)))
		return nil, rErr
	}

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		log.Warn("Reading analysis response failed", zap.Error(err))
		return nil, &model.TransportError{Err: err}
	}
	if int64(len(respBytes)) > c.maxResponseBytes {
		return nil, &model.ParseError{Err: fmt.Errorf("response exceeds %d bytes", c.maxResponseBytes)}
	}
	log = log.With(zap.Duration("elapsed", time.Since(start)))

	result, err := parser.ParseValue(respBytes)
	if err != nil {
		log.Warn("Webhook returned invalid JSON", zap.Error(err))
		return nil, &model.ParseError{Err: err}
	}

	log.Info("Analysis complete", zap.String("result_kind", result.Kind.String()))
	return result, nil
}

// errorDetail pulls a message out of an error body. Empty or non-JSON bodies
// fall back to trimmed text.
func errorDetail(body []byte) string {
	var errResp struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if len(errResp.Error) > 0 {
			var s string
			if json.Unmarshal(errResp.Error, &s) == nil {
				return s
			}
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(errResp.Error, &nested) == nil && nested.Message != "" {
				return nested.Message
			}
		}
	}

	text := strings.TrimSpace(strings.ToValidUTF8(string(body), ""))
	if runes := []rune(text); len(runes) > maxDetailRunes {
		text = string(runes[:maxDetailRunes]) + "..."
	}
	return text
}
