package webhook

import (
	"github.com/helmcode/text-analyzer/pkg/config"
	"go.uber.org/zap"
)

// NewFromConfig builds a Client from validated configuration.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) *Client {
	opts := []Option{
		WithTimeout(cfg.Timeout),
		WithHeaders(cfg.Headers),
		WithLogger(logger),
	}
	if cfg.MaxResponseBytes > 0 {
		opts = append(opts, WithMaxResponseBytes(cfg.MaxResponseBytes))
	}
	return New(cfg.WebhookURL, opts...)
}
