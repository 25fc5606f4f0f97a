package common

import (
	"errors"
	"net"
	"net/http"

	"github.com/futig/mini-rag/internal/config"
	pkgHTTP "github.com/futig/mini-rag/pkg/http"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// NewBaseConnector builds an outbound JSON connector for one external service.
// auth decorates requests with the service's credentials and may be nil
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, auth pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkgHTTP.NewConnector(connCfg, clientOptions(cfg, auth)...)
}

// NewOpenAIClient builds a go-openai client for an OpenAI-compatible endpoint
// that shares the timeouts and request logging of the other connectors
func NewOpenAIClient(cfg config.HTTPClientConfig, apiKey string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.Url
	clientCfg.HTTPClient = pkgHTTP.NewClient(clientOptions(cfg, nil)...)

	return openai.NewClientWithConfig(clientCfg)
}

// IsRetryableOpenAI mirrors pkgHTTP.IsRetryable for go-openai errors
func IsRetryableOpenAI(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func clientOptions(cfg config.HTTPClientConfig, auth pkgHTTP.HttpOpts) []pkgHTTP.HttpOpts {
	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
	}
	if auth != nil {
		opts = append(opts, auth)
	}
	// outermost, so credentials added by auth never reach the log
	opts = append(opts, pkgHTTP.WithRequestLogging())

	return opts
}
