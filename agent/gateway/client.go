// Package gateway talks to the ordering backend: the menu catalog, the
// conversation endpoint and the recommendation endpoint. Every failure is
// reported as a *contract.GatewayError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName  = "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/gateway"
	defaultTimeout       = 30 * time.Second
	maxResponseSizeBytes = 2 << 20

	pathMenu      = "/api/menu"
	pathChat      = "/api/chat"
	pathRecommend = "/api/menu/recommend"
)

var (
	_ contractx.CatalogGateway        = (*Client)(nil)
	_ contractx.ConversationGateway   = (*Client)(nil)
	_ contractx.RecommendationGateway = (*Client)(nil)
)

var errResponseTooLarge = errors.New("response body exceeds size limit")

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:5000"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Option customizes Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(instrumentationName)
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client implements the catalog, conversation and recommendation gateways
// against one backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: gateway base url is required", contractx.ErrValidation)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid gateway base url: %v", contractx.ErrValidation, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.GetTracerProvider().Tracer(instrumentationName),
		logger: log.Logger.With().Str("component", "gateway").Logger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// call performs one request and hands the body to decode. Transport, status
// and decode failures all come back as a GatewayError.
func (c *Client) call(
	ctx context.Context,
	gateway contractx.GatewayName,
	method string,
	path string,
	body any,
	decode func(raw []byte) error,
) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+string(gateway),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	started := time.Now()
	status, err := c.roundTrip(ctx, method, path, body, decode)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	logger := c.logger.With().
		Str("gateway", string(gateway)).
		Int("status", status).
		Dur("elapsed", time.Since(started)).
		Logger()

	if err != nil {
		gwErr := contractx.NewGatewayError(gateway, status, err)
		span.RecordError(gwErr)
		span.SetStatus(codes.Error, gwErr.Error())
		logger.Warn().Err(err).Msg("gateway call failed")
		return gwErr
	}

	logger.Debug().Msg("gateway call ok")
	return nil
}

func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	body any,
	decode func(raw []byte) error,
) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes+1))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(raw) > maxResponseSizeBytes {
		return resp.StatusCode, errResponseTooLarge
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, fmt.Errorf("unexpected http status body=%s", truncate(raw, 256))
	}

	if err := decode(raw); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	return string(raw[:n]) + "..."
}
