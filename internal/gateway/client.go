// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/herder-tui/internal/logging"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the herder server base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// APIPrefix is prepended to every endpoint path (default: /api/v1)
	APIPrefix string

	// Token is the bearer token sent with every request.
	Token string

	// Timeout for a single request; 0 disables the client-side timeout.
	Timeout time.Duration

	// RateLimit caps requests per second; 0 disables limiting.
	RateLimit float64

	// Logger receives request logs. Defaults to the "gateway" component logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:8000",
		APIPrefix: "/api/v1",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues authenticated calls against the herder HTTP API.
//
// The Client is safe for concurrent use; Bubble Tea runs commands on their
// own goroutines.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewClient creates a new gateway client. A nil config uses DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.APIPrefix == "" {
		config.APIPrefix = DefaultConfig().APIPrefix
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	logger := config.Logger
	if logger == nil {
		logger = logging.For("gateway")
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := int(config.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
		log:        logger,
	}
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// PERMISSIONS
// =============================================================================

// AllowedTabs returns the tab ids the current user may open.
func (c *Client) AllowedTabs(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, "allowed_tabs", http.MethodGet, "/allowed_tabs", nil)
	if err != nil {
		return nil, err
	}
	var tabs []string
	if err := json.Unmarshal(body, &tabs); err != nil {
		return nil, Malformed("allowed_tabs", "expected a list of tab ids", err)
	}
	return tabs, nil
}

// =============================================================================
// NODE OPERATIONS
// =============================================================================

// Nodes returns the raw node payload (nodeId -> node). Key order matters to
// the caller, so the body is not decoded here.
func (c *Client) Nodes(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "nodes", http.MethodGet, "/llamas", nil)
}

// SwitchModel asks the server to load model on node.
func (c *Client) SwitchModel(ctx context.Context, model, node string) error {
	_, err := c.do(ctx, "switch_model", http.MethodPost, "/switch_model", SwitchModelRequest{
		ModelKey: model,
		NodeKey:  node,
	})
	return err
}

// StartWorkers starts the inference workers on all nodes.
func (c *Client) StartWorkers(ctx context.Context) error {
	_, err := c.do(ctx, "start_workers", http.MethodGet, "/start_workers", nil)
	return err
}

// =============================================================================
// PROMPTS AND INFERENCE
// =============================================================================

// Prompts returns the raw prompt catalog payload.
func (c *Client) Prompts(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "prompts", http.MethodGet, "/prompts", nil)
}

// Infer submits an inference request.
func (c *Client) Infer(ctx context.Context, req InferRequest) (*InferResponse, error) {
	body, err := c.do(ctx, "infer", http.MethodPost, "/infer", req)
	if err != nil {
		return nil, err
	}
	var wire inferWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, Malformed("infer", "response is not a JSON object", err)
	}
	if wire.Text == nil {
		return nil, Malformed("infer", "missing field text", nil)
	}
	if wire.InferenceID == nil || *wire.InferenceID == "" {
		return nil, Malformed("infer", "missing field inference_id", nil)
	}
	return &InferResponse{
		Text:        *wire.Text,
		InferenceID: *wire.InferenceID,
		Model:       wire.Model,
	}, nil
}

// =============================================================================
// FEEDBACK
// =============================================================================

// SubmitScore records a 1-5 rating for an inference.
func (c *Client) SubmitScore(ctx context.Context, inferenceID string, score int) error {
	_, err := c.do(ctx, "score", http.MethodPost, "/score", ScoreRequest{
		InferenceID: inferenceID,
		Score:       score,
	})
	return err
}

// SubmitFeedback records written feedback for an inference.
func (c *Client) SubmitFeedback(ctx context.Context, inferenceID, feedback string) error {
	_, err := c.do(ctx, "feedback", http.MethodPost, "/feedback", FeedbackRequest{
		InferenceID: inferenceID,
		Feedback:    feedback,
	})
	return err
}

// History returns the raw history payload.
func (c *Client) History(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "history", http.MethodGet, "/history", nil)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, Cause: err}
		}
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, Detail: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+c.config.APIPrefix+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Detail: "failed to create request", Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, &Error{Kind: KindTransport, Op: op, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Detail: "failed to read response", Cause: err}
	}

	c.log.Debug("request complete",
		slog.String("op", op),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:   KindRejected,
			Op:     op,
			Status: resp.StatusCode,
			Detail: detailText(body),
		}
	}
	return body, nil
}
