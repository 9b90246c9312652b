// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	DefaultBaseURL    = "http://127.0.0.1:8083"
	DefaultAskPath    = "/ask"
	DefaultHealthPath = "/health"
	DefaultTimeout    = 20 * time.Second
)

// ClientConfig holds configuration options for the ask client.
type ClientConfig struct {
	// BaseURL of the service (default: http://127.0.0.1:8083)
	BaseURL string

	// AskPath is "/ask" on the bare service and "/chatbot/ask" behind the
	// web gateway.
	AskPath string

	HealthPath string

	// Timeout for a single request (default: 20s)
	Timeout time.Duration

	// RateLimit caps requests per second across all threads. Zero or less
	// disables the limit.
	RateLimit float64

	Logger zerolog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    DefaultBaseURL,
		AskPath:    DefaultAskPath,
		HealthPath: DefaultHealthPath,
		Timeout:    DefaultTimeout,
		Logger:     zerolog.Nop(),
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the ask service. It is safe for concurrent use.
type Client struct {
	config  *ClientConfig
	http    *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClientWithConfig creates a client, filling zero values with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AskPath == "" {
		config.AskPath = DefaultAskPath
	}
	if config.HealthPath == "" {
		config.HealthPath = DefaultHealthPath
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Client{
		config: config,
		http: resty.New().
			SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(config.Timeout),
		limiter: limiter,
		log:     config.Logger,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

func (c *Client) timeoutMessage() string {
	return fmt.Sprintf("timeout of %s exceeded", c.config.Timeout)
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends a question for the given session and returns the normalized
// reply. sessionID correlates the conversation on the server; toonchat uses
// the thread id.
func (c *Client) Ask(ctx context.Context, question, sessionID string) (*model.Reply, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "question is empty"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransport(err, c.timeoutMessage())
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(AskRequest{Question: question, SessionID: sessionID}).
		Post(c.config.AskPath)
	if err != nil {
		ce := classifyTransport(err, c.timeoutMessage())
		c.log.Warn().Err(err).Str("session", sessionID).Str("type", ce.Type.String()).
			Dur("elapsed", time.Since(start)).Msg("ask request failed")
		return nil, ce
	}

	if resp.IsError() {
		ce := &ClientError{
			Type:       ErrTypeServer,
			Message:    fmt.Sprintf("request failed with status code %d", resp.StatusCode()),
			Detail:     parseDetail(resp.Body()),
			StatusCode: resp.StatusCode(),
		}
		c.log.Warn().Int("status", ce.StatusCode).Str("detail", ce.Detail).Str("session", sessionID).
			Msg("ask service returned an error")
		return nil, ce
	}

	reply := parseReply(resp.Body())
	c.log.Debug().Str("session", sessionID).Str("intent", string(reply.Intent)).
		Int("chunks", len(reply.Chunks)).Dur("elapsed", time.Since(start)).Msg("ask answered")
	return reply, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health queries the service health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&health).
		Get(c.config.HealthPath)
	if err != nil {
		return nil, classifyTransport(err, c.timeoutMessage())
	}
	if resp.IsError() {
		return nil, &ClientError{
			Type:       ErrTypeServer,
			Message:    fmt.Sprintf("request failed with status code %d", resp.StatusCode()),
			Detail:     parseDetail(resp.Body()),
			StatusCode: resp.StatusCode(),
		}
	}
	return &health, nil
}
