// Package llm is the OpenAI compatible chat completion collaborator
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 90 * time.Second
	defaultMaxRetry  = 2
	defaultRetryBase = time.Second
)

// Options configures the Client
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	// JSON asks for a json_object response format
	JSON       bool
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads LLM_* settings. JSON is left to the caller
func FromConfig(c config.Conf) Options {
	c = c.Prefix("LLM_")
	key, _ := c.MaySecret("API_KEY")
	return Options{
		APIKey:      key,
		BaseURL:     c.MayString("BASE_URL", ""),
		Model:       c.MayString("MODEL", defaultModel),
		Timeout:     c.MayDuration("TIMEOUT", defaultTimeout),
		Temperature: float32(c.MayFloat64("TEMPERATURE", 0)),
		MaxTokens:   c.MayInt("MAX_TOKENS", 0),
		MaxRetries:  c.MayInt("MAX_RETRIES", defaultMaxRetry),
	}
}

// Client implements the extraction Completer over go-openai
type Client struct {
	api   *openai.Client
	opts  Options
	log   logger.Logger
	pause func(context.Context, time.Duration) error
}

// New builds a Client. An empty BaseURL targets api.openai.com
func New(o Options) *Client {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: o.Timeout}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		opts:  o,
		log:   *logger.Named("llm"),
		pause: pause,
	}
}

// Model returns the configured model name
func (c *Client) Model() string { return c.opts.Model }

// Complete sends one system and one user message and returns the first
// choice's content. Rate limits and server errors are retried
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	if c.opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			c.log.Debug().
				Str("model", resp.Model).
				Int("prompt_tokens", resp.Usage.PromptTokens).
				Int("completion_tokens", resp.Usage.CompletionTokens).
				Dur("latency", time.Since(start)).
				Msg("llm completion")
			if len(resp.Choices) == 0 {
				return "", perr.Upstreamf("llm: no choices in response")
			}
			return resp.Choices[0].Message.Content, nil
		}

		mapped := classify(ctx, err)
		if !retryable(mapped) || attempt >= c.opts.MaxRetries {
			return "", mapped
		}
		wait := c.opts.RetryBase << uint(attempt)
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("llm call failed, retrying")
		if err := c.pause(ctx, wait); err != nil {
			return "", perr.Wrap(err, perr.ErrorCodeCanceled, "llm retry backoff")
		}
	}
}

// pause waits d or until ctx is done
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "llm request")
	}
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	default:
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm transport")
	}
	switch {
	case code == http.StatusTooManyRequests:
		return perr.Wrap(err, perr.ErrorCodeTooManyRequests, "llm rate limited")
	case code == http.StatusUnauthorized:
		return perr.Wrap(err, perr.ErrorCodeUnauthorized, "llm")
	case code == http.StatusForbidden:
		return perr.Wrap(err, perr.ErrorCodeForbidden, "llm")
	case code >= 500:
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm server error")
	}
	return perr.Wrap(err, perr.ErrorCodeUpstream, "llm")
}

func retryable(err error) bool {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeTooManyRequests, perr.ErrorCodeUnavailable:
		return true
	}
	return false
}
