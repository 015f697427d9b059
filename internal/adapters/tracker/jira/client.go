// Package jira is a small Jira Cloud REST v3 client for creating, transitioning
// and describing issues
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUA        = "tasksync"
	defaultMaxRetry  = 4
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL    string
	Email      string
	Token      string
	ProjectKey string
	UserAgent  string
	Timeout    time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Accounts maps a participant name to a Jira accountId
type Accounts interface {
	AccountID(name string) (string, bool)
}

// Client talks to one Jira site and one project
type Client struct {
	http     *http.Client
	opts     Options
	accounts Accounts
	log      logger.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

// NewClient creates a Client with defaults filled in. accounts may be nil
func NewClient(o Options, accounts Accounts) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	o.ProjectKey = strings.ToUpper(strings.TrimSpace(o.ProjectKey))
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:     &http.Client{Timeout: o.Timeout},
		opts:     o,
		accounts: accounts,
		log:      *logger.Named("jira"),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// do sends body as JSON and decodes a 2xx response into out when non-nil.
// 429 and 502/503/504 are retried, honoring Retry-After
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeJSON, "jira encode request")
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return perr.Wrap(err, perr.ErrorCodeCanceled, "jira request")
		}

		req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "jira new request failed")
		}
		req.SetBasicAuth(c.opts.Email, c.opts.Token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "jira request")
			}
			if attempt >= c.opts.MaxRetries {
				return perr.Wrap(err, perr.ErrorCodeUnavailable, "jira transport failed")
			}
			back := c.backoff(attempt)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempt).Msg("jira transport error retrying")
			c.sleep(back)
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", c.now().Sub(start)).
			Msg("jira http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil || resp.StatusCode == http.StatusNoContent {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return perr.Wrap(err, perr.ErrorCodeJSON, "jira decode response")
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusBadGateway ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout:
			wait := retryAfter(resp.Header)
			drain(resp.Body)
			if attempt >= c.opts.MaxRetries {
				if resp.StatusCode == http.StatusTooManyRequests {
					return perr.Newf(perr.ErrorCodeTooManyRequests, "jira rate limited")
				}
				return perr.Newf(perr.ErrorCodeUnavailable, "jira transient server error %d", resp.StatusCode)
			}
			if wait <= 0 {
				wait = c.backoff(attempt)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("sleep", wait).Msg("jira backing off")
			c.sleep(wait)

		default:
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return statusError(resp.StatusCode, method, path, strings.TrimSpace(string(msg)))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func statusError(code int, method, path, body string) error {
	var ec perr.ErrorCode
	switch code {
	case http.StatusBadRequest:
		ec = perr.ErrorCodeInvalidArgument
	case http.StatusUnauthorized:
		ec = perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		ec = perr.ErrorCodeForbidden
	case http.StatusNotFound:
		ec = perr.ErrorCodeNotFound
	case http.StatusConflict:
		ec = perr.ErrorCodeConflict
	default:
		ec = perr.ErrorCodeUpstream
	}
	return perr.Newf(ec, "jira %s %s: status %d: %s", method, path, code, body)
}

func retryAfter(h http.Header) time.Duration {
	if s, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	return 0
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	_ = rc.Close()
}
