// Package chat posts run reports to an incoming chat webhook
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	"tasksync/internal/services/sync/domain"
)

// Message formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Options configures a Notifier
type Options struct {
	WebhookURL string
	Format     string
	Timeout    time.Duration
}

// FromConfig reads CHAT_* settings
func FromConfig(c config.Conf) Options {
	c = c.Prefix("CHAT_")
	url, _ := c.MaySecret("WEBHOOK_URL")
	return Options{
		WebhookURL: url,
		Format:     c.MayEnum("FORMAT", FormatMarkdown, FormatMarkdown, FormatHTML),
		Timeout:    c.MayDuration("TIMEOUT", 10*time.Second),
	}
}

// Enabled reports whether a webhook is configured
func (o Options) Enabled() bool { return strings.TrimSpace(o.WebhookURL) != "" }

// Notifier implements the sync Notifier over a webhook
type Notifier struct {
	opts Options
	http *http.Client
	log  logger.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

// New builds a Notifier
func New(o Options) *Notifier {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Format != FormatHTML {
		o.Format = FormatMarkdown
	}
	return &Notifier{opts: o, http: &http.Client{Timeout: o.Timeout}, log: *logger.Named("chat")}
}

type payload struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// Notify posts the rendered report
func (n *Notifier) Notify(ctx context.Context, r domain.Report) error {
	body := payload{Text: Markdown(r)}
	if n.opts.Format == FormatHTML {
		html, err := HTML(r)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "chat: render html")
		}
		body = payload{Text: html, Format: FormatHTML}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "chat: encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "chat: webhook url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "chat: post")
		}
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "chat: post")
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		n.log.Debug().Str("run_id", r.RunID).Str("outcome", string(r.Outcome)).Msg("chat notified")
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return perr.Newf(perr.ErrorCodeTooManyRequests, "chat: rate limited")
	default:
		return perr.Upstreamf("chat: webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
