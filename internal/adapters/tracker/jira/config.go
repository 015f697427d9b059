package jira

import (
	"tasksync/internal/platform/config"
)

// Settings are Options plus the enable switch
type Settings struct {
	Enabled bool
	Options
}

// FromConfig reads TRACKER_* settings
func FromConfig(c config.Conf) Settings {
	c = c.Prefix("TRACKER_")
	token, _ := c.MaySecret("TOKEN")
	return Settings{
		Enabled: c.MayBool("ENABLED", false),
		Options: Options{
			BaseURL:    c.MayString("BASE_URL", ""),
			Email:      c.MayString("EMAIL", ""),
			Token:      token,
			ProjectKey: c.MayString("PROJECT_KEY", ""),
			Timeout:    c.MayDuration("TIMEOUT", defaultTimeout),
			MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
			RetryBase:  c.MayDuration("RETRY_BASE", defaultRetryBase),
		},
	}
}
