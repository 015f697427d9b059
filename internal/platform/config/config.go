// Package config reads process configuration from environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"tasksync/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Conf is a namespaced view over environment variables, e.g. New().Prefix("LLM_")
type Conf struct{ prefix string }

// New returns the root view with no prefix
func New() Conf { return Conf{} }

// Prefix returns a child view with p appended to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// missing panics through the logger so the failure carries the env key
func (c Conf) missing(k string) {
	logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
}

func (c Conf) invalid(k, v, want string) {
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Msg("invalid " + want)
}

func (c Conf) fallback(k, v, want string) *zerolog.Event {
	return logger.Get().Warn().Str("key", c.key(k)).Str("value", v).Str("want", want)
}

// MustString panics when key is missing or blank
func (c Conf) MustString(key string) string {
	v := c.get(key)
	if v == "" {
		c.missing(key)
	}
	return v
}

// MustInt panics when key is missing or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(key, s, "int value")
	}
	return v
}

// MustBool panics when key is missing or not a bool
func (c Conf) MustBool(key string) bool {
	s := c.MustString(key)
	v, err := strconv.ParseBool(s)
	if err != nil {
		c.invalid(key, s, "bool value")
	}
	return v
}

// MustDuration panics when key is missing or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		c.invalid(key, s, "duration (e.g. 250ms, 2s, 1h)")
	}
	return d
}

// MustURL panics when key is missing or not an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		c.invalid(key, s, "absolute URL")
	}
	return u
}

// MustPort returns a listen addr like ":4000" for a port in 1..65535
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		c.invalid(key, s, "TCP port; expected 1..65535")
	}
	return ":" + s
}

// Require panics on the first blank key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.get(k) == "" {
			c.missing(k)
		}
	}
}

// MayString returns the value or def when blank
func (c Conf) MayString(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// MaySecret is MayString for credentials; a set value is reported without logging it
func (c Conf) MaySecret(key string) (string, bool) {
	v := c.get(key)
	return v, v != ""
}

// MayInt returns the value or def; invalid input logs and yields def
func (c Conf) MayInt(key string, def int) int {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	c.fallback(key, s, "int").Int("default", def).Msg("invalid env; using default")
	return def
}

// MayFloat64 returns the value or def; invalid input logs and yields def
func (c Conf) MayFloat64(key string, def float64) float64 {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	c.fallback(key, s, "float").Float64("default", def).Msg("invalid env; using default")
	return def
}

// MayBool returns the value or def; invalid input logs and yields def
func (c Conf) MayBool(key string, def bool) bool {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	c.fallback(key, s, "bool").Bool("default", def).Msg("invalid env; using default")
	return def
}

// MayDuration returns the value or def; invalid input logs and yields def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.get(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	c.fallback(key, s, "duration").Dur("default", def).Msg("invalid env; using default")
	return def
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.get(key)
	if s == "" {
		return def
	}
	out := make([]string, 0, strings.Count(s, ",")+1)
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the lowercased value when it is one of allowed, def when blank, and panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

// MayFile returns the path when it points at a readable file, def otherwise
func (c Conf) MayFile(key, def string) string {
	p := c.get(key)
	if p == "" {
		return def
	}
	if st, err := os.Stat(p); err != nil || st.IsDir() {
		c.fallback(key, p, "file").Str("default", def).Msg("file not readable; using default")
		return def
	}
	return p
}
