// Package config reads application settings from prefixed environment variables
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"narrativeradar/internal/platform/logger"

	"github.com/joho/godotenv"
)

// Conf is a namespaced view over environment variables, e.g. Prefix("NARRATIVE_")
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view with p appended to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the fully qualified variable name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

// LoadDotEnv loads the given .env files (default ".env") without overriding
// variables that are already set. Missing files are ignored
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	return v
}

// MustInt panics when key is unset or not an integer
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.Key(key)).Str("value", s).Msg("invalid int value")
	}
	return v
}

// MustDuration panics when key is unset or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.Key(key)).Str("value", s).Msg("invalid duration (e.g. 250ms, 2s, 1h)")
	}
	return d
}

// MustURL panics when key is unset or not an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		logger.Get().Panic().Str("key", c.Key(key)).Str("value", s).Msg("invalid absolute URL")
	}
	return u
}

// Require panics on the first blank key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		c.MustString(k)
	}
}

// MayString returns the value or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def; malformed values warn and fall back
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.warn(key, s, strconv.Itoa(def), "invalid int; using default")
		return def
	}
	return v
}

// MayFloat64 returns the value or def; malformed values warn and fall back
func (c Conf) MayFloat64(key string, def float64) float64 {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.warn(key, s, strconv.FormatFloat(def, 'g', -1, 64), "invalid float; using default")
		return def
	}
	return v
}

// MayBool returns the value or def; malformed values warn and fall back
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	c.warn(key, s, strconv.FormatBool(def), "invalid bool; using default")
	return def
}

// MayDuration returns the value or def; malformed values warn and fall back
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		c.warn(key, s, def.String(), "invalid duration; using default")
		return def
	}
	return d
}

// MayURL returns the value or def; relative or malformed URLs warn and fall back
func (c Conf) MayURL(key, def string) string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if u, err := url.Parse(s); err != nil || !u.IsAbs() {
		c.warn(key, s, def, "invalid absolute URL; using default")
		return def
	}
	return strings.TrimRight(s, "/")
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	var out []string
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

// MayEnum returns the lowercased value when it is one of allowed, def otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.lookup(key)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Warn().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Str("default", def).
		Msg("invalid enum; using default")
	return def
}

// MayPort returns a listen address like ":4000"; out of range ports fall back to def
func (c Conf) MayPort(key string, def int) string {
	p := c.MayInt(key, def)
	if p < 1 || p > 65535 {
		c.warn(key, strconv.Itoa(p), strconv.Itoa(def), "invalid TCP port; using default")
		p = def
	}
	return ":" + strconv.Itoa(p)
}

func (c Conf) warn(key, value, def, msg string) {
	logger.Get().Warn().Str("key", c.Key(key)).Str("value", value).Str("default", def).Msg(msg)
}
