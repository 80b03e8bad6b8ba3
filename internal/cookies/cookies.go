// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cookies reads and writes the cookie that remembers a locale.
package cookies

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/oliverandrich/localeswitch/internal/config"
	"codeberg.org/oliverandrich/localeswitch/internal/locale"
	"github.com/gorilla/securecookie"
)

// DefaultPath is used when no cookie path is configured.
const DefaultPath = "/"

var (
	ErrInvalidHashKey = errors.New("invalid locale cookie hash key")
	ErrInvalidValue   = errors.New("invalid locale cookie value")
)

// Manager builds locale cookies from an immutable policy.
type Manager struct {
	name   string
	domain string
	path   string
	maxAge *int
	secure bool
	codec  *securecookie.SecureCookie // nil stores plain values
}

// NewManager creates a Manager from the locale configuration.
// A hash key, when set, must be 32 or 64 hex-encoded bytes.
func NewManager(cfg *config.LocaleConfig) (*Manager, error) {
	m := &Manager{
		name:   cfg.CookieName,
		domain: cfg.CookieDomain,
		path:   cfg.CookiePath,
		maxAge: cfg.CookieMaxAge,
		secure: cfg.CookieSecure,
	}
	if m.name == "" {
		m.name = config.DefaultCookieName
	}
	if m.path == "" {
		m.path = DefaultPath
	}

	if cfg.CookieHashKey != "" {
		hashKey, err := hex.DecodeString(cfg.CookieHashKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHashKey, err)
		}
		if len(hashKey) != 32 && len(hashKey) != 64 {
			return nil, fmt.Errorf("%w: must be 32 or 64 bytes, got %d", ErrInvalidHashKey, len(hashKey))
		}

		m.codec = securecookie.New(hashKey, nil)
		m.codec.SetSerializer(securecookie.JSONEncoder{})
		// Expiry is governed by the cookie itself.
		m.codec.MaxAge(0)
	}

	return m, nil
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

// Signed reports whether cookie values are signed.
func (m *Manager) Signed() bool {
	return m.codec != nil
}

// Lookup returns the first request cookie with the configured name, or nil.
func (m *Manager) Lookup(r *http.Request) *http.Cookie {
	for _, c := range r.Cookies() {
		if c.Name == m.name {
			return c
		}
	}
	return nil
}

// Value returns the locale string stored in c, verifying the signature
// when values are signed.
func (m *Manager) Value(c *http.Cookie) (string, error) {
	if m.codec == nil {
		return c.Value, nil
	}

	var value string
	if err := m.codec.Decode(m.name, c.Value, &value); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return value, nil
}

// Persist returns the cookie to send so that l is remembered.
//
// Without an existing cookie a new one is built from the configured domain
// and path. An existing cookie is copied with its domain and path kept. In
// both cases the value is set to the canonical form of l and the max-age
// and secure policy is applied.
func (m *Manager) Persist(l locale.Locale, existing *http.Cookie) (*http.Cookie, error) {
	value, err := m.encode(l.String())
	if err != nil {
		return nil, err
	}

	var c *http.Cookie
	if existing != nil {
		dup := *existing
		c = &dup
		c.Value = value
	} else {
		c = &http.Cookie{
			Name:   m.name,
			Value:  value,
			Domain: m.domain,
			Path:   m.path,
		}
	}

	if m.maxAge != nil {
		c.MaxAge = maxAgeAttr(*m.maxAge)
	}
	c.Secure = m.secure

	return c, nil
}

func (m *Manager) encode(value string) (string, error) {
	if m.codec == nil {
		return value, nil
	}

	encoded, err := m.codec.Encode(m.name, value)
	if err != nil {
		return "", fmt.Errorf("failed to sign locale cookie: %w", err)
	}
	return encoded, nil
}

// maxAgeAttr maps configured seconds onto http.Cookie.MaxAge: zero deletes
// the cookie and a negative value leaves a session cookie.
func maxAgeAttr(seconds int) int {
	switch {
	case seconds == 0:
		return -1
	case seconds < 0:
		return 0
	default:
		return seconds
	}
}
