// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/localeswitch/internal/config"
	"codeberg.org/oliverandrich/localeswitch/internal/handlers"
	"codeberg.org/oliverandrich/localeswitch/internal/i18n"
	"codeberg.org/oliverandrich/localeswitch/internal/locale"
	"codeberg.org/oliverandrich/localeswitch/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "localhost",
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			MaxBodySize: 1,
		},
		Log: config.LogConfig{Level: "debug", Format: "text"},
		Locale: config.LocaleConfig{
			ParamName:  config.DefaultParamName,
			CookieName: config.DefaultCookieName,
			CookiePath: config.DefaultCookiePath,
			Default:    config.DefaultLocale,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	e, err := New(cfg, logger)
	require.NoError(t, err)
	return e
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLocaleMiddleware(t *testing.T) {
	lr, err := middleware.NewLocaleResolver(&newTestConfig().Locale, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Use(localeMiddleware(lr))

	var resolved locale.Locale
	e.GET("/", func(c echo.Context) error {
		resolved = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	t.Run("German header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-DE")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, locale.Locale{Language: "de", Region: "DE"}, resolved)
		c := findCookie(rec, "locale")
		require.NotNil(t, c)
		assert.Equal(t, "de_DE", c.Value)
	})

	t.Run("query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?locale=fr_FR", nil)
		req.Header.Set("Accept-Language", "de-DE")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, locale.Locale{Language: "fr", Region: "FR"}, resolved)
	})

	t.Run("nothing present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, locale.English, resolved)
		c := findCookie(rec, "locale")
		require.NotNil(t, c)
		assert.Equal(t, "en", c.Value)
	})
}

func TestNew_InvalidLocaleConfig(t *testing.T) {
	cfg := newTestConfig()
	cfg.Locale.Default = "EN"

	_, err := New(cfg, slog.Default())

	require.Error(t, err)
	assert.ErrorIs(t, err, locale.ErrMalformedLocale)
}

func TestServer_Health(t *testing.T) {
	e := newTestServer(t, newTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Locale(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		cookie      string
		header      string
		locale      string
		preferences []string
	}{
		{
			name:        "header only",
			target:      "/locale",
			header:      "fr-FR",
			locale:      "fr_FR",
			preferences: []string{"fr_FR"},
		},
		{
			name:        "invalid query falls back to cookie",
			target:      "/locale?locale=xx-INVALID",
			cookie:      "de_DE",
			header:      "fr-FR",
			locale:      "de_DE",
			preferences: []string{"de_DE", "fr_FR"},
		},
		{
			name:        "query promoted in preferences",
			target:      "/locale?locale=en_US",
			header:      "fr-FR,en-US;q=0.8",
			locale:      "en_US",
			preferences: []string{"en_US", "fr_FR"},
		},
		{
			name:        "default",
			target:      "/locale",
			locale:      "en",
			preferences: []string{"en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, newTestConfig())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "locale", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var resp handlers.LocaleResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.locale, resp.Locale)
			assert.Equal(t, tt.preferences, resp.Preferences)

			c := findCookie(rec, "locale")
			require.NotNil(t, c)
			assert.Equal(t, tt.locale, c.Value)
		})
	}
}

func TestServer_LocaleCookieAttributes(t *testing.T) {
	cfg := newTestConfig()
	maxAge := 3600
	cfg.Locale.CookieMaxAge = &maxAge
	cfg.Locale.CookieSecure = true
	cfg.Locale.CookieDomain = "example.com"
	e := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/locale?locale=it_IT", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	c := findCookie(rec, "locale")
	require.NotNil(t, c)
	assert.Equal(t, "it_IT", c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/", c.Path)
}

func TestServer_TrailingSlashRedirect(t *testing.T) {
	e := newTestServer(t, newTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/locale/?locale=de_DE", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/locale?locale=de_DE", rec.Header().Get("Location"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	e := echo.New()
	e.Use(requestLogger())
	e.GET("/ok", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	t.Run("success logged at info", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "uri=/ok")
		assert.Contains(t, buf.String(), "status=200")
	})

	t.Run("error logged at error", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "status=418")
	})
}

func TestServer_NotFound(t *testing.T) {
	e := newTestServer(t, newTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"error":"Not Found"}`, rec.Body.String())
	assert.NotNil(t, findCookie(rec, "locale"))
}
