// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/localeswitch/internal/i18n"
	"codeberg.org/oliverandrich/localeswitch/internal/locale"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	fallback locale.Locale
}

// New creates a new Handlers instance. The fallback is reported when a
// request reaches a handler without a resolved locale.
func New(fallback locale.Locale) *Handlers {
	return &Handlers{fallback: fallback}
}

// LocaleResponse describes the locale resolved for a request.
type LocaleResponse struct {
	Locale      string   `json:"locale"`
	Tag         string   `json:"tag"`
	Preferences []string `json:"preferences"`
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Locale reports the resolved locale and the preference list.
func (h *Handlers) Locale(c echo.Context) error {
	var view i18n.Localized = i18n.NewView(h.fallback, nil)
	if v, ok := i18n.FromContext(c.Request().Context()); ok {
		view = v
	}

	resolved := view.Locale()
	prefs := view.Preferences()
	resp := LocaleResponse{
		Locale:      resolved.String(),
		Tag:         resolved.Tag().String(),
		Preferences: make([]string, len(prefs)),
	}
	for i, l := range prefs {
		resp.Preferences[i] = l.String()
	}

	return c.JSON(http.StatusOK, resp)
}
