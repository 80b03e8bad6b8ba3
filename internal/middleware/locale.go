// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"codeberg.org/oliverandrich/localeswitch/internal/config"
	"codeberg.org/oliverandrich/localeswitch/internal/cookies"
	"codeberg.org/oliverandrich/localeswitch/internal/i18n"
	"codeberg.org/oliverandrich/localeswitch/internal/locale"
)

// LocaleResolver decides the locale of each request from the query
// parameter, the locale cookie, the Accept-Language header and the
// configured default, in that order. It is safe for concurrent use.
type LocaleResolver struct {
	paramName string
	cookies   *cookies.Manager
	fallback  locale.Locale
	allowed   []locale.Locale
	logger    *slog.Logger
}

// NewLocaleResolver creates a LocaleResolver from the locale configuration.
// The default and allowed locales must be valid locale strings.
// A nil logger uses slog.Default().
func NewLocaleResolver(cfg *config.LocaleConfig, logger *slog.Logger) (*LocaleResolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fallback := locale.English
	if cfg.Default != "" {
		l, err := locale.Parse(cfg.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default locale: %w", err)
		}
		fallback = l
	}

	allowed := make([]locale.Locale, 0, len(cfg.Allowed))
	for _, s := range cfg.Allowed {
		l, err := locale.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed locale: %w", err)
		}
		allowed = append(allowed, l)
	}

	mgr, err := cookies.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	paramName := cfg.ParamName
	if paramName == "" {
		paramName = config.DefaultParamName
	}

	return &LocaleResolver{
		paramName: paramName,
		cookies:   mgr,
		fallback:  fallback,
		allowed:   allowed,
		logger:    logger,
	}, nil
}

// Default returns the locale used when no other signal is present.
func (lr *LocaleResolver) Default() locale.Locale {
	return lr.fallback
}

// Handler returns net/http middleware that resolves the locale and makes it
// available to next through i18n.FromContext.
func (lr *LocaleResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, lr.Resolve(w, r))
	})
}

// Resolve picks the locale of r, writes the locale cookie to w and returns
// a shallow copy of r whose context carries the i18n.View.
// Malformed query or cookie values are logged and ignored.
func (lr *LocaleResolver) Resolve(w http.ResponseWriter, r *http.Request) *http.Request {
	client := i18n.ClientLocales(r.Header.Get("Accept-Language"))

	query := lr.querySignal(r)
	cookie, existing := lr.cookieSignal(r)
	header := headerSignal(client)

	d := locale.Resolve(query, cookie, header, lr.fallback)
	lr.logger.Debug("locale resolved",
		"locale", d.Locale.String(),
		"origin", d.Origin.String(),
	)

	lr.persist(w, d.Locale, existing)

	view := i18n.NewView(d.Locale, client)
	return r.WithContext(i18n.WithView(r.Context(), view))
}

func (lr *LocaleResolver) querySignal(r *http.Request) locale.Signal {
	values, ok := r.URL.Query()[lr.paramName]
	if !ok || len(values) == 0 {
		return locale.Absent(locale.OriginQuery)
	}
	return lr.parseSignal(locale.OriginQuery, values[0])
}

// cookieSignal also returns the matched cookie so it can be refreshed.
func (lr *LocaleResolver) cookieSignal(r *http.Request) (locale.Signal, *http.Cookie) {
	c := lr.cookies.Lookup(r)
	if c == nil {
		return locale.Absent(locale.OriginCookie), nil
	}

	value, err := lr.cookies.Value(c)
	if err != nil {
		lr.logger.Warn("invalid locale cookie",
			"cookie", c.Name,
			"value", c.Value,
			"error", err,
		)
		return locale.Absent(locale.OriginCookie), c
	}
	return lr.parseSignal(locale.OriginCookie, value), c
}

func headerSignal(client []locale.Locale) locale.Signal {
	if len(client) == 0 {
		return locale.Absent(locale.OriginClientHeader)
	}
	return locale.Found(locale.OriginClientHeader, client[0])
}

func (lr *LocaleResolver) parseSignal(origin locale.Origin, raw string) locale.Signal {
	l, err := locale.Parse(raw)
	if err != nil {
		lr.logger.Warn("invalid locale",
			"origin", origin.String(),
			"value", raw,
			"error", err,
		)
		return locale.Absent(origin)
	}

	if len(lr.allowed) > 0 && !slices.Contains(lr.allowed, l) {
		lr.logger.Debug("locale not allowed",
			"origin", origin.String(),
			"locale", l.String(),
		)
		return locale.Absent(origin)
	}

	return locale.Found(origin, l)
}

func (lr *LocaleResolver) persist(w http.ResponseWriter, l locale.Locale, existing *http.Cookie) {
	c, err := lr.cookies.Persist(l, existing)
	if err != nil {
		lr.logger.Error("failed to persist locale", "locale", l.String(), "error", err)
		return
	}
	http.SetCookie(w, c)
}
