// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"
	"iter"
	"slices"

	"codeberg.org/oliverandrich/localeswitch/internal/locale"
	"golang.org/x/text/language"
)

type viewContextKey struct{}

// Localized is implemented by anything that knows the locale of a request.
type Localized interface {
	Locale() locale.Locale
	Preferences() []locale.Locale
}

// View exposes the resolved locale of a request together with the client's
// preference list. A View is immutable once created.
type View struct {
	resolved locale.Locale
	client   []locale.Locale
}

var _ Localized = (*View)(nil)

// NewView creates a View for the resolved locale and the client's own
// preference list in descending order.
func NewView(resolved locale.Locale, client []locale.Locale) *View {
	return &View{
		resolved: resolved,
		client:   slices.Clone(client),
	}
}

// Locale returns the resolved locale.
func (v *View) Locale() locale.Locale {
	return v.resolved
}

// Preferences returns the client's preferences with the resolved locale
// moved to the front. Each call returns a new slice.
func (v *View) Preferences() []locale.Locale {
	return slices.Collect(v.All())
}

// All yields the same sequence as Preferences without allocating it.
func (v *View) All() iter.Seq[locale.Locale] {
	return func(yield func(locale.Locale) bool) {
		if !yield(v.resolved) {
			return
		}
		for _, l := range v.client {
			if l == v.resolved {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

// WithView adds the view to the context.
func WithView(ctx context.Context, v *View) context.Context {
	return context.WithValue(ctx, viewContextKey{}, v)
}

// FromContext returns the view stored in ctx, if any.
func FromContext(ctx context.Context) (*View, bool) {
	v, ok := ctx.Value(viewContextKey{}).(*View)
	return v, ok && v != nil
}

// GetLocale returns the resolved locale from context.
// Without a view it returns English.
func GetLocale(ctx context.Context) locale.Locale {
	if v, ok := FromContext(ctx); ok {
		return v.Locale()
	}
	return locale.English
}

// ClientLocales parses an Accept-Language header into locales ordered by
// quality. Wildcards and undetermined languages are skipped. A malformed
// header yields no locales.
func ClientLocales(acceptLanguage string) []locale.Locale {
	if acceptLanguage == "" {
		return nil
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}

	locales := make([]locale.Locale, 0, len(tags))
	for _, tag := range tags {
		if base, _ := tag.Base(); base.String() == "mul" {
			continue
		}
		if l := locale.FromTag(tag); !l.IsRoot() {
			locales = append(locales, l)
		}
	}
	return locales
}
