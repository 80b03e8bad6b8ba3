// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package locale provides the structured locale value, its strict string
// parser and the precedence rules used to pick the locale of a request.
package locale

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a language/region/variant triple.
//
// Language is empty or 2-3 lowercase letters, Region is empty or 2 uppercase
// letters and Variant is kept as given. The zero value is the root locale.
// Locales are comparable with ==.
type Locale struct {
	Language string
	Region   string
	Variant  string
}

// Root is the locale with every component empty.
var Root = Locale{}

// English is the fallback used when no default locale is configured.
var English = Locale{Language: "en"}

// IsRoot reports whether all components are empty.
func (l Locale) IsRoot() bool {
	return l == Root
}

// String returns the canonical form language[_REGION[_variant]].
// The region separator is written whenever a region or a variant follows,
// so {"", "GB", ""} renders as "_GB" and {"en", "", "x"} as "en__x".
func (l Locale) String() string {
	if l.Region == "" && l.Variant == "" {
		return l.Language
	}

	var b strings.Builder
	b.WriteString(l.Language)
	b.WriteByte('_')
	b.WriteString(l.Region)
	if l.Variant != "" {
		b.WriteByte('_')
		b.WriteString(l.Variant)
	}
	return b.String()
}

// Tag converts the locale to a BCP 47 tag. Variants that BCP 47 cannot
// express are dropped.
func (l Locale) Tag() language.Tag {
	if l.IsRoot() {
		return language.Und
	}

	lang := l.Language
	if lang == "" {
		lang = "und"
	}
	parts := []string{lang}
	if l.Region != "" {
		parts = append(parts, l.Region)
	}

	if l.Variant != "" {
		withVariant := append(slices.Clone(parts), strings.ReplaceAll(l.Variant, "_", "-"))
		if tag, err := language.Parse(strings.Join(withVariant, "-")); err == nil {
			return tag
		}
	}

	tag, err := language.Parse(strings.Join(parts, "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

// FromTag converts a BCP 47 tag into a Locale. Undetermined languages become
// empty, regions that are not two-letter country codes (for example the
// numeric "419") are dropped and multiple variants are joined with "-".
func FromTag(tag language.Tag) Locale {
	base, _, region := tag.Raw()

	var l Locale
	if lang := base.String(); lang != "und" {
		l.Language = lang
	}
	if r := region.String(); len(r) == 2 && r != "ZZ" && isAllUpper(r) {
		l.Region = r
	}

	if variants := tag.Variants(); len(variants) > 0 {
		names := make([]string, len(variants))
		for i, v := range variants {
			names[i] = v.String()
		}
		l.Variant = strings.Join(names, "-")
	}

	return l
}
