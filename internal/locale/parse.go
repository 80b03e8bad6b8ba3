// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedLocale is returned by Parse for input outside the locale grammar.
var ErrMalformedLocale = errors.New("invalid locale format")

// Parse converts a locale string into a Locale.
//
//	Parse("")          = Locale{}
//	Parse("en")        = Locale{"en", "", ""}
//	Parse("en_GB")     = Locale{"en", "GB", ""}
//	Parse("en_GB_xxx") = Locale{"en", "GB", "xxx"}
//	Parse("_GB")       = Locale{"", "GB", ""}
//	Parse("_GB_xxx")   = Locale{"", "GB", "xxx"}
//
// Validation is strict: the language must be lowercase, the region
// uppercase, the separator an underscore and every length exact. Script and
// extension syntax ("#") is rejected. Lengths and positions count runes.
func Parse(s string) (Locale, error) {
	if s == "" {
		return Root, nil
	}

	if strings.Contains(s, "#") {
		return Locale{}, malformed(s)
	}

	runes := []rune(s)
	if len(runes) < 2 {
		return Locale{}, malformed(s)
	}

	if runes[0] == '_' {
		return parseRegionOnly(s, runes)
	}

	parts := strings.Split(s, "_")
	switch len(parts) - 1 {
	case 0:
		if isLanguage(s) {
			return Locale{Language: s}, nil
		}
	case 1:
		if isLanguage(parts[0]) && isRegion(parts[1]) {
			return Locale{Language: parts[0], Region: parts[1]}, nil
		}
	case 2:
		if isLanguage(parts[0]) && (parts[1] == "" || isRegion(parts[1])) && parts[2] != "" {
			return Locale{Language: parts[0], Region: parts[1], Variant: parts[2]}, nil
		}
	}

	return Locale{}, malformed(s)
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Locale {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// parseRegionOnly handles the "_RR" and "_RR_variant" forms.
func parseRegionOnly(s string, runes []rune) (Locale, error) {
	if len(runes) < 3 {
		return Locale{}, malformed(s)
	}
	if !unicode.IsUpper(runes[1]) || !unicode.IsUpper(runes[2]) {
		return Locale{}, malformed(s)
	}

	region := string(runes[1:3])
	if len(runes) == 3 {
		return Locale{Region: region}, nil
	}
	if len(runes) < 5 || runes[3] != '_' {
		return Locale{}, malformed(s)
	}

	return Locale{Region: region, Variant: string(runes[4:])}, nil
}

func isLanguage(s string) bool {
	n := len([]rune(s))
	return (n == 2 || n == 3) && isAllLower(s)
}

func isRegion(s string) bool {
	return len([]rune(s)) == 2 && isAllUpper(s)
}

// isAllLower reports whether s is non-empty and every rune is lowercase.
func isAllLower(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether s is non-empty and every rune is uppercase.
func isAllUpper(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func malformed(s string) error {
	return fmt.Errorf("%w: %q", ErrMalformedLocale, s)
}
