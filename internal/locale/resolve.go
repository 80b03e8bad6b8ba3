// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

// Origin identifies where a candidate locale came from.
type Origin int

// Origins in descending precedence.
const (
	OriginQuery Origin = iota
	OriginCookie
	OriginClientHeader
	OriginSystemDefault
)

func (o Origin) String() string {
	switch o {
	case OriginQuery:
		return "query"
	case OriginCookie:
		return "cookie"
	case OriginClientHeader:
		return "client_header"
	case OriginSystemDefault:
		return "system_default"
	default:
		return "unknown"
	}
}

// Signal is an optional candidate locale from one origin.
type Signal struct {
	Origin  Origin
	Locale  Locale
	Present bool
}

// Found returns a present signal.
func Found(origin Origin, l Locale) Signal {
	return Signal{Origin: origin, Locale: l, Present: true}
}

// Absent returns a signal carrying no value.
func Absent(origin Origin) Signal {
	return Signal{Origin: origin}
}

// Decision is the outcome of Resolve.
type Decision struct {
	Locale Locale
	Origin Origin
}

// Resolve picks the locale of a request. The first present signal in the
// order query, cookie, client header wins; the fallback is used when all
// three are absent. Components are never merged across signals.
func Resolve(query, cookie, header Signal, fallback Locale) Decision {
	for _, s := range [...]Signal{query, cookie, header} {
		if s.Present {
			return Decision{Locale: s.Locale, Origin: s.Origin}
		}
	}
	return Decision{Locale: fallback, Origin: OriginSystemDefault}
}
