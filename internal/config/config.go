// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// Defaults for the locale options.
const (
	DefaultParamName  = "locale"
	DefaultCookieName = "locale"
	DefaultCookiePath = "/"
	DefaultLocale     = "en"
)

// listSeparators split the allowed-locales option.
const listSeparators = ",; \t\n"

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server ServerConfig
	Log    LogConfig
	Locale LocaleConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type LocaleConfig struct { //nolint:govet // fieldalignment not critical
	ParamName     string   // Query parameter carrying an explicit locale
	CookieName    string   // Cookie remembering the resolved locale
	CookieDomain  string   // Empty means the request host
	CookiePath    string   // Empty means "/"
	CookieMaxAge  *int     // Seconds; nil means session cookie, 0 deletes, negative is session
	CookieSecure  bool     // HTTPS only cookie
	CookieHashKey string   // Hex key for signed cookie values (optional)
	Default       string   // Locale used when nothing else applies
	Allowed       []string // Locales accepted from query and cookie; empty allows all
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Locale: LocaleConfig{
			ParamName:     cmd.String("locale-param-name"),
			CookieName:    cmd.String("locale-cookie-name"),
			CookieDomain:  cmd.String("locale-cookie-domain"),
			CookiePath:    cmd.String("locale-cookie-path"),
			CookieSecure:  cmd.Bool("locale-cookie-secure"),
			CookieHashKey: cmd.String("locale-cookie-hash-key"),
			Default:       cmd.String("locale-default"),
			Allowed:       SplitLocales(cmd.String("locale-allowed")),
		},
	}

	if cmd.IsSet("locale-cookie-max-age") {
		maxAge := int(cmd.Int("locale-cookie-max-age"))
		cfg.Locale.CookieMaxAge = &maxAge
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	applyLocaleDefaults(&cfg.Locale)

	return cfg
}

// applyLocaleDefaults fills in options left empty by the sources.
func applyLocaleDefaults(cfg *LocaleConfig) {
	if cfg.ParamName == "" {
		cfg.ParamName = DefaultParamName
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = DefaultCookiePath
	}
	if cfg.Default == "" {
		cfg.Default = DefaultLocale
	}
}

// SplitLocales splits a list of locale strings on commas, semicolons and
// whitespace. Empty entries are skipped.
func SplitLocales(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(listSeparators, r)
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	// Hide the default port in URL
	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		// Locale flags
		&cli.StringFlag{
			Name:    "locale-param-name",
			Value:   DefaultParamName,
			Usage:   "Query parameter that selects a locale",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_PARAM_NAME"), toml.TOML("locale.param_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-cookie-name",
			Value:   DefaultCookieName,
			Usage:   "Cookie that remembers the locale",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_NAME"), toml.TOML("locale.cookie_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-cookie-domain",
			Usage:   "Locale cookie domain (defaults to the request host)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_DOMAIN"), toml.TOML("locale.cookie_domain", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-cookie-path",
			Value:   DefaultCookiePath,
			Usage:   "Locale cookie path",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_PATH"), toml.TOML("locale.cookie_path", configFile)),
		},
		&cli.IntFlag{
			Name:    "locale-cookie-max-age",
			Usage:   "Locale cookie max age in seconds (unset for a session cookie)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_MAX_AGE"), toml.TOML("locale.cookie_max_age", configFile)),
		},
		&cli.BoolFlag{
			Name:    "locale-cookie-secure",
			Usage:   "HTTPS only locale cookie",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_SECURE"), toml.TOML("locale.cookie_secure", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-cookie-hash-key",
			Usage:   "Hex key (32 or 64 bytes) for signing the locale cookie (optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_COOKIE_HASH_KEY"), toml.TOML("locale.cookie_hash_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-default",
			Value:   DefaultLocale,
			Usage:   "Default locale, e.g. en or en_GB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_DEFAULT"), toml.TOML("locale.default", configFile)),
		},
		&cli.StringFlag{
			Name:    "locale-allowed",
			Usage:   "Locales accepted from query and cookie, separated by commas or spaces (empty allows all)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOCALE_ALLOWED"), toml.TOML("locale.allowed", configFile)),
		},
	}
}
