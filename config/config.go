// Package config loads the weavekit server configuration from an optional
// YAML file and WEAVEKIT_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/router"
)

// EnvPrefix prefixes every environment override, e.g. WEAVEKIT_SERVER_ADDR.
const EnvPrefix = "WEAVEKIT"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Document DocumentConfig `mapstructure:"document"`
	Docs     DocsConfig     `mapstructure:"docs"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BaseURL         string        `mapstructure:"base_url"`
	Metrics         bool          `mapstructure:"metrics"`
	QuietdownRoutes []string      `mapstructure:"quietdown_routes"`
	HideHeaders     []string      `mapstructure:"hide_headers"`
}

// DocumentConfig describes the assembled OpenAPI document.
type DocumentConfig struct {
	Title       string `mapstructure:"title"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
	OpenAPI     string `mapstructure:"openapi"`
	// Strict rejects conflicting component schemas instead of overwriting.
	Strict bool `mapstructure:"strict"`
}

// DocsConfig selects the documentation viewer.
type DocsConfig struct {
	UI string `mapstructure:"ui"`
}

// CORSConfig mirrors router.CORSConfig.
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	Methods          []string `mapstructure:"methods"`
	Headers          []string `mapstructure:"headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration. An empty path uses defaults and the
// environment only; a non-empty path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.quietdown_routes", []string{info.StatusPath, router.MetricsPath})
	v.SetDefault("server.hide_headers", []string{"Authorization", "Cookie"})

	v.SetDefault("document.title", "weavekit")
	v.SetDefault("document.version", "0.1.0")
	v.SetDefault("document.description", "")
	v.SetDefault("document.openapi", openapi.DefaultVersion)
	v.SetDefault("document.strict", false)

	v.SetDefault("docs.ui", string(info.UISwaggerUI))

	v.SetDefault("cors.origins", []string{})
	v.SetDefault("cors.methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.allow_credentials", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr cannot be empty", ErrInvalidConfig)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout cannot be negative", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Document.OpenAPI, "3.") {
		return fmt.Errorf("%w: document.openapi must be a 3.x version, got %q", ErrInvalidConfig, c.Document.OpenAPI)
	}
	if c.Document.Title == "" {
		return fmt.Errorf("%w: document.title cannot be empty", ErrInvalidConfig)
	}
	if _, ok := info.ParseUIType(c.Docs.UI); !ok {
		return fmt.Errorf("%w: unknown docs.ui %q", ErrInvalidConfig, c.Docs.UI)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// UI returns the configured documentation viewer.
func (c *Config) UI() info.UIType {
	ui, _ := info.ParseUIType(c.Docs.UI)
	return ui
}

// BuilderOptions returns the openapi.Builder options for the document section.
func (c *Config) BuilderOptions() []openapi.Option {
	opts := []openapi.Option{
		openapi.WithVersion(c.Document.OpenAPI),
		openapi.WithInfo(c.Document.Title, c.Document.Version, c.Document.Description),
	}
	if c.Document.Strict {
		opts = append(opts, openapi.WithStrictSchemas())
	}
	return opts
}

// RouterConfig returns the middleware settings for router.WithConfig.
func (c *Config) RouterConfig() router.Config {
	return router.Config{
		Timeout: c.Server.Timeout,
		CORS: router.CORSConfig{
			Origins:          c.CORS.Origins,
			Methods:          c.CORS.Methods,
			Headers:          c.CORS.Headers,
			AllowCredentials: c.CORS.AllowCredentials,
		},
		QuietdownRoutes: c.Server.QuietdownRoutes,
		HideHeaders:     c.Server.HideHeaders,
	}
}

// Logger builds a slog logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Log.level()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return level, nil
}
