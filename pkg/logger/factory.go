package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrymomot/resumekit/pkg/environment"
)

// Format represents logger output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*config)

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format. Panics on unknown formats so a misconfigured
// service refuses to start.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput sets the destination writer. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithContextExtractors registers functions that pull attributes from the
// context on every log call.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithContextValue adds an extractor that logs ctx.Value(key) under name.
func WithContextValue(name string, key any) Option {
	return func(c *config) {
		if name == "" || key == nil {
			return
		}
		c.extractors = append(c.extractors, func(ctx context.Context) (slog.Attr, bool) {
			if v := ctx.Value(key); v != nil {
				return slog.Any(name, v), true
			}
			return slog.Attr{}, false
		})
	}
}

// WithEnvironment applies the defaults for env: text output at debug level in
// development, JSON at info level everywhere else.
func WithEnvironment(env environment.Environment, service string) Option {
	return func(c *config) {
		if env == environment.Development {
			c.level = slog.LevelDebug
			c.format = FormatText
		} else {
			c.level = slog.LevelInfo
			c.format = FormatJSON
		}
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
		c.attrs = append(c.attrs, slog.String("env", string(env)))
	}
}

// New creates a slog.Logger. Defaults to JSON on stdout at info level.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}
	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(newContextHandler(handler, cfg.extractors...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
