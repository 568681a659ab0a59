package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/resumekit/binder"
)

// HandlerFunc handles a bound request of type R.
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind fills v from the request.
type Bind func(r *http.Request, v any) error

// ErrorHandler renders binding, handler and rendering failures.
type ErrorHandler[C Context] func(ctx C, err error)

// WrapOption configures Wrap.
type WrapOption[C Context, R any] func(*wrapConfig[C, R])

type wrapConfig[C Context, R any] struct {
	binders        []Bind
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
}

// WithBinders applies binders in order. Binders returning
// binder.ErrBinderNotApplicable are skipped.
func WithBinders[C Context, R any](binders ...Bind) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler sets the error renderer.
func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextFactory sets how C is built from the request.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

func defaultErrorHandler[C Context](ctx C, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		http.Error(ctx.ResponseWriter(), httpErr.Key, httpErr.Code)
		return
	}
	http.Error(ctx.ResponseWriter(), ErrInternal.Key, http.StatusInternalServerError)
}

// Wrap adapts a typed handler to http.HandlerFunc.
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		errorHandler: defaultErrorHandler[C],
		contextFactory: func(w http.ResponseWriter, r *http.Request) C {
			c, ok := NewContext(w, r).(C)
			if !ok {
				panic("handler: custom context type requires WithContextFactory")
			}
			return c
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.contextFactory(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
