// Package handler adapts typed request handlers to net/http.
//
// A handler receives a Context and a request value filled by binders, and
// returns a Response:
//
//	type checkoutRequest struct {
//		PriceID string `json:"priceId" validate:"required"`
//	}
//
//	r.Post("/checkout", handler.Wrap(func(ctx handler.Context, req checkoutRequest) handler.Response {
//		...
//		return handler.JSON(link)
//	}, handler.WithBinders[handler.Context, checkoutRequest](binder.BindJSON()),
//		handler.WithErrorHandler[handler.Context, checkoutRequest](errHandler)))
//
// Errors are rendered by an ErrorHandler. NewErrorHandler maps sentinel errors
// to status codes through Mapping values and always answers with a JSON
// envelope.
package handler
