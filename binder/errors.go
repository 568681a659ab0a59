package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrBinderNotApplicable  = errors.New("binder not applicable")
)
