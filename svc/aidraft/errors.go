package aidraft

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid drafting input")
	ErrEmptyCompletion  = errors.New("model returned an empty completion")
	ErrModelUnavailable = errors.New("language model unavailable")
)
