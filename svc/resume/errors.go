package resume

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrQueryFailed  = errors.New("resume query failed")
	ErrInvalidInput = errors.New("invalid resume input")
)
