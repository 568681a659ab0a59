package tiercache

import "errors"

var (
	ErrRequestFailed    = errors.New("tier request failed")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrDecodeResponse   = errors.New("failed to decode tier response")
)
