package subscription

import "errors"

var (
	ErrQueryFailed = errors.New("subscription storage query failed")
	ErrLinkFailed  = errors.New("customer link storage failed")
)
