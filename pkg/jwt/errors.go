package jwt

import "errors"

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingSubject    = errors.New("jwt: missing subject")
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
)
