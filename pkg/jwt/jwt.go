package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Config configures token signing and verification.
type Config struct {
	Secret string        `env:"AUTH_JWT_SECRET,required"`
	Issuer string        `env:"AUTH_JWT_ISSUER" envDefault:"resumekit"`
	TTL    time.Duration `env:"AUTH_JWT_TTL" envDefault:"24h"`
}

// Claims are the claims carried by an identity token. Subject is the user ID.
type Claims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Service issues and verifies HS256 identity tokens.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for userID.
func (s *Service) Issue(userID, email string) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the token signature, algorithm, issuer and expiry.
func (s *Service) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return s.key, nil
	}, opts...)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, errors.Join(ErrInvalidToken, ErrMissingSubject)
	}
	return claims, nil
}
