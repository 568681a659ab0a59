// Package jwt issues and verifies HS256 identity tokens with
// github.com/golang-jwt/jwt/v5 and exposes the verified user ID through the
// request context.
//
//	svc, _ := jwt.New(cfg)
//	r.Use(jwt.Middleware(svc))
//	r.With(jwt.RequireAuth()).Post("/billing/reconcile", ...)
//
//	userID, ok := jwt.UserID(r.Context())
package jwt
