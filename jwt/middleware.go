package jwt

import (
	"context"

	"github.com/dgrijalva/jwt-go"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/archivist/errors"
)

// Middleware parses the token put in the context by the transport and
// stores the claims under kitjwt.JWTClaimsContextKey.
func Middleware(key []byte) endpoint.Middleware {
	parser := kitjwt.NewParser(func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.SigningMethodHS256, func() jwt.Claims { return &Claims{} })

	return func(next endpoint.Endpoint) endpoint.Endpoint {
		parsed := parser(next)
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			res, err := parsed(ctx, request)
			if isTokenError(err) {
				return nil, errors.New("invalid token", errors.Permission(errors.ReasonUnauthorized), errors.WithCause(err))
			}
			return res, err
		}
	}
}

func isTokenError(err error) bool {
	switch err {
	case kitjwt.ErrTokenContextMissing,
		kitjwt.ErrTokenInvalid,
		kitjwt.ErrTokenExpired,
		kitjwt.ErrTokenMalformed,
		kitjwt.ErrTokenNotActive,
		kitjwt.ErrUnexpectedSigningMethod:
		return true
	}
	return false
}

// ToHTTPContext is the kitjwt transport hook, exposed so that servers do not
// import go-kit directly for it.
var ToHTTPContext = kitjwt.HTTPToContext
