package users

import (
	"context"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
	"github.com/bobinette/archivist/jwt"
)

type key int

const contextKey key = 0

// FromContext returns the principal authenticated for the request.
func FromContext(ctx context.Context) (archivist.Principal, error) {
	v := ctx.Value(contextKey)
	if v == nil {
		return archivist.Principal{}, errors.New("no user", errors.Permission(errors.ReasonUnauthorized))
	}

	p, ok := v.(archivist.Principal)
	if !ok {
		return archivist.Principal{}, errors.New("invalid user", errors.Permission(errors.ReasonUnauthorized))
	}

	return p, nil
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p archivist.Principal) context.Context {
	return context.WithValue(ctx, contextKey, p)
}

func extractUserID(ctx context.Context) (string, error) {
	claims := ctx.Value(kitjwt.JWTClaimsContextKey)
	if claims == nil {
		return "", errors.New("no user", errors.Permission(errors.ReasonUnauthorized))
	}

	c, ok := claims.(*jwt.Claims)
	if !ok || c.UserID == "" {
		return "", errors.New("invalid claims", errors.Permission(errors.ReasonUnauthorized))
	}

	return c.UserID, nil
}

// Authenticator resolves the principal of a request from its claims. The
// principal is always read from the repository so that a role change takes
// effect without a new token.
type Authenticator struct {
	repository archivist.PrincipalRepository
}

func NewAuthenticator(repo archivist.PrincipalRepository) *Authenticator {
	return &Authenticator{
		repository: repo,
	}
}

func (a *Authenticator) Authenticated(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		userID, err := extractUserID(ctx)
		if err != nil {
			return nil, err
		}

		p, err := a.repository.Get(userID)
		if errors.Is(err, errors.ReasonNotFound) {
			return nil, errors.New("unknown user", errors.Permission(errors.ReasonUnauthorized))
		} else if err != nil {
			return nil, err
		}

		return next(NewContext(ctx, p), req)
	}
}

func (a *Authenticator) Admin(next endpoint.Endpoint) endpoint.Endpoint {
	return a.Authenticated(func(ctx context.Context, req interface{}) (interface{}, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, err
		}

		if p.Role != archivist.RoleAdmin {
			return nil, errors.New("admin only", errors.Permission(errors.ReasonForbidden))
		}
		return next(ctx, req)
	})
}
