package jwt

import (
	"context"
	"testing"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/errors"
)

func TestEncodeDecode(t *testing.T) {
	ed := NewEncodeDecoder([]byte("secret"))

	token, err := ed.Encode("alice")
	require.NoError(t, err)

	userID, err := ed.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	_, err = NewEncodeDecoder([]byte("other")).Decode(token)
	errors.AssertCode(t, err, 401)

	_, err = ed.Decode("not a token")
	errors.AssertReason(t, err, errors.ReasonUnauthorized)

	_, err = ed.Encode("")
	errors.AssertCode(t, err, 400)
}

func TestMiddleware(t *testing.T) {
	key := []byte("secret")
	token, err := NewEncodeDecoder(key).Encode("bob")
	require.NoError(t, err)

	var got string
	next := func(ctx context.Context, req interface{}) (interface{}, error) {
		claims, _ := ctx.Value(kitjwt.JWTClaimsContextKey).(*Claims)
		if claims != nil {
			got = claims.UserID
		}
		return nil, nil
	}
	ep := Middleware(key)(next)

	ctx := context.WithValue(context.Background(), kitjwt.JWTTokenContextKey, token)
	_, err = ep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", got)

	_, err = ep(context.Background(), nil)
	errors.AssertCode(t, err, 401)

	ctx = context.WithValue(context.Background(), kitjwt.JWTTokenContextKey, "garbage")
	_, err = ep(ctx, nil)
	errors.AssertCode(t, err, 401)
}
