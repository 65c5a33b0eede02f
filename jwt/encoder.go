package jwt

import (
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/bobinette/archivist/errors"
)

const issuer = "archivist"

type EncodeDecoder struct {
	key      []byte
	validity time.Duration
}

// Claims identify the principal behind a request. Roles and clearance are
// never read from the token, they are resolved from the principal store on
// every request.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

func NewEncodeDecoder(key []byte) *EncodeDecoder {
	return &EncodeDecoder{
		key:      key,
		validity: 60 * 24 * time.Hour,
	}
}

func (e *EncodeDecoder) Encode(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot sign a token without user", errors.Validation(errors.ReasonInvalidRequest))
	}

	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(e.validity).Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.key)
}

func (e *EncodeDecoder) Decode(bearer string) (string, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, e.keyFunc)
	if err != nil {
		return "", errors.New("invalid token", errors.Permission(errors.ReasonUnauthorized), errors.WithCause(err))
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims.UserID, nil
	}

	return "", errors.New("could not get claims", errors.Permission(errors.ReasonUnauthorized))
}

func (e *EncodeDecoder) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method", errors.Permission(errors.ReasonUnauthorized))
	}
	return e.key, nil
}
