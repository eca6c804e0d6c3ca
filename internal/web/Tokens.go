// This file contains the TokenIssuer, which signs and verifies the JWTs handed to clients.
//
// Access tokens carry the user's id and role and are short lived. Refresh tokens carry only the id, live longer and
// are signed with a separate secret, so one can never be used in place of the other.

package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

// ErrInvalidToken is returned for tokens that are malformed, expired or signed with another secret.
var ErrInvalidToken = errors.New("invalid token")

type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessToken signs a token with claims id, role and exp.
func (t *TokenIssuer) AccessToken(u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   u.ID.Hex(),
		"role": u.Role,
		"exp":  t.now().Add(t.accessTTL).Unix(),
	})
	return token.SignedString(t.accessSecret)
}

// RefreshToken signs a token with claims id and exp.
func (t *TokenIssuer) RefreshToken(u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  u.ID.Hex(),
		"exp": t.now().Add(t.refreshTTL).Unix(),
	})
	return token.SignedString(t.refreshSecret)
}

// ParseAccessToken verifies an access token and returns the caller it names. Only ID and Role are set.
func (t *TokenIssuer) ParseAccessToken(tokenString string) (*user.User, error) {
	claims, err := parseToken(tokenString, t.accessSecret)
	if err != nil {
		return nil, err
	}
	id, err := claimedID(claims)
	if err != nil {
		return nil, err
	}
	role, _ := claims["role"].(string)
	return &user.User{ID: id, Role: role}, nil
}

// ParseRefreshToken verifies a refresh token and returns the user id it names.
func (t *TokenIssuer) ParseRefreshToken(tokenString string) (primitive.ObjectID, error) {
	claims, err := parseToken(tokenString, t.refreshSecret)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return claimedID(claims)
}

func parseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	return claims, nil
}

func claimedID(claims jwt.MapClaims) (primitive.ObjectID, error) {
	hex, ok := claims["id"].(string)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad id claim", ErrInvalidToken)
	}
	return id, nil
}
