package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminClaims is what a verified admin token asserts.
type AdminClaims struct {
	Username string
	IsAdmin  bool
}

type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

// Generate signs a token asserting {isAdmin: true, username}.
func (t *TokenService) Generate(username string) (string, error) {
	claims := jwt.MapClaims{
		"isAdmin":  true,
		"username": username,
		"exp":      time.Now().Add(t.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenService) Validate(tokenStr string) (*AdminClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	isAdmin, _ := claims["isAdmin"].(bool)
	username, _ := claims["username"].(string)
	return &AdminClaims{Username: username, IsAdmin: isAdmin}, nil
}
