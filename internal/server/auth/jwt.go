// Package auth issues and verifies the session tokens presented on every
// API request. A session token binds a user id to the remote-host access
// token used on their behalf, so the server itself never stores credentials.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/drewsiph/sitekeeper/internal/common"
)

// Claims carries the registered claims plus the two custom ones every
// session needs.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	HostToken string `json:"host_token"`
}

func GenerateToken(userID, hostToken string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:    userID,
		HostToken: hostToken,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Every failure mode maps to ErrInvalidToken; callers have no reason to
// distinguish a forged token from an expired one.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
