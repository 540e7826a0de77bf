package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer         = "licensedesk"
	DefaultExpires = 7 * 24 * time.Hour
)

// AdminIdentity is the signed-in administrator a token is issued for.
type AdminIdentity struct {
	ID       int
	Username string
	Role     string
}

type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func CreateAdminToken(identity *AdminIdentity, secret []byte, expiresIn time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	if expiresIn <= 0 {
		expiresIn = DefaultExpires
	}
	now := time.Now()
	claims := AdminClaims{
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   fmt.Sprintf("%d", identity.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAdminToken verifies signature, algorithm and expiry.
func ParseAdminToken(tokenStr string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
